package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwise/internal/core"
	"wealthwise/internal/events"
	"wealthwise/internal/ledger"
	"wealthwise/internal/storage/memory"
)

const seededLedger = `[{"id":1700000000000,"amount":500,"description":"Salary","date":"2024-01-01","type":"income"},` +
	`{"id":1700000000001,"amount":50,"description":"Groceries for the whole week at the market","date":"2024-01-02","type":"expense"}]`

func newTestServer(t *testing.T, mutate func(*Options)) *Server {
	t.Helper()
	opts := Options{
		Addr:           ":0",
		CookieName:     "transactions",
		Cookie:         CookieOptions{MaxAge: 24 * time.Hour},
		CurrencySymbol: "Rs.",
		ReportsURL:     "/reports",
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv, err := NewServer(opts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

// browser replays cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	srv     *Server
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, srv *Server) *browser {
	return &browser{t: t, srv: srv, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rr := httptest.NewRecorder()
	b.srv.Handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rr
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) seed(value string) {
	b.cookies["transactions"] = &http.Cookie{Name: "transactions", Value: escapeCookieValue(value)}
}

func addForm(amount, desc, date, kind string) url.Values {
	return url.Values{"amount": {amount}, "description": {desc}, "date": {date}, "type": {kind}}
}

func TestIndexEmptyLedger(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rr := b.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "No transactions found.")
	assert.Contains(t, body, `href="/reports"`)
	assert.Contains(t, body, "View Reports")
	assert.Equal(t, 4, strings.Count(body, "Rs.0.00"))
	assert.NotContains(t, body, `class="overlay"`)
	assert.Empty(t, rr.Result().Cookies(), "viewing must not write the ledger")
}

func TestAddPersistsToCookie(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rr := b.postForm("/transactions", addForm("500", "Salary", "2024-01-01", "income"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?type=income", rr.Header().Get("Location"))

	rr = b.postForm("/transactions", addForm("200", "Groceries", "2024-01-02", "expense"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?type=expense", rr.Header().Get("Location"))

	c := b.cookies["transactions"]
	require.NotNil(t, c)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)

	raw, err := url.PathUnescape(c.Value)
	require.NoError(t, err)
	txs, err := ledger.Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Salary", txs[0].Description)
	assert.Equal(t, core.KindExpense, txs[1].Kind)

	rr = b.get("/?type=expense")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Rs.300.00")
	assert.Contains(t, body, "Rs.500.00")
	assert.Contains(t, body, "Rs.200.00")
	assert.Contains(t, body, `<option value="expense" selected>`)
	assert.NotContains(t, body, "No transactions found.")
}

func TestAddValidationRerendersWithValues(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rr := b.postForm("/transactions", addForm("", "Coffee", "2024-03-01", "expense"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Please fill in all fields: amount.")
	assert.Contains(t, body, `value="Coffee"`)
	assert.Contains(t, body, `value="2024-03-01"`)
	assert.Contains(t, body, `<option value="expense" selected>`)
	assert.Empty(t, rr.Result().Cookies(), "a rejected entry must not write")

	rr = b.postForm("/transactions", addForm("abc", "Coffee", "2024-03-01", "expense"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Amount must be a number.")
}

func TestRowShowsTruncatedDescription(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(seededLedger)

	body := b.get("/").Body.String()
	assert.Contains(t, body, "Groceries for the whole week a...")
	assert.NotContains(t, body, "Groceries for the whole week at the market")
	assert.Contains(t, body, "Rs.450.00")
}

func TestOverlayShowsFullDetails(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(seededLedger)

	body := b.get("/?tx=1700000000001").Body.String()
	assert.Contains(t, body, `class="overlay"`)
	assert.Contains(t, body, "Groceries for the whole week at the market")
	assert.Contains(t, body, `class="btn close" href="/"`)

	body = b.get("/?tx=42").Body.String()
	assert.NotContains(t, body, `class="overlay"`)
}

func TestEveryRowCellOpensOverlay(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(seededLedger)

	body := b.get("/").Body.String()
	assert.Equal(t, 4, strings.Count(body, `href="/?tx=1700000000000"`), "date, description, amount and type cells")
	assert.Equal(t, 4, strings.Count(body, `href="/?tx=1700000000001"`))
}

func TestDeleteFormIsNotInsideRowLink(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(seededLedger)

	body := b.get("/").Body.String()
	form := strings.Index(body, `action="/transactions/1700000000000/delete"`)
	require.NotEqual(t, -1, form)

	rest := body
	for {
		start := strings.Index(rest, `href="/?tx=`)
		if start == -1 {
			break
		}
		end := strings.Index(rest[start:], "</a>")
		require.NotEqual(t, -1, end)
		assert.NotContains(t, rest[start:start+end], "<form")
		rest = rest[start+end:]
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(seededLedger)

	rr := b.postForm("/transactions/1700000000001/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	body := b.get("/").Body.String()
	assert.NotContains(t, body, "Groceries")
	assert.Contains(t, body, "Salary")
}

func TestDeletingLastRowDeletesCookie(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(`[{"id":7,"amount":10,"description":"Only","date":"2024-01-01","type":"income"}]`)

	rr := b.postForm("/transactions/7/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "transactions", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.NotContains(t, b.cookies, "transactions")

	assert.Contains(t, b.get("/").Body.String(), "No transactions found.")
}

func TestDeleteUnknownIDWritesNothing(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(seededLedger)

	rr := b.postForm("/transactions/99/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestDeleteRejectsBadID(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rr := b.postForm("/transactions/abc/delete", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = b.do(httptest.NewRequest(http.MethodDelete, "/transactions/-3", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCorruptCookieFailsSoft(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(`{not json`)

	rr := b.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, corruptNotice)
	assert.Contains(t, body, "No transactions found.")
	assert.Contains(t, body, `action="/reset"`)

	rr = b.postForm("/transactions", addForm("5", "Fresh", "2024-05-05", "income"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	body = b.get("/").Body.String()
	assert.NotContains(t, body, corruptNotice)
	assert.Contains(t, body, "Fresh")
}

func TestResetClearsLedger(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(`[1,2,3]`)

	rr := b.postForm("/reset", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.NotContains(t, b.cookies, "transactions")
	assert.NotContains(t, b.get("/").Body.String(), corruptNotice)
}

func TestCookieTooLarge(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	long := strings.Repeat("x", maxCookieBytes)

	rr := b.postForm("/transactions", addForm("1", long, "2024-01-01", "income"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestAPI(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"amount":800,"description":"Bonus","date":"2024-02-01","type":"income"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := b.do(req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created core.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Bonus", created.Description)
	assert.NotZero(t, created.ID)

	rr = b.get("/api/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	var list ledgerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, totalsResponse{Income: "800.00", Expense: "0.00", Balance: "800.00"}, list.Totals)

	req = httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"amount":"ten","description":"","date":"2024-02-01","type":"gift"}`))
	rr = b.do(req)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var verr errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &verr))
	assert.Equal(t, []string{"description"}, verr.Missing)
	assert.ElementsMatch(t, []string{"amount", "type"}, verr.Invalid)

	rr = b.do(httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{"amount":`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = b.do(httptest.NewRequest(http.MethodDelete, "/api/transactions/x", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = b.do(httptest.NewRequest(http.MethodDelete, "/api/transactions/"+strconv.FormatInt(created.ID, 10), nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = b.get("/api/transactions")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Empty(t, list.Transactions)
	assert.NotNil(t, list.Transactions)
}

func TestAPIReportsCorruptState(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	b.seed(`"oops"`)

	rr := b.get("/api/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"corrupt":true`)
}

type recordingPublisher struct{ got []events.Event }

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.got = append(p.got, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestServerSideStoreUsesSessionCookie(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	b := newBrowser(t, newTestServer(t, func(o *Options) {
		o.Store = store
		o.Publisher = pub
	}))

	rr := b.postForm("/transactions", addForm("12.5", "Lunch", "2024-04-01", "expense"))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	session := b.cookies[SessionCookieName]
	require.NotNil(t, session)
	assert.NotContains(t, b.cookies, "transactions")
	assert.Equal(t, 1, store.Len())

	data, err := store.Get(context.Background(), session.Value)
	require.NoError(t, err)
	txs, err := ledger.Decode(data)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Lunch", txs[0].Description)

	assert.Contains(t, b.get("/").Body.String(), "-Rs.12.50")

	require.Len(t, pub.got, 1)
	assert.Equal(t, events.TypeTransactionAdded, pub.got[0].Type)
	assert.Equal(t, session.Value, pub.got[0].Ledger)

	other := newBrowser(t, b.srv)
	assert.Contains(t, other.get("/").Body.String(), "No transactions found.")
}

type failingPinger struct{ *memory.Store }

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthAndReadiness(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	assert.Equal(t, http.StatusOK, b.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, b.get("/readyz").Code)

	down := newBrowser(t, newTestServer(t, func(o *Options) { o.Store = failingPinger{memory.New()} }))
	assert.Equal(t, http.StatusServiceUnavailable, down.get("/readyz").Code)
}

func TestStaticAndHeaders(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rr := b.get("/static/style.css")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")

	rr = b.get("/")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
}

func TestMutationsAreRateLimited(t *testing.T) {
	b := newBrowser(t, newTestServer(t, func(o *Options) { o.RateLimitPerMinute = 2 }))

	for range 2 {
		require.Equal(t, http.StatusSeeOther, b.postForm("/reset", nil).Code)
	}
	rr := b.postForm("/reset", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, b.get("/").Code)
}

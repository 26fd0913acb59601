package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wealthwise/internal/storage"
)

// maxCookieBytes is the per-cookie limit browsers are required to support.
const maxCookieBytes = 4096

// CookieOptions controls the attributes of cookies the server writes.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

func (o CookieOptions) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.MaxAge / time.Second),
		Secure:   o.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStore is a BlobStore over the cookies of one request/response pair.
// Values are URL-escaped the way js-cookie writes them, so a ledger saved by
// a browser script reads back unchanged. Writes are visible to later reads
// within the same request.
type CookieStore struct {
	r       *http.Request
	w       http.ResponseWriter
	opts    CookieOptions
	written map[string]*string // nil value marks a deleted cookie
}

var _ storage.BlobStore = (*CookieStore)(nil)

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	return &CookieStore{r: r, w: w, opts: opts, written: make(map[string]*string)}
}

func (c *CookieStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := c.written[key]; ok {
		if v == nil {
			return nil, storage.ErrNotFound
		}
		return []byte(*v), nil
	}

	ck, err := c.r.Cookie(key)
	if err != nil {
		return nil, storage.ErrNotFound
	}
	value, err := url.PathUnescape(ck.Value)
	if err != nil {
		// hand the raw value to the decoder, which reports it as corrupt
		return []byte(ck.Value), nil
	}
	return []byte(value), nil
}

func (c *CookieStore) Put(_ context.Context, key string, value []byte) error {
	encoded := escapeCookieValue(string(value))
	if len(key)+len(encoded) > maxCookieBytes {
		return &CookieTooLargeError{Name: key, Size: len(key) + len(encoded)}
	}
	http.SetCookie(c.w, c.opts.cookie(key, encoded))
	s := string(value)
	c.written[key] = &s
	return nil
}

func (c *CookieStore) Delete(_ context.Context, key string) error {
	ck := c.opts.cookie(key, "")
	ck.MaxAge = -1
	http.SetCookie(c.w, ck)
	c.written[key] = nil
	return nil
}

// CookieTooLargeError reports a ledger that no longer fits in one cookie.
type CookieTooLargeError struct {
	Name string
	Size int
}

func (e *CookieTooLargeError) Error() string {
	return "cookie " + e.Name + " would exceed the browser size limit"
}

// escapeCookieValue percent-encodes s into a valid cookie value. Commas,
// semicolons, quotes and spaces are always encoded so the value is never quoted.
func escapeCookieValue(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "+", "%2B")
}

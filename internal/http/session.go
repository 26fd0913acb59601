package http

import (
	"net/http"

	"github.com/google/uuid"

	"wealthwise/internal/storage"
)

// SessionCookieName holds the ledger key when ledgers live server-side.
const SessionCookieName = "ledger_session"

// ledgerLocation names where one request's ledger is persisted.
type ledgerLocation struct {
	blobs storage.BlobStore
	key   string
}

// locate picks the blob store and key for the request. In cookie mode the
// ledger is the cookie itself. Otherwise the key is a random session id kept
// in its own cookie, issued on first contact.
func (s *Server) locate(w http.ResponseWriter, r *http.Request) ledgerLocation {
	if s.store == nil {
		return ledgerLocation{
			blobs: NewCookieStore(w, r, s.cookieOpts),
			key:   s.cookieName,
		}
	}
	return ledgerLocation{blobs: s.store, key: s.sessionID(w, r)}
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, s.cookieOpts.cookie(SessionCookieName, id))
	return id
}

package http

import (
	"errors"
	"net/http"
	"net/url"

	"wealthwise/internal/ledger"
	"wealthwise/internal/log"
)

// handleIndex renders the full page. ?tx=<id> opens the detail overlay and
// ?type= preselects the type selector.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	store, corrupt, err := s.openLedger(w, r)
	if err != nil {
		s.serverError(w, r, "Failed to load ledger", err)
		return
	}

	q := r.URL.Query()
	txs := store.Transactions()
	data := s.buildPage(txs, nil, formView{Kind: q.Get("type")})
	if id := selectedID(q.Get("tx")); id != 0 {
		if tx, ok := store.Get(id); ok {
			data = s.buildPage(txs, &tx, data.Form)
		}
	}
	if corrupt {
		data.Notice = corruptNotice
	}
	s.render(w, r, http.StatusOK, data)
}

// handleAdd processes the entry form. Success redirects back to the page
// with the chosen type kept; invalid input re-renders with the values kept.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	in := p.AddInput()

	store, corrupt, err := s.openLedger(w, r)
	if err != nil {
		s.serverError(w, r, "Failed to load ledger", err)
		return
	}

	tx, err := store.Add(r.Context(), in)
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		form := formView{Amount: in.Amount, Description: in.Description, Date: in.Date, Kind: in.Kind}
		data := s.buildPage(store.Transactions(), nil, form)
		data.Errors = validationMessages(verr)
		if corrupt {
			data.Notice = corruptNotice
		}
		s.render(w, r, http.StatusUnprocessableEntity, data)
		return
	case err != nil:
		s.addFailed(w, r, err)
		return
	}

	http.Redirect(w, r, "/?type="+url.QueryEscape(tx.Kind.String()), http.StatusSeeOther)
}

func (s *Server) addFailed(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *CookieTooLargeError
	if errors.As(err, &tooLarge) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Ledger exceeds cookie size", "size", tooLarge.Size)
		http.Error(w, "The ledger is too large to store in a cookie. Delete some transactions first.", http.StatusRequestEntityTooLarge)
		return
	}
	s.serverError(w, r, "Failed to save transaction", err)
}

// handleDelete removes one transaction. Serves both the form POST and
// DELETE /transactions/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	store, _, err := s.openLedger(w, r)
	if err != nil {
		s.serverError(w, r, "Failed to load ledger", err)
		return
	}
	if err := store.Remove(r.Context(), id); err != nil {
		s.serverError(w, r, "Failed to delete transaction", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset clears the ledger, including unreadable saved data.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.openLedger(w, r)
	if err != nil {
		s.serverError(w, r, "Failed to load ledger", err)
		return
	}
	if err := store.Reset(r.Context()); err != nil {
		s.serverError(w, r, "Failed to reset ledger", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

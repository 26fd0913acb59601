package http

import (
	"errors"
	"net/http"

	"wealthwise/internal/ledger"
	"wealthwise/internal/log"
)

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	store, corrupt, err := s.openLedger(w, r)
	if err != nil {
		s.apiError(w, r, "Failed to load ledger", err)
		return
	}
	writeJSON(w, r, http.StatusOK, newLedgerResponse(store.Transactions(), store.Totals(), corrupt))
}

// handleAPICreate accepts a JSON object (or a form) with amount, description,
// date and type. Amount may be a JSON number or a string.
func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	store, _, err := s.openLedger(w, r)
	if err != nil {
		s.apiError(w, r, "Failed to load ledger", err)
		return
	}

	tx, err := store.Add(r.Context(), p.AddInput())
	var verr *ledger.ValidationError
	var tooLarge *CookieTooLargeError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusUnprocessableEntity, validationResponse(verr))
	case errors.As(err, &tooLarge):
		writeJSONError(w, r, http.StatusRequestEntityTooLarge, tooLarge.Error())
	case err != nil:
		s.apiError(w, r, "Failed to save transaction", err)
	default:
		writeJSON(w, r, http.StatusCreated, tx)
	}
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	store, _, err := s.openLedger(w, r)
	if err != nil {
		s.apiError(w, r, "Failed to load ledger", err)
		return
	}
	if err := store.Remove(r.Context(), id); err != nil {
		s.apiError(w, r, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), msg, err, log.ComponentLedger, log.OpPersist, nil)
	writeJSONError(w, r, http.StatusInternalServerError, "internal error")
}

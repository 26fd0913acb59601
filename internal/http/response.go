package http

import (
	"encoding/json"
	"net/http"

	"wealthwise/internal/core"
	"wealthwise/internal/ledger"
	"wealthwise/internal/log"
)

type totalsResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type ledgerResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Totals       totalsResponse     `json:"totals"`
	Corrupt      bool               `json:"corrupt,omitempty"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func newLedgerResponse(txs []core.Transaction, totals core.Totals, corrupt bool) ledgerResponse {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return ledgerResponse{
		Transactions: txs,
		Totals: totalsResponse{
			Income:  totals.Income.Fixed(),
			Expense: totals.Expense.Fixed(),
			Balance: totals.Balance().Fixed(),
		},
		Corrupt: corrupt,
	}
}

func validationResponse(verr *ledger.ValidationError) errorResponse {
	return errorResponse{Error: "validation failed", Missing: verr.Missing, Invalid: verr.Invalid}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode JSON response", log.FieldError, err)
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

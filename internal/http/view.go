package http

import (
	"strconv"
	"strings"

	"wealthwise/internal/core"
	"wealthwise/internal/ledger"
)

const corruptNotice = "Saved transactions could not be read. The next change you make will replace them."

type kindOption struct {
	Value    string
	Label    string
	Selected bool
}

type rowView struct {
	ID      int64
	Date    string
	Preview string
	Amount  string
	Kind    string
	Label   string
}

type detailView struct {
	Date        string
	Description string
	Amount      string
	Kind        string
	Label       string
}

type formView struct {
	Amount      string
	Description string
	Date        string
	Kind        string
}

type pageData struct {
	ReportsURL string
	Balance    string
	Income     string
	Expense    string
	Available  string
	Rows       []rowView
	Detail     *detailView
	Form       formView
	Kinds      []kindOption
	Errors     []string
	Notice     string
}

// buildPage derives everything the template shows from the ledger state.
func (s *Server) buildPage(txs []core.Transaction, selected *core.Transaction, form formView) pageData {
	totals := core.Aggregate(txs)
	balance := totals.Balance().Format(s.currency)

	data := pageData{
		ReportsURL: s.reportsURL,
		Balance:    balance,
		Income:     totals.Income.Format(s.currency),
		Expense:    totals.Expense.Format(s.currency),
		Available:  balance,
		Form:       form,
	}

	for _, tx := range txs {
		data.Rows = append(data.Rows, rowView{
			ID:      tx.ID,
			Date:    tx.Date,
			Preview: core.Truncate(tx.Description, core.DescriptionPreviewLen),
			Amount:  tx.Amount.Format(s.currency),
			Kind:    tx.Kind.String(),
			Label:   tx.Kind.Label(),
		})
	}

	if selected != nil {
		data.Detail = &detailView{
			Date:        selected.Date,
			Description: selected.Description,
			Amount:      selected.Amount.Format(s.currency),
			Kind:        selected.Kind.String(),
			Label:       selected.Kind.Label(),
		}
	}

	kind, err := core.ParseKind(form.Kind)
	if err != nil {
		kind = core.KindIncome
	}
	for _, k := range core.Kinds() {
		data.Kinds = append(data.Kinds, kindOption{Value: k.String(), Label: k.Label(), Selected: k == kind})
	}
	return data
}

// validationMessages turns a ValidationError into banner lines.
func validationMessages(verr *ledger.ValidationError) []string {
	var msgs []string
	if len(verr.Missing) > 0 {
		msgs = append(msgs, "Please fill in all fields: "+strings.Join(verr.Missing, ", ")+".")
	}
	for _, f := range verr.Invalid {
		switch f {
		case ledger.FieldAmount:
			msgs = append(msgs, "Amount must be a number.")
		case ledger.FieldType:
			msgs = append(msgs, "Type must be income or expense.")
		default:
			msgs = append(msgs, "Invalid "+f+".")
		}
	}
	return msgs
}

// selectedID reads the overlay's ?tx= parameter. Zero means no overlay.
func selectedID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

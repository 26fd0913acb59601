package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCorruptState reports a persisted blob that could not be decoded. The
// store keeps working with an empty ledger when it sees one.
var ErrCorruptState = errors.New("corrupt ledger state")

// ValidationError lists the form fields that prevented an Add.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Fields returns every offending field, missing first.
func (e *ValidationError) Fields() []string {
	return append(append([]string{}, e.Missing...), e.Invalid...)
}

// Has reports whether field is missing or invalid.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

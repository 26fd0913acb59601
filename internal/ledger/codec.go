package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"wealthwise/internal/core"
)

// Encode renders the persisted form of a ledger: a JSON array of
// transactions in insertion order.
func Encode(txs []core.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// Decode parses a persisted blob. Any malformed input yields an error wrapping
// ErrCorruptState: a bare null, a non-array, or an entry with a non-positive
// id, an unknown type or an out-of-range amount.
func Decode(data []byte) ([]core.Transaction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty payload", ErrCorruptState)
	}

	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
	}
	return txs, nil
}

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwise/internal/core"
)

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEncode_WireFormat(t *testing.T) {
	data, err := Encode([]core.Transaction{{
		ID:          1700000000000,
		Amount:      core.NewMoney("500"),
		Description: "Salary",
		Date:        "2024-01-01",
		Kind:        core.KindIncome,
	}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":1700000000000,"amount":500,"description":"Salary","date":"2024-01-01","type":"income"}]`,
		string(data))
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":              "",
		"null":               "null",
		"huge exponent":      `[{"id":1,"amount":1e10000000,"description":"x","date":"2024-01-01","type":"income"}]`,
		"not json":           "hello",
		"object":             `{"id":1}`,
		"zero id":            `[{"id":0,"amount":1,"description":"x","date":"2024-01-01","type":"income"}]`,
		"unknown type":       `[{"id":1,"amount":1,"description":"x","date":"2024-01-01","type":"gift"}]`,
		"non-numeric amount": `[{"id":1,"amount":"abc","description":"x","date":"2024-01-01","type":"income"}]`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			assert.ErrorIs(t, err, ErrCorruptState)
		})
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	txs, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

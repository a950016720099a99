package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallyhq/tally/internal/model"
)

func ids(txns []model.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	in := []model.Transaction{
		{ID: "a", Merchant: "first"},
		{ID: "b"},
		{ID: "a", Merchant: "second"},
		{ID: "c"},
		{ID: "b"},
	}

	res := Deduplicate(in)
	assert.Equal(t, []string{"a", "b", "c"}, ids(res.Transactions))
	assert.Equal(t, "first", res.Transactions[0].Merchant)
	assert.Equal(t, []string{"removed 2 duplicate transaction(s)"}, res.Warnings)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []model.Transaction{{ID: "a"}, {ID: "a"}, {ID: "b"}}

	once := Deduplicate(in)
	twice := Deduplicate(once.Transactions)
	assert.Equal(t, once.Transactions, twice.Transactions)
	assert.Empty(t, twice.Warnings)
}

func TestDeduplicate_NoDuplicates(t *testing.T) {
	res := Deduplicate([]model.Transaction{{ID: "a"}, {ID: "b"}})
	assert.Len(t, res.Transactions, 2)
	assert.Empty(t, res.Warnings)
}

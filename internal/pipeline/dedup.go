package pipeline

import "github.com/tallyhq/tally/internal/model"

// Deduplicate keeps the first occurrence of every transaction ID, in input order.
func Deduplicate(txns []model.Transaction) model.StageResult {
	seen := make(map[string]bool, len(txns))
	unique := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if seen[txn.ID] {
			continue
		}
		seen[txn.ID] = true
		unique = append(unique, txn)
	}

	result := model.StageResult{Transactions: unique}
	if removed := len(txns) - len(unique); removed > 0 {
		result.Warnf("removed %d duplicate transaction(s)", removed)
	}
	return result
}

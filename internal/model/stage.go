package model

import "fmt"

// StageResult is the uniform output of every pipeline stage. Expected
// failures are recorded as warnings or errors, never returned as Go errors.
type StageResult struct {
	Transactions []Transaction
	Warnings     []string
	Errors       []string
}

// Warnf appends a formatted warning.
func (r *StageResult) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Errorf appends a formatted error.
func (r *StageResult) Errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Absorb appends the warnings and errors of other. Transactions are not touched.
func (r *StageResult) Absorb(other StageResult) {
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Errors = append(r.Errors, other.Errors...)
}

// Clone copies a transaction slice so a stage can mutate its output
// without the caller's input observing the change.
func Clone(txns []Transaction) []Transaction {
	if txns == nil {
		return nil
	}
	out := make([]Transaction, len(txns))
	copy(out, txns)
	return out
}

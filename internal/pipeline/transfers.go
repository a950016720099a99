package pipeline

import (
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// AccountTypes resolves which kind of account a transaction was posted to.
type AccountTypes interface {
	TypeOf(txn model.Transaction) model.AccountType
}

// TransferConfig controls transfer pairing.
type TransferConfig struct {
	Keywords       []string
	DateWindowDays int
}

// DetectTransfers pairs checking debits that look like card payments with
// credit card credits of the same absolute amount posted within the date
// window, and flags both sides as transfers. Each credit is consumed by at
// most one debit; when several credits qualify, the earliest in input order
// wins. Transactions are neither added nor removed.
func DetectTransfers(txns []model.Transaction, cfg TransferConfig, types AccountTypes) model.StageResult {
	out := model.Clone(txns)

	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	var debits, credits []int
	for i, txn := range out {
		switch types.TypeOf(txn) {
		case model.AccountTypeChecking:
			if txn.Amount.IsNegative() && containsAny(keywords, txn.Description, txn.Merchant) {
				debits = append(debits, i)
			}
		case model.AccountTypeCreditCard:
			if txn.Amount.IsPositive() {
				credits = append(credits, i)
			}
		}
	}

	consumed := make(map[int]bool, len(credits))
	for _, d := range debits {
		debit := out[d]
		for _, c := range credits {
			if consumed[c] {
				continue
			}
			credit := out[c]
			if !credit.Amount.Abs().Equal(debit.Amount.Abs()) {
				continue
			}
			if dayDiff(debit, credit) > cfg.DateWindowDays {
				continue
			}
			out[d].IsTransfer = true
			out[c].IsTransfer = true
			consumed[c] = true
			break
		}
	}

	return model.StageResult{Transactions: out}
}

func containsAny(keywords []string, fields ...string) bool {
	for _, f := range fields {
		upper := strings.ToUpper(f)
		for _, kw := range keywords {
			if strings.Contains(upper, kw) {
				return true
			}
		}
	}
	return false
}

// dayDiff returns the absolute number of calendar days between two transactions.
func dayDiff(a, b model.Transaction) int {
	ad := civilDays(a)
	bd := civilDays(b)
	if ad > bd {
		return ad - bd
	}
	return bd - ad
}

func civilDays(t model.Transaction) int {
	y, m, d := t.Date.Date()
	return int(dateUTC(y, int(m), d).Unix() / 86400)
}

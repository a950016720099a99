package recurring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tallyhq/tally/internal/model"
)

func charge(merchant string, month int, amount string) model.Transaction {
	return model.Transaction{
		Merchant: merchant,
		Date:     time.Date(2025, time.Month(month), 10, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.RequireFromString(amount),
	}
}

func TestDetect(t *testing.T) {
	history := []model.Transaction{
		// steady subscription
		charge("Netflix.com", 1, "-15.49"),
		charge("NETFLIX.COM", 2, "-15.49"),
		charge("NETFLIX.COM", 3, "-17.99"),
		// only two months
		charge("GYM", 1, "-50.00"),
		charge("GYM", 2, "-50.00"),
		charge("GYM", 2, "-50.00"),
		// wildly varying
		charge("AMAZON", 1, "-10.00"),
		charge("AMAZON", 2, "-250.00"),
		charge("AMAZON", 3, "-40.00"),
		// averaged within a month
		charge("XCEL ENERGY", 1, "-80.00"),
		charge("XCEL ENERGY", 2, "-80.00"),
		charge("XCEL ENERGY", 2, "-90.00"),
		charge("XCEL ENERGY", 3, "-90.00"),
	}

	got := Detect(history)
	assert.Equal(t, map[string]bool{"NETFLIX.COM": true, "XCEL ENERGY": true}, got)
}

func TestDetect_IgnoresTransfers(t *testing.T) {
	var history []model.Transaction
	for m := 1; m <= 3; m++ {
		txn := charge("AUTOPAY", m, "-200.00")
		txn.IsTransfer = true
		history = append(history, txn)
	}
	assert.Empty(t, Detect(history))
}

func TestDetect_ZeroAmounts(t *testing.T) {
	history := []model.Transaction{charge("FREE", 1, "0"), charge("FREE", 2, "0"), charge("FREE", 3, "0")}
	assert.Empty(t, Detect(history))
}

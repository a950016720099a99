package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Length is the number of hex characters kept from the digest.
const Length = 12

// TransactionID derives a stable ID from a transaction's uniqueness components:
// institution, ISO date, trimmed upper-cased merchant, amount and the 0-based
// row ordinal within the source file.
//
// Identical inputs from two different sources collapse to one ID. Dedup relies
// on this for overlapping downloads.
func TransactionID(institution string, date time.Time, merchant string, amount decimal.Decimal, ordinal int) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%d",
		institution,
		date.Format("2006-01-02"),
		strings.ToUpper(strings.TrimSpace(merchant)),
		amountString(amount),
		ordinal,
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:Length]
}

// amountString renders amount at the scale it was parsed with, so "-45.00"
// stays "-45.00" rather than "-45".
func amountString(amount decimal.Decimal) string {
	if exp := amount.Exponent(); exp < 0 {
		return amount.StringFixed(-exp)
	}
	return amount.String()
}

// SplitID returns the ID of the n-th (1-indexed) split child of parent.
// "3f9a0c1b2d4e", 2 -> "3f9a0c1b2d4e-2"
func SplitID(parent string, n int) string {
	return parent + "-" + strconv.Itoa(n)
}

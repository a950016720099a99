package importer

import (
	"io"

	"github.com/tallyhq/tally/internal/model"
)

const chaseDateFormat = "01/02/2006"

// ChaseParser parses Chase credit card exports:
// Transaction Date, Post Date, Description, Category, Type, Amount, Memo.
// Charges are negative, refunds and payments positive. The transaction
// date (not the post date) is used.
type ChaseParser struct{}

func (p *ChaseParser) Format() string { return "chase" }

func (p *ChaseParser) Parse(r io.Reader, src Source) model.StageResult {
	required := []string{"Transaction Date", "Post Date", "Description", "Category", "Type", "Amount"}
	return parseCSV(r, src, required, func(col func(string) string) (rowFields, error) {
		date, err := parseDate(chaseDateFormat, col("Transaction Date"))
		if err != nil {
			return rowFields{}, err
		}
		amount, err := parseAmount(col("Amount"))
		if err != nil {
			return rowFields{}, err
		}
		desc, err := requireDescription(col("Description"))
		if err != nil {
			return rowFields{}, err
		}
		return rowFields{Date: date, Description: desc, Amount: amount}, nil
	})
}

// ChaseCheckingParser parses Chase checking exports:
// Details, Posting Date, Description, Amount, Type, Balance, Check or Slip #.
type ChaseCheckingParser struct{}

func (p *ChaseCheckingParser) Format() string { return "chase_checking" }

func (p *ChaseCheckingParser) Parse(r io.Reader, src Source) model.StageResult {
	required := []string{"Details", "Posting Date", "Description", "Amount"}
	return parseCSV(r, src, required, func(col func(string) string) (rowFields, error) {
		date, err := parseDate(chaseDateFormat, col("Posting Date"))
		if err != nil {
			return rowFields{}, err
		}
		amount, err := parseAmount(col("Amount"))
		if err != nil {
			return rowFields{}, err
		}
		desc, err := requireDescription(col("Description"))
		if err != nil {
			return rowFields{}, err
		}
		return rowFields{Date: date, Description: desc, Amount: amount}, nil
	})
}

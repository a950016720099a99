package importer

import (
	"errors"
	"io"

	"github.com/tallyhq/tally/internal/model"
)

const capitalOneDateFormat = "2006-01-02"

// CapitalOneParser parses Capital One credit card exports:
// Transaction Date, Posted Date, Card No., Description, Category, Debit, Credit.
// Exactly one of Debit or Credit is set; debits become negative amounts.
type CapitalOneParser struct{}

func (p *CapitalOneParser) Format() string { return "capital_one" }

func (p *CapitalOneParser) Parse(r io.Reader, src Source) model.StageResult {
	required := []string{"Transaction Date", "Posted Date", "Card No.", "Description", "Debit", "Credit"}
	return parseCSV(r, src, required, func(col func(string) string) (rowFields, error) {
		date, err := parseDate(capitalOneDateFormat, col("Transaction Date"))
		if err != nil {
			return rowFields{}, err
		}

		debit, credit := col("Debit"), col("Credit")
		var f rowFields
		switch {
		case debit != "":
			amt, err := parseAmount(debit)
			if err != nil {
				return rowFields{}, err
			}
			f.Amount = amt.Neg()
		case credit != "":
			amt, err := parseAmount(credit)
			if err != nil {
				return rowFields{}, err
			}
			f.Amount = amt
		default:
			return rowFields{}, errors.New("no debit or credit amount")
		}

		desc, err := requireDescription(col("Description"))
		if err != nil {
			return rowFields{}, err
		}
		f.Date = date
		f.Description = desc
		return f, nil
	})
}

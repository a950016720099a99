// Package ledger reads and writes the monthly ledger CSVs under output/.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// Header is the CSV header of a monthly ledger.
const Header = "transaction_id,date,month,merchant,description,amount,institution,account,category,subcategory,is_return,is_recurring,split_from"

const (
	numFields    = 13
	dateFormat   = "2006-01-02"
	colID        = 0
	colDate      = 1
	colMonth     = 2
	colMerchant  = 3
	colDesc      = 4
	colAmount    = 5
	colInst      = 6
	colAccount   = 7
	colCategory  = 8
	colSubcat    = 9
	colIsReturn  = 10
	colRecurring = 11
	colSplitFrom = 12
)

// ReadTransactions reads all rows from a ledger CSV reader. Columns are
// located by header name, so a ledger whose columns were reordered (or
// extended) in a spreadsheet still reads correctly.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	index, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		row := make([]string, numFields)
		for col, pos := range index {
			row[col] = rec[pos]
		}
		txn, err := UnmarshalRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// columnIndex maps each ledger column to its position in header.
func columnIndex(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	names := strings.Split(Header, ",")
	index := make([]int, len(names))
	var missing []string
	for col, name := range names {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ledger is missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// WriteTransactions writes txns to w, header first.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalRow(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a Transaction to a CSV row.
func MarshalRow(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.Format(dateFormat)
	row[colMonth] = txn.Month()
	row[colMerchant] = txn.Merchant
	row[colDesc] = txn.Description
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colInst] = txn.Institution
	row[colAccount] = txn.Account
	row[colCategory] = txn.Category
	row[colSubcat] = txn.Subcategory
	row[colIsReturn] = strconv.FormatBool(txn.IsReturn())
	row[colRecurring] = strconv.FormatBool(txn.IsRecurring)
	row[colSplitFrom] = txn.SplitFrom
	return row
}

// UnmarshalRow converts a CSV row to a Transaction. The month and is_return
// columns are derived on export and ignored here.
func UnmarshalRow(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var recurring bool
	if v := record[colRecurring]; v != "" {
		recurring, err = strconv.ParseBool(v)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing is_recurring %q: %w", v, err)
		}
	}

	return model.Transaction{
		ID:          record[colID],
		Date:        date,
		Merchant:    record[colMerchant],
		Description: record[colDesc],
		Amount:      amount,
		Institution: record[colInst],
		Account:     record[colAccount],
		Category:    strings.TrimSpace(record[colCategory]),
		Subcategory: strings.TrimSpace(record[colSubcat]),
		IsRecurring: recurring,
		SplitFrom:   record[colSplitFrom],
	}, nil
}

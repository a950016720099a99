// Package importer turns institution CSV exports into normalized transactions.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/model"
)

// maxMalformedRatio is the share of bad rows above which a file is rejected.
const maxMalformedRatio = 0.10

// Source identifies the file and account a CSV came from.
type Source struct {
	Path        string
	Institution string
	Account     string
}

// Parser converts one institution's CSV into transactions. Unreadable input
// and missing columns are reported as errors; malformed rows as warnings.
type Parser interface {
	Parse(r io.Reader, src Source) model.StageResult
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists registered parser names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&ChaseCheckingParser{})
	r.Register(&CapitalOneParser{})
	return r
}

// Discover returns the CSV files directly inside dir, sorted by name.
// Hidden, lock and underscore-prefixed files are skipped. A missing
// directory yields no files.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") || strings.HasPrefix(name, "_") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile opens src.Path and runs p over it.
func ParseFile(p Parser, src Source) model.StageResult {
	f, err := os.Open(src.Path)
	if err != nil {
		var res model.StageResult
		if errors.Is(err, os.ErrNotExist) {
			res.Errorf("%s: file not found", src.Path)
		} else {
			res.Errorf("%s: %v", src.Path, err)
		}
		return res
	}
	defer f.Close()
	return p.Parse(f, src)
}

// rowFields is what a parser extracts from one CSV row.
type rowFields struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// rowFunc extracts fields from a row; col looks up a trimmed value by header name.
type rowFunc func(col func(name string) string) (rowFields, error)

// parseCSV is the shared driver behind every parser: it checks the header,
// converts each data row with fn, assigns IDs from the 0-based data-row
// ordinal, and rejects the whole file when too many rows are malformed.
func parseCSV(r io.Reader, src Source, required []string, fn rowFunc) model.StageResult {
	var res model.StageResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		res.Errorf("%s: reading CSV: %v", src.Path, err)
		return res
	}
	if len(records) == 0 {
		res.Errorf("%s: empty file or no header row", src.Path)
		return res
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := header[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		res.Errorf("%s: missing expected columns: %s", src.Path, strings.Join(missing, ", "))
		return res
	}

	rows := records[1:]
	malformed := 0
	txns := make([]model.Transaction, 0, len(rows))
	for ordinal, rec := range rows {
		col := func(name string) string {
			i, ok := header[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		f, err := fn(col)
		if err != nil {
			malformed++
			res.Warnf("%s: skipped malformed row %d (%v)", src.Path, ordinal, err)
			continue
		}
		txns = append(txns, model.Transaction{
			ID:          id.TransactionID(src.Institution, f.Date, f.Description, f.Amount, ordinal),
			Date:        f.Date,
			Merchant:    f.Description,
			Description: f.Description,
			Amount:      f.Amount,
			Institution: src.Institution,
			Account:     src.Account,
			SourceFile:  src.Path,
		})
	}

	if len(rows) > 0 && float64(malformed)/float64(len(rows)) > maxMalformedRatio {
		res.Errorf("%s: too many malformed rows (%d/%d), skipping entire file", src.Path, malformed, len(rows))
		return res
	}
	res.Transactions = txns
	return res
}

func parseDate(layout, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing date")
	}
	d, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %q", value)
	}
	return d, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, errors.New("missing amount")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount: %q", value)
	}
	return d, nil
}

func requireDescription(value string) (string, error) {
	if value == "" {
		return "", errors.New("missing description")
	}
	return value, nil
}

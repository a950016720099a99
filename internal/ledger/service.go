package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/tallyhq/tally/internal/model"
)

var monthFile = regexp.MustCompile(`^\d{4}-\d{2}\.csv$`)

// Service reads and writes monthly ledgers in one output directory.
type Service struct {
	dir string
}

// NewService creates a ledger Service rooted at dir.
func NewService(dir string) *Service {
	return &Service{dir: dir}
}

// Path returns the ledger path for month ("YYYY-MM").
func (s *Service) Path(month string) string {
	return filepath.Join(s.dir, month+".csv")
}

// Prepare returns the rows written to a ledger: transfers dropped, ordered
// by date, then institution, then amount.
func Prepare(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.IsTransfer {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Institution != b.Institution {
			return a.Institution < b.Institution
		}
		return a.Amount.LessThan(b.Amount)
	})
	return out
}

// Export writes the ledger for month, replacing any existing file, and
// returns its path.
func (s *Service) Export(month string, txns []model.Transaction) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := s.Path(month)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating ledger: %w", err)
	}
	if err := WriteTransactions(f, Prepare(txns)); err != nil {
		f.Close()
		return "", fmt.Errorf("writing ledger %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing ledger %s: %w", path, err)
	}
	return path, nil
}

// ReadFile reads the ledger at path.
func ReadFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}

// History reads every monthly ledger in the output directory except the
// one for skipMonth. Unreadable ledgers are reported in the returned
// warnings and otherwise skipped.
func (s *Service) History(skipMonth string) ([]model.Transaction, []string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading output dir: %w", err)
	}

	var (
		all      []model.Transaction
		warnings []string
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !monthFile.MatchString(name) || name == skipMonth+".csv" {
			continue
		}
		txns, err := ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		all = append(all, txns...)
	}
	return all, warnings, nil
}

// Package enrichment stores line-item breakdowns of aggregate transactions
// (an Amazon order behind one card charge, a receipt behind a store visit).
//
// Each entry lives at {dir}/{transaction_id}.json. Acquiring the data is
// out of scope; the cache is filled by external tools or `FileCache.Write`.
package enrichment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

const fileExt = ".json"

// Entry is one cache file.
type Entry struct {
	TransactionID string                 `json:"transaction_id"`
	Source        string                 `json:"source,omitempty"`
	OrderID       string                 `json:"order_id,omitempty"`
	MatchedAt     time.Time              `json:"matched_at,omitzero"`
	Items         []model.EnrichmentItem `json:"items"`
}

// FileCache is a directory of JSON entries keyed by transaction ID.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache returns a cache rooted at dir. The directory need not exist.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir, now: time.Now}
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) path(txnID string) string {
	return filepath.Join(c.dir, txnID+fileExt)
}

// Lookup returns the cached items for txnID. A missing file is a miss
// (false, nil); an unreadable or malformed file is an error.
func (c *FileCache) Lookup(txnID string) ([]model.EnrichmentItem, bool, error) {
	entry, err := c.Read(txnID)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Items, true, nil
}

// Read loads the full entry for txnID.
func (c *FileCache) Read(txnID string) (Entry, error) {
	data, err := os.ReadFile(c.path(txnID))
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("parsing %s: %w", filepath.Base(c.path(txnID)), err)
	}
	if entry.TransactionID == "" {
		entry.TransactionID = txnID
	}
	return entry, nil
}

// Write stores entry, overwriting any previous one for the same ID.
// MatchedAt defaults to now.
func (c *FileCache) Write(entry Entry) error {
	if entry.TransactionID == "" {
		return errors.New("enrichment entry has no transaction_id")
	}
	if entry.MatchedAt.IsZero() {
		entry.MatchedAt = c.now().UTC().Truncate(time.Second)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating enrichment cache dir: %w", err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling enrichment entry: %w", err)
	}
	if err := os.WriteFile(c.path(entry.TransactionID), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing enrichment entry: %w", err)
	}
	return nil
}

// List returns the transaction IDs that have cache entries, sorted.
func (c *FileCache) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading enrichment cache dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

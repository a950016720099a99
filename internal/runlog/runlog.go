// Package runlog appends the warnings and errors of every tally run to
// logs/run-log.csv so problems stay inspectable after the terminal is gone.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Levels recorded in the log.
const (
	LevelWarning = "warning"
	LevelError   = "error"
	LevelInfo    = "info"
)

// FileName is the log file inside the logs directory.
const FileName = "run-log.csv"

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,command,month,level,message"

const (
	numFields    = 6
	colTimestamp = 0
	colRunID     = 1
	colCommand   = 2
	colMonth     = 3
	colLevel     = 4
	colMessage   = 5
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Command   string
	Month     string
	Level     string
	Message   string
}

// NewRunID returns a fresh identifier shared by all entries of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Run collects entries for a single command invocation.
type Run struct {
	ID      string
	Command string
	Month   string
	now     func() time.Time
	entries []Entry
}

// NewRun starts a run with a new ID.
func NewRun(command, month string) *Run {
	return &Run{ID: NewRunID(), Command: command, Month: month, now: time.Now}
}

func (r *Run) add(level, msg string) {
	r.entries = append(r.entries, Entry{
		Timestamp: r.now().UTC(),
		RunID:     r.ID,
		Command:   r.Command,
		Month:     r.Month,
		Level:     level,
		Message:   msg,
	})
}

// Info records an informational message.
func (r *Run) Info(msg string) { r.add(LevelInfo, msg) }

// Record adds warnings and errors, in that order.
func (r *Run) Record(warnings, errs []string) {
	for _, w := range warnings {
		r.add(LevelWarning, w)
	}
	for _, e := range errs {
		r.add(LevelError, e)
	}
}

// Entries returns what has been recorded so far.
func (r *Run) Entries() []Entry { return r.entries }

// Flush appends the collected entries to the log in logsDir.
func (r *Run) Flush(logsDir string) error {
	if len(r.entries) == 0 {
		return nil
	}
	if err := Append(logsDir, r.entries); err != nil {
		return err
	}
	r.entries = nil
	return nil
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colCommand] = e.Command
	row[colMonth] = e.Month
	row[colLevel] = e.Level
	row[colMessage] = e.Message
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Command:   record[colCommand],
		Month:     record[colMonth],
		Level:     record[colLevel],
		Message:   record[colMessage],
	}, nil
}

// Append writes entries to <logsDir>/run-log.csv, creating the file and header if needed.
func Append(logsDir string, entries []Entry) error {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(logsDir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <logsDir>/run-log.csv.
// Returns nil if the file does not exist.
func Read(logsDir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(logsDir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

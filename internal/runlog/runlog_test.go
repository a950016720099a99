package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 2, 1, 10, 30, 0, 0, time.UTC)

func testRun() *Run {
	r := NewRun("process", "2025-01")
	r.now = func() time.Time { return testTime }
	return r
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestRun_RecordAndFlush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	r := testRun()
	r.Record([]string{"removed 1 duplicate transaction(s)"}, []string{"x.csv: file not found"})
	r.Info("exported 12 transaction(s)")
	require.Len(t, r.Entries(), 3)

	require.NoError(t, r.Flush(dir))
	assert.Empty(t, r.Entries())

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, LevelWarning, entries[0].Level)
	assert.Equal(t, LevelError, entries[1].Level)
	assert.Equal(t, LevelInfo, entries[2].Level)
	assert.Equal(t, r.ID, entries[1].RunID)
	assert.Equal(t, "process", entries[1].Command)
	assert.Equal(t, "2025-01", entries[1].Month)
	assert.Equal(t, testTime, entries[0].Timestamp)
}

func TestFlush_NothingRecordedCreatesNoFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testRun().Flush(dir))
	_, err := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	first := testRun()
	first.Record([]string{"one"}, nil)
	require.NoError(t, first.Flush(dir))

	second := testRun()
	second.Record(nil, []string{"two, with comma"})
	require.NoError(t, second.Flush(dir))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two, with comma", entries[1].Message)
	assert.NotEqual(t, entries[0].RunID, entries[1].RunID)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestRead_NotExist(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadTimestamp(t *testing.T) {
	_, err := UnmarshalEntry([]string{"yesterday", "id", "process", "", "info", "msg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

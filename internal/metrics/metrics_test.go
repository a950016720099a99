package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func TestStage(t *testing.T) {
	r := NewRecorder()
	r.Stage("dedup", model.StageResult{
		Transactions: make([]model.Transaction, 3),
		Warnings:     []string{"removed 1 duplicate transaction(s)"},
	})
	r.Stage("parse", model.StageResult{Errors: []string{"a", "b"}})

	assert.Equal(t, 3.0, testutil.ToFloat64(r.StageTransactions.WithLabelValues("dedup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StageWarnings.WithLabelValues("dedup")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.StageErrors.WithLabelValues("parse")))
}

func TestLLMRequest(t *testing.T) {
	r := NewRecorder()
	r.LLMRequest("anthropic", "success")
	r.LLMRequest("anthropic", "success")
	r.LLMRequest("anthropic", "failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.LLMRequests.WithLabelValues("anthropic", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.LLMRequests))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Stage("export", model.StageResult{Transactions: make([]model.Transaction, 5)})
	r.Finish()

	path := filepath.Join(t.TempDir(), "tally.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tally_stage_transactions{stage="export"} 5`)
	assert.Contains(t, string(data), "tally_last_run_timestamp_seconds")
}

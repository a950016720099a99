package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Exclude.Patterns = []string{"PAYROLL"}
	cfg.LLM.Provider = "gemini"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.General, got.General)
	assert.Equal(t, cfg.TransferDetection, got.TransferDetection)
	assert.Equal(t, []string{"PAYROLL"}, got.Exclude.Patterns)
	assert.Equal(t, "gemini", got.LLM.Provider)
	assert.Equal(t, 60*time.Second, got.LLM.Timeout)
	assert.Equal(t, cfg.Git, got.Git)
	require.Len(t, got.Accounts, 3)
	assert.Equal(t, model.AccountTypeChecking, got.Accounts[2].Type)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "output", cfg.General.OutputDir)
	assert.Equal(t, "enrichment-cache", cfg.General.EnrichmentCacheDir)
	assert.Equal(t, []string{"PAYMENT", "AUTOPAY", "ONLINE PAYMENT", "PAYOFF"}, cfg.TransferDetection.Keywords)
	assert.Equal(t, 5, cfg.TransferDetection.DateWindowDays)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.LLM.APIKeyEnv)
	assert.False(t, cfg.Git.AutoCommit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := "transfer_detection:\n  date_window_days: 3\naccounts:\n  - name: Checking\n    institution: elevations\n    parser: chase_checking\n    account_type: checking\n    input_dir: input/elevations\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TransferDetection.DateWindowDays)
	assert.Equal(t, []string{"PAYMENT", "AUTOPAY", "ONLINE PAYMENT", "PAYOFF"}, cfg.TransferDetection.Keywords)
	assert.Equal(t, "output", cfg.General.OutputDir)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "elevations", cfg.Accounts[0].Institution)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TALLY_TEST_OUT", "/tmp/ledgers")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("general:\n  output_dir: ${TALLY_TEST_OUT}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledgers", cfg.General.OutputDir)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TransferDetection.DateWindowDays = -1
	cfg.Accounts = append(cfg.Accounts, model.Account{Name: "Savings", Type: "savings"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date_window_days")
	assert.Contains(t, err.Error(), "institution is required")
	assert.Contains(t, err.Error(), `unknown account_type "savings"`)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "output_dir: output")
	assert.Contains(t, contents, "date_window_days: 5")
	assert.Contains(t, contents, "account_type: credit_card")
	assert.Contains(t, contents, "timeout: 1m0s")
}

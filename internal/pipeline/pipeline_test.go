package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/categorizer"
	"github.com/tallyhq/tally/internal/enrichment"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/model"
)

// newProject lays out a project with the importer fixtures as January input.
func newProject(t *testing.T) (string, *accounts.Service) {
	t.Helper()
	root := t.TempDir()
	accts := []model.Account{
		{Name: "Chase Card", Institution: "chase", Parser: "chase", Type: model.AccountTypeCreditCard, InputDir: "input/chase"},
		{Name: "Capital One", Institution: "capital_one", Parser: "capital_one", Type: model.AccountTypeCreditCard, InputDir: "input/capital-one"},
		{Name: "Checking", Institution: "elevations", Parser: "chase_checking", Type: model.AccountTypeChecking, InputDir: "input/elevations"},
	}
	fixtures := map[string]string{
		"input/chase":       "chase.csv",
		"input/capital-one": "capital_one.csv",
		"input/elevations":  "chase_checking.csv",
	}
	for dir, name := range fixtures {
		data, err := os.ReadFile(filepath.Join("..", "importer", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, "2025-01.csv"), data, 0o644))
	}
	return root, accounts.NewService(accts)
}

func findByMerchant(t *testing.T, txns []model.Transaction, merchant string) model.Transaction {
	t.Helper()
	for _, txn := range txns {
		if txn.Merchant == merchant && txn.SplitFrom == "" {
			return txn
		}
	}
	t.Fatalf("no transaction with merchant %q", merchant)
	return model.Transaction{}
}

func TestRun(t *testing.T) {
	root, accts := newProject(t)

	cache := enrichment.NewFileCache(filepath.Join(root, "enrichment-cache"))
	amazonID := id.TransactionID("chase", time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), "AMAZON MKTPL*ZX81", decimal.RequireFromString("-45.00"), 1)
	require.NoError(t, cache.Write(enrichment.Entry{
		TransactionID: amazonID,
		Source:        "amazon",
		Items: []model.EnrichmentItem{
			{ItemName: "USB-C cable", Amount: decimal.RequireFromString("-20.00"), CategoryHint: "Shopping:Electronics"},
			{ItemName: "Dog food", Amount: decimal.RequireFromString("-25.00")},
		},
	}))

	rec := metrics.NewRecorder()
	p := &Pipeline{
		Root:      root,
		Accounts:  accts,
		Parsers:   importer.DefaultRegistry(),
		Transfers: defaultTransfers,
		Exclude:   []string{"ACME"},
		Cache:     cache,
		Categorizer: &categorizer.Categorizer{
			Rules: []model.MerchantRule{{Pattern: "CHIPOTLE", Category: "Food", Subcategory: "Restaurants", Source: model.RuleSourceUser}},
		},
		Recurring: map[string]bool{"NETFLIX.COM": true},
		Metrics:   rec,
	}

	res := p.Run(context.Background(), 2025, 1)
	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]int{"chase": 5, "capital_one": 3, "elevations": 6}, res.SourceCounts)

	// 14 parsed, 1 excluded, amazon replaced by 2 children.
	require.Len(t, res.Transactions, 14)

	assert.True(t, findByMerchant(t, res.Transactions, "CHASE CREDIT CRD AUTOPAY").IsTransfer)
	assert.True(t, findByMerchant(t, res.Transactions, "Payment Thank You-Mobile").IsTransfer)
	assert.True(t, findByMerchant(t, res.Transactions, "CAPITAL ONE ONLINE PAYMENT").IsTransfer)
	assert.True(t, findByMerchant(t, res.Transactions, "CAPITAL ONE ONLINE PYMT").IsTransfer)
	assert.False(t, findByMerchant(t, res.Transactions, "XCEL ENERGY PAYMENT").IsTransfer)

	chipotle := findByMerchant(t, res.Transactions, "CHIPOTLE 1234")
	assert.Equal(t, "Food", chipotle.Category)
	assert.Equal(t, "Restaurants", chipotle.Subcategory)
	assert.True(t, findByMerchant(t, res.Transactions, "NETFLIX.COM").IsRecurring)

	var children []model.Transaction
	for _, txn := range res.Transactions {
		if txn.SplitFrom == amazonID {
			children = append(children, txn)
		}
	}
	require.Len(t, children, 2)
	assert.Equal(t, "Shopping", children[0].Category)
	assert.Equal(t, model.Uncategorized, children[1].Category)

	assert.Contains(t, res.Warnings, "excluded 1 transaction(s) matching exclude patterns")
	assert.Contains(t, res.Warnings, "flagged 1 transaction(s) as recurring")
	assert.Contains(t, res.Warnings, "llm unavailable: 12 transaction(s) left uncategorized")

	assert.Equal(t, float64(14), testutil.ToFloat64(rec.StageTransactions.WithLabelValues(StageRecurring)))
	assert.Equal(t, float64(13), testutil.ToFloat64(rec.StageTransactions.WithLabelValues(StageExclude)))
}

func TestRun_OtherMonthIsEmpty(t *testing.T) {
	root, accts := newProject(t)
	p := &Pipeline{Root: root, Accounts: accts, Parsers: importer.DefaultRegistry(), Transfers: defaultTransfers}

	res := p.Run(context.Background(), 2025, 2)
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 14, res.SourceCounts["chase"]+res.SourceCounts["capital_one"]+res.SourceCounts["elevations"])
}

func TestRun_UnknownParserIsError(t *testing.T) {
	p := &Pipeline{
		Root:     t.TempDir(),
		Accounts: accounts.NewService([]model.Account{{Name: "Mystery", Institution: "mystery", Parser: "ofx", Type: model.AccountTypeChecking}}),
		Parsers:  importer.DefaultRegistry(),
	}

	res := p.Run(context.Background(), 2025, 1)
	assert.Equal(t, []string{`account "Mystery": unknown parser "ofx" (known: capital_one, chase, chase_checking)`}, res.Errors)
	assert.Empty(t, res.Transactions)
}

func TestRun_MissingInputDirIsQuiet(t *testing.T) {
	p := &Pipeline{
		Root:     t.TempDir(),
		Accounts: accounts.NewService([]model.Account{{Name: "Card", Institution: "chase", Parser: "chase", Type: model.AccountTypeCreditCard, InputDir: "input/chase"}}),
		Parsers:  importer.DefaultRegistry(),
	}

	res := p.Run(context.Background(), 2025, 1)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Transactions)
	assert.Zero(t, res.SourceCounts["chase"])
}

// Package pipeline turns a month of raw bank exports into a categorized
// ledger. Every stage is a function from transactions to a
// model.StageResult; Pipeline.Run wires them in a fixed order and collects
// the warnings and errors of all stages for the end-of-run summary.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/categorizer"
	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/logger"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/model"
)

// Stage names used in logs and metrics.
const (
	StageParse      = "parse"
	StageFilter     = "filter_month"
	StageExclude    = "exclude"
	StageDedup      = "dedup"
	StageTransfers  = "transfers"
	StageEnrich     = "enrich"
	StageCategorize = "categorize"
	StageRecurring  = "recurring"
)

// Pipeline holds the collaborators of one processing run.
type Pipeline struct {
	Root        string // project directory; account input dirs are relative to it
	Accounts    *accounts.Service
	Parsers     *importer.Registry
	Transfers   TransferConfig
	Exclude     []string
	Cache       Lookup
	Categorizer *categorizer.Categorizer
	Recurring   map[string]bool   // upper-cased merchants, see recurring.Detect
	Metrics     *metrics.Recorder // optional
}

// Result is the outcome of a run.
type Result struct {
	model.StageResult
	SourceCounts map[string]int // parsed transactions per institution, before filtering
}

// Run processes the given calendar month. It never fails: problems are
// reported in the result's warnings and errors.
func (p *Pipeline) Run(ctx context.Context, year, month int) Result {
	log := logger.FromContext(ctx)
	res := Result{SourceCounts: make(map[string]int)}

	step := func(stage string, in int, sr model.StageResult) []model.Transaction {
		res.Absorb(sr)
		if p.Metrics != nil {
			p.Metrics.Stage(stage, sr)
		}
		log.Debug().
			Str("stage", stage).
			Int("in", in).
			Int("out", len(sr.Transactions)).
			Int("warnings", len(sr.Warnings)).
			Int("errors", len(sr.Errors)).
			Msg("stage complete")
		return sr.Transactions
	}

	parsed := p.parse(ctx, res.SourceCounts)
	txns := step(StageParse, 0, parsed)

	txns = step(StageFilter, len(txns), FilterMonth(txns, year, month))
	txns = step(StageExclude, len(txns), Exclude(txns, p.Exclude))
	txns = step(StageDedup, len(txns), Deduplicate(txns))

	transfers := DetectTransfers(txns, p.Transfers, p.Accounts)
	txns = step(StageTransfers, len(txns), transfers)
	log.Debug().Int("pairs", countTransfers(txns)/2).Msg("transfer pairs matched")

	cache := p.Cache
	if cache == nil {
		cache = noCache{}
	}
	txns = step(StageEnrich, len(txns), Enrich(txns, cache))

	cat := p.Categorizer
	if cat == nil {
		cat = &categorizer.Categorizer{}
	}
	txns = step(StageCategorize, len(txns), cat.Categorize(ctx, txns))
	txns = step(StageRecurring, len(txns), MarkRecurring(txns, p.Recurring))

	res.Transactions = txns
	return res
}

// parse runs every configured account's parser over its input directory.
func (p *Pipeline) parse(ctx context.Context, counts map[string]int) model.StageResult {
	log := logger.FromContext(ctx)
	var out model.StageResult

	for _, acct := range p.Accounts.All() {
		parser := p.Parsers.Get(acct.Parser)
		if parser == nil {
			out.Errorf("account %q: unknown parser %q (known: %s)", acct.Name, acct.Parser, strings.Join(p.Parsers.Formats(), ", "))
			continue
		}

		dir := acct.InputDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.Root, dir)
		}
		files, err := importer.Discover(dir)
		if err != nil {
			out.Errorf("account %q: %v", acct.Name, err)
			continue
		}

		for _, path := range files {
			sr := importer.ParseFile(parser, importer.Source{
				Path:        path,
				Institution: acct.Institution,
				Account:     acct.Name,
			})
			out.Absorb(sr)
			out.Transactions = append(out.Transactions, sr.Transactions...)
			counts[acct.Institution] += len(sr.Transactions)
			log.Debug().Str("file", path).Str("parser", parser.Format()).Int("transactions", len(sr.Transactions)).Msg("parsed")
		}
	}
	return out
}

type noCache struct{}

func (noCache) Lookup(string) ([]model.EnrichmentItem, bool, error) { return nil, false, nil }

func countTransfers(txns []model.Transaction) int {
	n := 0
	for _, t := range txns {
		if t.IsTransfer {
			n++
		}
	}
	return n
}

// MonthString renders a year and month as "YYYY-MM".
func MonthString(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

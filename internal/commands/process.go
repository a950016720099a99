package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/categorizer"
	"github.com/tallyhq/tally/internal/enrichment"
	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/llm"
	"github.com/tallyhq/tally/internal/logger"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/pipeline"
	"github.com/tallyhq/tally/internal/recurring"
	"github.com/tallyhq/tally/internal/rules"
	"github.com/tallyhq/tally/internal/runlog"
)

type processOptions struct {
	month       string
	noLLM       bool
	metricsFile string
}

func newProcessCommand(root *rootOptions) *cobra.Command {
	opts := processOptions{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Build the categorized ledger for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(root.repo)
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), p.cfg.Logging)
			ctx := logger.WithContext(cmd.Context(), log)
			return runProcess(ctx, cmd.OutOrStdout(), p, opts)
		},
	}

	cmd.Flags().StringVar(&opts.month, "month", "", "month to process (YYYY-MM)")
	_ = cmd.MarkFlagRequired("month")
	cmd.Flags().BoolVar(&opts.noLLM, "no-llm", false, "skip Tier 2 categorization")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics to this node_exporter textfile")

	return cmd
}

func runProcess(ctx context.Context, out io.Writer, p *project, opts processOptions) error {
	log := logger.FromContext(ctx)

	year, month, err := pipeline.ParseMonth(opts.month)
	if err != nil {
		return err
	}
	monthStr := pipeline.MonthString(year, month)

	ruleList, err := rules.Load(p.path(rules.RulesFile))
	if err != nil {
		return err
	}
	taxonomy, err := rules.LoadCategories(p.path(rules.CategoriesFile))
	if err != nil {
		return err
	}

	var provider llm.Provider = llm.None{}
	if !opts.noLLM {
		provider, err = llm.New(p.cfg.LLM, os.Getenv)
		if err != nil {
			return err
		}
	}

	rec := metrics.NewRecorder()
	ledgers := ledger.NewService(p.path(p.cfg.General.OutputDir))

	history, historyWarnings, err := ledgers.History(monthStr)
	if err != nil {
		return err
	}
	recurringMerchants := recurring.Detect(history)
	log.Debug().Int("history", len(history)).Int("recurring", len(recurringMerchants)).Msg("loaded ledger history")

	pl := &pipeline.Pipeline{
		Root:     p.root,
		Accounts: accounts.NewService(p.cfg.Accounts),
		Parsers:  importer.DefaultRegistry(),
		Transfers: pipeline.TransferConfig{
			Keywords:       p.cfg.TransferDetection.Keywords,
			DateWindowDays: p.cfg.TransferDetection.DateWindowDays,
		},
		Exclude: p.cfg.Exclude.Patterns,
		Cache:   enrichment.NewFileCache(p.path(p.cfg.General.EnrichmentCacheDir)),
		Categorizer: &categorizer.Categorizer{
			Rules:    ruleList,
			Taxonomy: taxonomy,
			Provider: provider,
			Observer: rec,
		},
		Recurring: recurringMerchants,
		Metrics:   rec,
	}

	log.Info().Str("month", monthStr).Str("provider", provider.Name()).Msg("processing")
	res := pl.Run(ctx, year, month)
	res.Warnings = append(historyWarnings, res.Warnings...)

	path, err := ledgers.Export(monthStr, res.Transactions)
	if err != nil {
		return err
	}

	summary := ledger.Summarize(monthStr, res.Transactions, res.SourceCounts, res.Warnings, res.Errors)
	summary.Print(out)
	fmt.Fprintf(out, "\nLedger written to %s\n", path)

	run := runlog.NewRun("process", monthStr)
	run.Record(res.Warnings, res.Errors)
	run.Info(fmt.Sprintf("exported %d of %d transaction(s) to %s", summary.Total, len(res.Transactions), path))
	if err := run.Flush(p.path(p.cfg.General.LogsDir)); err != nil {
		log.Warn().Err(err).Msg("failed to write run log")
	}

	rec.Finish()
	if opts.metricsFile != "" {
		if err := rec.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if p.cfg.Git.AutoCommit {
		commitLedger(log, out, p, monthStr, path)
	}

	log.Info().
		Str("month", monthStr).
		Int("transactions", summary.Total).
		Int("warnings", len(res.Warnings)).
		Int("errors", len(res.Errors)).
		Msg("process complete")
	return nil
}

func commitLedger(log zerolog.Logger, out io.Writer, p *project, month, path string) {
	hash, err := p.commit("process: "+month+" ledger", path)
	if err != nil {
		log.Warn().Err(err).Msg("auto-commit failed")
		return
	}
	if hash != "" {
		fmt.Fprintf(out, "Committed %s\n", hash)
	}
}

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/categorizer"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/rules"
	"github.com/tallyhq/tally/internal/runlog"
)

type learnOptions struct {
	original  string
	corrected string
	commit    bool
}

func newLearnCommand(root *rootOptions) *cobra.Command {
	opts := learnOptions{}

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn merchant rules from a corrected ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(root.repo)
			if err != nil {
				return err
			}
			return runLearn(cmd.OutOrStdout(), p, opts)
		},
	}

	cmd.Flags().StringVar(&opts.original, "original", "", "ledger as exported by process")
	cmd.Flags().StringVar(&opts.corrected, "corrected", "", "the same ledger with corrected categories")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("corrected")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "commit the updated rules file")

	return cmd
}

func runLearn(out io.Writer, p *project, opts learnOptions) error {
	original, err := ledger.ReadFile(p.path(opts.original))
	if err != nil {
		return err
	}
	corrected, err := ledger.ReadFile(p.path(opts.corrected))
	if err != nil {
		return err
	}

	taxonomy, err := rules.LoadCategories(p.path(rules.CategoriesFile))
	if err != nil {
		return err
	}
	var fatal []ledger.ValidationError
	for _, pr := range ledger.ValidateCorrections(original, corrected, rules.Taxonomy(taxonomy)) {
		if !pr.Fatal() {
			fmt.Fprintf(out, "warning: %s (ignored)\n", pr.Error())
			continue
		}
		fatal = append(fatal, pr)
	}
	if len(fatal) > 0 {
		fmt.Fprintf(out, "Corrected ledger has %d problem(s):\n", len(fatal))
		for _, pr := range fatal {
			fmt.Fprintf(out, "  - %s\n", pr.Error())
		}
		return errors.New("corrected ledger failed validation, no rules learned")
	}

	rulesPath := p.path(rules.RulesFile)
	existing, err := rules.Load(rulesPath)
	if err != nil {
		return err
	}

	result := categorizer.Learn(original, corrected, existing)
	if err := rules.SaveLearned(rulesPath, result.Learned()); err != nil {
		return err
	}

	msg := fmt.Sprintf("learned rules: %d added, %d updated, %d skipped (covered by user rules)",
		result.Added, result.Updated, result.Skipped)
	fmt.Fprintln(out, msg)

	month := ""
	if len(original) > 0 {
		month = original[0].Month()
	}
	run := runlog.NewRun("learn", month)
	run.Info(msg)
	if err := run.Flush(p.path(p.cfg.General.LogsDir)); err != nil {
		fmt.Fprintf(out, "warning: failed to write run log: %v\n", err)
	}

	if opts.commit {
		hash, err := p.commit(fmt.Sprintf("learn: %d added, %d updated", result.Added, result.Updated), rules.RulesFile)
		if err != nil {
			return fmt.Errorf("committing rules: %w", err)
		}
		if hash != "" {
			fmt.Fprintf(out, "Committed %s\n", hash)
		}
	}
	return nil
}

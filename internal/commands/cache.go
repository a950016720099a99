package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/enrichment"
	"github.com/tallyhq/tally/internal/model"
)

func newCacheCommand(root *rootOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the enrichment cache",
	}

	open := func() (*enrichment.FileCache, error) {
		p, err := openProject(root.repo)
		if err != nil {
			return nil, err
		}
		return enrichment.NewFileCache(p.path(p.cfg.General.EnrichmentCacheDir)), nil
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List transactions with cached line items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			return listCache(cmd.OutOrStdout(), c)
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "show <transaction-id>",
		Short: "Show the cached line items of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			return showCache(cmd.OutOrStdout(), c, args[0])
		},
	})

	return cacheCmd
}

func listCache(out io.Writer, c *enrichment.FileCache) error {
	ids, err := c.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(out, "No entries in %s\n", c.Dir())
		return nil
	}
	for _, txnID := range ids {
		fmt.Fprintln(out, txnID)
	}
	return nil
}

func showCache(out io.Writer, c *enrichment.FileCache, txnID string) error {
	entry, err := c.Read(txnID)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no enrichment entry for %s", txnID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Transaction: %s\n", entry.TransactionID)
	if entry.Source != "" {
		fmt.Fprintf(out, "Source:      %s\n", entry.Source)
	}
	if entry.OrderID != "" {
		fmt.Fprintf(out, "Order:       %s\n", entry.OrderID)
	}
	if !entry.MatchedAt.IsZero() {
		fmt.Fprintf(out, "Matched at:  %s\n", entry.MatchedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "Items (%d):\n", len(entry.Items))
	for _, it := range entry.Items {
		line := fmt.Sprintf("  %-40s %10s", it.ItemName, it.Amount.StringFixed(2))
		if it.CategoryHint != "" {
			cat, sub := model.ParseCategoryValue(it.CategoryHint)
			line += "  " + model.CategoryValue(cat, sub)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

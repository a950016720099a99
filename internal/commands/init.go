package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/gitops"
	"github.com/tallyhq/tally/internal/rules"
)

const gitignore = "input/\nenrichment-cache/\nlogs/\n"

func newInitCommand() *cobra.Command {
	var withGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, withGit)
		},
	}

	cmd.Flags().BoolVar(&withGit, "git", false, "initialize a git repository and commit the project files")

	return cmd
}

func runInit(out io.Writer, dir string, withGit bool) error {
	cfg := config.Default()

	dirs := []string{cfg.General.OutputDir, cfg.General.EnrichmentCacheDir, cfg.General.LogsDir}
	for _, acct := range cfg.Accounts {
		dirs = append(dirs, acct.InputDir)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	files := []struct {
		name  string
		write func(path string) error
	}{
		{config.FileName, func(path string) error { return config.Save(path, cfg) }},
		{rules.CategoriesFile, writeString(rules.DefaultCategories)},
		{rules.RulesFile, writeString(rules.DefaultRules)},
		{".gitignore", writeString(gitignore)},
	}

	var created []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "  exists   %s\n", f.name)
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", f.name, err)
		}
		if err := f.write(path); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		fmt.Fprintf(out, "  created  %s\n", f.name)
		created = append(created, f.name)
	}

	if withGit {
		if !gitops.IsRepo(dir) {
			if err := gitops.Init(dir, nil); err != nil {
				return err
			}
		}
		if len(created) > 0 {
			author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
			hash, err := gitops.CommitPaths(dir, author, "init: tally project", created...)
			if err != nil {
				return fmt.Errorf("initial commit: %w", err)
			}
			if hash != "" {
				fmt.Fprintf(out, "Committed %s\n", hash)
			}
		}
	}

	fmt.Fprintf(out, "Initialized tally project at %s\n", dir)
	return nil
}

func writeString(content string) func(path string) error {
	return func(path string) error {
		return os.WriteFile(path, []byte(content), 0o644)
	}
}

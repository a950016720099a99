package commands

import (
	"fmt"
	"path/filepath"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/gitops"
)

// project is an initialized tally directory and its configuration.
type project struct {
	root string
	cfg  *config.Config
}

func openProject(dir string) (*project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run `tally init` first?)", err)
	}
	return &project{root: root, cfg: cfg}, nil
}

// path resolves a project-relative path. Absolute paths are returned as is.
func (p *project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

func (p *project) author() gitops.Author {
	return gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
}

// commit commits paths when the project is a git repository. It returns
// the short hash, or "" when there was nothing to commit.
func (p *project) commit(message string, paths ...string) (string, error) {
	if !gitops.IsRepo(p.root) {
		return "", fmt.Errorf("%s is not a git repository", p.root)
	}
	rel := make([]string, 0, len(paths))
	for _, path := range paths {
		r, err := filepath.Rel(p.root, p.path(path))
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", path, err)
		}
		rel = append(rel, r)
	}
	return gitops.CommitPaths(p.root, p.author(), message, rel...)
}

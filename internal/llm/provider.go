// Package llm is the Tier 2 categorization capability: a provider receives a
// batch of uncategorized transactions plus the taxonomy and returns
// category suggestions keyed by merchant.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/model"
)

// ErrNoAPIKey is returned by providers whose API key variable is unset.
var ErrNoAPIKey = errors.New("llm api key not set")

// Item is one transaction sent for categorization.
type Item struct {
	Merchant    string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

// Suggestion is a provider's answer for one merchant.
type Suggestion struct {
	Merchant    string `json:"merchant"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Provider categorizes a batch of items in a single call.
type Provider interface {
	Name() string
	CategorizeBatch(ctx context.Context, items []Item, taxonomy []model.Category) ([]Suggestion, error)
}

// None never suggests anything. It backs --no-llm and provider = "none".
type None struct{}

func (None) Name() string { return "none" }

func (None) CategorizeBatch(context.Context, []Item, []model.Category) ([]Suggestion, error) {
	return nil, nil
}

type factory func(cfg config.LLMConfig, getenv func(string) string) Provider

var providers = map[string]factory{
	"anthropic": func(cfg config.LLMConfig, getenv func(string) string) Provider {
		return NewAnthropic(cfg.Model, getenv(cfg.APIKeyEnv), cfg.MaxTokens)
	},
	"gemini": func(cfg config.LLMConfig, getenv func(string) string) Provider {
		return NewGemini(cfg.Model, getenv(cfg.APIKeyEnv), cfg.MaxTokens)
	},
	"none": func(config.LLMConfig, func(string) string) Provider {
		return None{}
	},
}

// New builds the provider named by cfg.Provider, wrapped with cfg.Timeout.
// The none provider is returned unwrapped.
// getenv resolves cfg.APIKeyEnv (os.Getenv in production).
func New(cfg config.LLMConfig, getenv func(string) string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = "none"
	}
	f, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q (known: %s)", cfg.Provider, strings.Join(Names(), ", "))
	}
	p := f(cfg, getenv)
	if Disabled(p) {
		return p, nil
	}
	return WithTimeout(p, cfg.Timeout), nil
}

// Disabled reports whether p never produces suggestions: nil, None, or a
// wrapper around None.
func Disabled(p Provider) bool {
	return p == nil || p.Name() == None{}.Name()
}

// Names lists the registered provider names.
func Names() []string {
	out := make([]string, 0, len(providers))
	for k := range providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

// WithTimeout bounds every CategorizeBatch call of p by d. A non-positive d
// returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: d}
}

func (t *timeoutProvider) CategorizeBatch(ctx context.Context, items []Item, taxonomy []model.Category) ([]Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		s   []Suggestion
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := t.Provider.CategorizeBatch(ctx, items, taxonomy)
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		return r.s, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", t.Name(), ctx.Err())
	}
}

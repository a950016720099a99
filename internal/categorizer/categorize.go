package categorizer

import (
	"context"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/llm"
	"github.com/tallyhq/tally/internal/model"
)

// LLM request outcomes reported to an Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Observer receives Tier 2 call outcomes. metrics.Recorder implements it.
type Observer interface {
	LLMRequest(provider, outcome string)
}

// Categorizer runs Tier 1 followed by a single batched Tier 2 call.
type Categorizer struct {
	Rules    []model.MerchantRule
	Taxonomy []model.Category
	Provider llm.Provider // nil behaves as llm.None
	Timeout  time.Duration
	Observer Observer
}

// Categorize assigns categories. Provider failures never escape: affected
// transactions end up Uncategorized with a warning.
func (c *Categorizer) Categorize(ctx context.Context, txns []model.Transaction) model.StageResult {
	res := ApplyRules(txns, c.Rules)
	out := res.Transactions

	var pending []int
	for i := range out {
		if !out[i].IsCategorized() {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return res
	}

	provider := c.Provider
	if llm.Disabled(provider) {
		c.observe(llm.None{}.Name(), OutcomeSkipped)
		markUncategorized(out, pending)
		res.Warnf("llm unavailable: %d transaction(s) left uncategorized", len(pending))
		return res
	}

	items := make([]llm.Item, len(pending))
	for n, i := range pending {
		items[n] = llm.Item{
			Merchant:    out[i].Merchant,
			Description: out[i].Description,
			Amount:      out[i].Amount,
			Date:        out[i].Date,
		}
	}

	suggestions, err := llm.WithTimeout(provider, c.Timeout).CategorizeBatch(ctx, items, c.Taxonomy)
	if err != nil {
		c.observe(provider.Name(), OutcomeFailure)
		res.Warnf("llm categorization failed: %v", err)
		suggestions = nil
	} else {
		c.observe(provider.Name(), OutcomeSuccess)
	}

	byMerchant := make(map[string]llm.Suggestion, len(suggestions))
	for _, s := range suggestions {
		key := strings.ToUpper(s.Merchant)
		if _, dup := byMerchant[key]; !dup {
			byMerchant[key] = s
		}
	}

	missed := 0
	for _, i := range pending {
		s, ok := byMerchant[strings.ToUpper(out[i].Merchant)]
		if !ok {
			out[i].Category = model.Uncategorized
			out[i].Subcategory = ""
			missed++
			continue
		}
		out[i].Category = s.Category
		out[i].Subcategory = s.Subcategory
	}
	if missed > 0 {
		res.Warnf("%d transaction(s) left uncategorized after llm", missed)
	}
	return res
}

func (c *Categorizer) observe(provider, outcome string) {
	if c.Observer != nil {
		c.Observer.LLMRequest(provider, outcome)
	}
}

func markUncategorized(txns []model.Transaction, idx []int) {
	for _, i := range idx {
		txns[i].Category = model.Uncategorized
		txns[i].Subcategory = ""
	}
}

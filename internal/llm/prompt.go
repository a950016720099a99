package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// BuildPrompt renders the categorization request for items against taxonomy.
func BuildPrompt(items []Item, taxonomy []model.Category) string {
	var b strings.Builder
	b.WriteString("You are categorizing household expenses. For each transaction below,\n")
	b.WriteString("assign the most appropriate category and subcategory from the provided taxonomy.\n\n")

	b.WriteString("## Category Taxonomy\n")
	for _, c := range taxonomy {
		if len(c.Subcategories) == 0 {
			fmt.Fprintf(&b, "- %s\n", c.Name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, strings.Join(c.Subcategories, ", "))
	}

	b.WriteString("\n## Transactions to Categorize\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", it.Merchant, it.Description, it.Amount.StringFixed(2), it.Date.Format("2006-01-02"))
	}

	b.WriteString("\n## Response Format\n")
	b.WriteString("Return a JSON array. Each element:\n")
	b.WriteString(`{"merchant": "...", "category": "...", "subcategory": "..."}` + "\n\n")
	b.WriteString("Use only categories and subcategories from the taxonomy above.\n")
	b.WriteString("If no subcategory applies, use an empty string for subcategory.")
	return b.String()
}

// ParseSuggestions extracts the JSON array between the first '[' and the
// last ']' of text. Elements without a merchant or category are dropped.
func ParseSuggestions(text string) ([]Suggestion, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, errors.New("response does not contain a JSON array")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}

	out := make([]Suggestion, 0, len(raw))
	for _, elem := range raw {
		var s Suggestion
		if err := json.Unmarshal(elem, &s); err != nil {
			continue
		}
		s.Merchant = strings.TrimSpace(s.Merchant)
		s.Category = strings.TrimSpace(s.Category)
		s.Subcategory = strings.TrimSpace(s.Subcategory)
		if s.Merchant == "" || s.Category == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

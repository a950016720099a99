// Package rules stores merchant rules (rules.toml) and the category taxonomy
// (categories.toml).
//
// Both files are TOML tables whose key order is significant: rules are
// matched in authoring order on ties, and the taxonomy is presented to the
// LLM in file order. Order is recovered from the decoder's key metadata.
package rules

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tallyhq/tally/internal/model"
)

const (
	RulesFile      = "rules.toml"
	CategoriesFile = "categories.toml"

	userSection    = "user_rules"
	learnedSection = "learned_rules"
	learnedHeader  = "[learned_rules]"
)

type rulesDoc struct {
	UserRules    map[string]string `toml:"user_rules"`
	LearnedRules map[string]string `toml:"learned_rules"`
}

// Load reads rules.toml and returns user rules followed by learned rules,
// each group in file order.
func Load(path string) ([]model.MerchantRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes rules.toml content.
func Parse(data string) ([]model.MerchantRule, error) {
	var doc rulesDoc
	md, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	var out []model.MerchantRule
	for _, key := range md.Keys() {
		if len(key) != 2 {
			continue
		}
		pattern := key[1]
		switch key[0] {
		case userSection:
			out = append(out, newRule(pattern, doc.UserRules[pattern], model.RuleSourceUser))
		case learnedSection:
			out = append(out, newRule(pattern, doc.LearnedRules[pattern], model.RuleSourceLearned))
		}
	}
	return model.SortRules(out), nil
}

func newRule(pattern, value string, src model.RuleSource) model.MerchantRule {
	cat, sub := model.ParseCategoryValue(value)
	return model.MerchantRule{Pattern: pattern, Category: cat, Subcategory: sub, Source: src}
}

// SaveLearned rewrites the [learned_rules] section of the rules file at path
// with the learned rules in rules. Everything before the section header is
// kept byte-for-byte; user rules in the slice are skipped.
func SaveLearned(path string, rules []model.MerchantRule) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rules: %w", err)
	}

	text := string(data)
	var prefix string
	if idx := strings.Index(text, learnedHeader); idx >= 0 {
		prefix = text[:idx]
	} else {
		prefix = strings.TrimRight(text, "\n") + "\n\n"
	}

	section, err := encodeLearned(rules)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(prefix+section), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// encodeLearned renders the learned section one key at a time so the
// encoder's sorted map output does not reorder rules.
func encodeLearned(rules []model.MerchantRule) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(learnedHeader + "\n")
	buf.WriteString("# System-managed rules from the learn command. Do not hand-edit.\n")
	buf.WriteString("# Same format as user_rules.\n")

	enc := toml.NewEncoder(&buf)
	for _, r := range rules {
		if r.Source != model.RuleSourceLearned {
			continue
		}
		kv := map[string]string{r.Pattern: model.CategoryValue(r.Category, r.Subcategory)}
		if err := enc.Encode(kv); err != nil {
			return "", fmt.Errorf("encoding rule %q: %w", r.Pattern, err)
		}
	}
	return buf.String(), nil
}

// LoadCategories reads categories.toml, preserving table order.
func LoadCategories(path string) ([]model.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return ParseCategories(string(data))
}

// ParseCategories decodes categories.toml content.
func ParseCategories(data string) ([]model.Category, error) {
	var doc map[string]struct {
		Subcategories []string `toml:"subcategories"`
	}
	md, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}

	var cats []model.Category
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		section, ok := doc[key[0]]
		if !ok {
			continue
		}
		cats = append(cats, model.Category{Name: key[0], Subcategories: section.Subcategories})
	}
	return cats, nil
}

// Taxonomy answers membership questions over a category list.
type Taxonomy []model.Category

// Valid reports whether category (and subcategory, when non-empty) exist.
func (t Taxonomy) Valid(category, subcategory string) bool {
	for _, c := range t {
		if c.Name != category {
			continue
		}
		if subcategory == "" {
			return true
		}
		for _, s := range c.Subcategories {
			if s == subcategory {
				return true
			}
		}
		return false
	}
	return false
}

package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

const sampleRules = `# my rules

[user_rules]
"KING SOOPERS" = "Food & Dining:Groceries"
"CHIPOTLE" = "Food & Dining:Fast Food"
"STATE FARM" = "Insurance"

[learned_rules]
"ZZZ LAST" = "Shopping"
"AAA FIRST" = "Travel:Flight"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func patterns(rules []model.MerchantRule) []string {
	var out []string
	for _, r := range rules {
		out = append(out, r.Pattern)
	}
	return out
}

func TestParse_PreservesFileOrder(t *testing.T) {
	rules, err := Parse(sampleRules)
	require.NoError(t, err)

	assert.Equal(t, []string{"KING SOOPERS", "CHIPOTLE", "STATE FARM", "ZZZ LAST", "AAA FIRST"}, patterns(rules))
	assert.Equal(t, model.RuleSourceUser, rules[0].Source)
	assert.Equal(t, "Food & Dining", rules[0].Category)
	assert.Equal(t, "Groceries", rules[0].Subcategory)
	assert.Equal(t, "Insurance", rules[2].Category)
	assert.Empty(t, rules[2].Subcategory)
	assert.Equal(t, model.RuleSourceLearned, rules[4].Source)
}

func TestParse_LearnedBeforeUserInFile(t *testing.T) {
	rules, err := Parse("[learned_rules]\n\"B\" = \"Shopping\"\n\n[user_rules]\n\"A\" = \"Travel\"\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, patterns(rules))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("[user_rules\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing rules")
}

func TestLoad_DefaultRulesIsEmpty(t *testing.T) {
	rules, err := Load(writeFile(t, RulesFile, DefaultRules))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestSaveLearned_PreservesPrefix(t *testing.T) {
	path := writeFile(t, RulesFile, sampleRules)
	prefix := sampleRules[:strings.Index(sampleRules, "[learned_rules]")]

	rules, err := Load(path)
	require.NoError(t, err)
	rules = append(rules, model.MerchantRule{Pattern: "NEW SHOP", Category: "Shopping", Subcategory: "Books", Source: model.RuleSourceLearned})

	require.NoError(t, SaveLearned(path, rules))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), prefix), "user section must be untouched")

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"KING SOOPERS", "CHIPOTLE", "STATE FARM", "ZZZ LAST", "AAA FIRST", "NEW SHOP"}, patterns(reloaded))
	assert.Equal(t, "Books", reloaded[5].Subcategory)
}

func TestSaveLearned_AppendsMissingSection(t *testing.T) {
	path := writeFile(t, RulesFile, "[user_rules]\n\"A\" = \"Travel\"\n")

	err := SaveLearned(path, []model.MerchantRule{{Pattern: "B", Category: "Shopping", Source: model.RuleSourceLearned}})
	require.NoError(t, err)

	rules, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, model.RuleSourceLearned, rules[1].Source)
}

func TestSaveLearned_Idempotent(t *testing.T) {
	path := writeFile(t, RulesFile, sampleRules)
	rules, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, SaveLearned(path, rules))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, SaveLearned(path, rules))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestLoadCategories_Default(t *testing.T) {
	cats, err := LoadCategories(writeFile(t, CategoriesFile, DefaultCategories))
	require.NoError(t, err)

	require.Len(t, cats, 18)
	assert.Equal(t, "Housing", cats[0].Name)
	assert.Equal(t, "Food & Dining", cats[2].Name)
	assert.Contains(t, cats[2].Subcategories, "Fast Food")
	assert.Equal(t, "Miscellaneous", cats[17].Name)
	assert.Empty(t, cats[17].Subcategories)
}

func TestTaxonomyValid(t *testing.T) {
	tax := Taxonomy{
		{Name: "Food & Dining", Subcategories: []string{"Groceries"}},
		{Name: "Insurance"},
	}
	assert.True(t, tax.Valid("Food & Dining", "Groceries"))
	assert.True(t, tax.Valid("Food & Dining", ""))
	assert.True(t, tax.Valid("Insurance", ""))
	assert.False(t, tax.Valid("Food & Dining", "Sushi"))
	assert.False(t, tax.Valid("Crypto", ""))
}

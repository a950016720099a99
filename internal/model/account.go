package model

// AccountType classifies a configured bank account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeCreditCard AccountType = "credit_card"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypeChecking || t == AccountTypeCreditCard
}

// Account describes where to find and how to parse one account's CSVs.
type Account struct {
	Name        string      `yaml:"name"`
	Institution string      `yaml:"institution"`
	Parser      string      `yaml:"parser"`
	Type        AccountType `yaml:"account_type"`
	InputDir    string      `yaml:"input_dir"`
}

// Category is one top-level entry of the category taxonomy.
type Category struct {
	Name          string
	Subcategories []string
}

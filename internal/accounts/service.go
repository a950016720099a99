package accounts

import (
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// Service provides in-memory lookup over the configured accounts.
type Service struct {
	accounts      []model.Account
	byName        map[string]model.Account
	byInstitution map[string]model.Account
}

// NewService creates a Service from a slice of accounts. When two accounts
// share an institution, the first one configured wins institution lookups.
func NewService(accounts []model.Account) *Service {
	byName := make(map[string]model.Account, len(accounts))
	byInst := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
		key := strings.ToLower(a.Institution)
		if _, ok := byInst[key]; !ok {
			byInst[key] = a
		}
	}
	return &Service{accounts: accounts, byName: byName, byInstitution: byInst}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by display name.
func (s *Service) Get(name string) (model.Account, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// ByInstitution returns the first account configured for an institution key.
func (s *Service) ByInstitution(institution string) (model.Account, bool) {
	a, ok := s.byInstitution[strings.ToLower(institution)]
	return a, ok
}

// TypeOf resolves the account type a transaction was posted to, first by
// account name and then by institution. Unknown accounts yield "".
func (s *Service) TypeOf(txn model.Transaction) model.AccountType {
	if a, ok := s.Get(txn.Account); ok {
		return a.Type
	}
	if a, ok := s.ByInstitution(txn.Institution); ok {
		return a.Type
	}
	return ""
}

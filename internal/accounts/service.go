package accounts

import (
	"github.com/tallybook-dev/tallybook/internal/model"
)

// Service provides in-memory lookup over a chart-of-accounts snapshot.
// Persistence belongs to the store; a Service is rebuilt from whatever
// snapshot the caller holds.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// All returns all accounts, active and deactivated.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// IsActive reports whether an account ID exists and is active.
func (s *Service) IsActive(id string) bool {
	a, ok := s.byID[id]
	return ok && a.Active
}

// Name returns the account's display name, or the raw ID when unknown.
func (s *Service) Name(id string) string {
	if a, ok := s.byID[id]; ok {
		return a.Name
	}
	return id
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// ByName returns the first account with the given name.
func (s *Service) ByName(name string) (model.Account, bool) {
	for _, a := range s.accounts {
		if a.Name == name {
			return a, true
		}
	}
	return model.Account{}, false
}

// Active returns only active accounts.
func (s *Service) Active() []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Active {
			result = append(result, a)
		}
	}
	return result
}

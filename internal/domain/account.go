package domain

type AccountID string

type ServiceID string

// Account is a subscriber account as listed by the upstream provider.
type Account struct {
	ID   AccountID
	Name string
}

// Service is a single collection service (one bin type) under an account.
type Service struct {
	ID   ServiceID
	Name string
}

// FindAccount returns the account with the given id.
func FindAccount(accounts []Account, id AccountID) (Account, bool) {
	for _, account := range accounts {
		if account.ID == id {
			return account, true
		}
	}

	return Account{}, false
}

// FindService returns the service with the given id.
func FindService(services []Service, id ServiceID) (Service, bool) {
	for _, service := range services {
		if service.ID == id {
			return service, true
		}
	}

	return Service{}, false
}

// UniqueAccounts drops empty and repeated ids, keeping the first occurrence and
// the upstream order.
func UniqueAccounts(accounts []Account) []Account {
	result := make([]Account, 0, len(accounts))
	seen := make(map[AccountID]struct{}, len(accounts))
	for _, account := range accounts {
		if account.ID == "" {
			continue
		}
		if _, ok := seen[account.ID]; ok {
			continue
		}
		seen[account.ID] = struct{}{}
		result = append(result, account)
	}

	return result
}

// UniqueServices is the service counterpart of UniqueAccounts.
func UniqueServices(services []Service) []Service {
	result := make([]Service, 0, len(services))
	seen := make(map[ServiceID]struct{}, len(services))
	for _, service := range services {
		if service.ID == "" {
			continue
		}
		if _, ok := seen[service.ID]; ok {
			continue
		}
		seen[service.ID] = struct{}{}
		result = append(result, service)
	}

	return result
}

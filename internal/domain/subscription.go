package domain

import (
	"fmt"
	"strings"
)

// ServiceSubscription binds one configured service to its account.
type ServiceSubscription struct {
	AccountID   AccountID
	ServiceID   ServiceID
	DisplayName string
}

// UniqueID is the stable identity "<account_id>_<service_id>".
func (s ServiceSubscription) UniqueID() string {
	return fmt.Sprintf("%s_%s", s.AccountID, s.ServiceID)
}

// ConfigEntry is the record produced at the end of onboarding. The password
// itself lives in the secret store under SecretRef.
type ConfigEntry struct {
	Title     string
	Username  string
	SecretRef string
	AccountID AccountID
	Services  []Service
}

func (e ConfigEntry) ServiceIDs() []ServiceID {
	ids := make([]ServiceID, 0, len(e.Services))
	for _, service := range e.Services {
		ids = append(ids, service.ID)
	}

	return ids
}

func (e ConfigEntry) Subscriptions() []ServiceSubscription {
	subscriptions := make([]ServiceSubscription, 0, len(e.Services))
	for _, service := range e.Services {
		subscriptions = append(subscriptions, ServiceSubscription{
			AccountID:   e.AccountID,
			ServiceID:   service.ID,
			DisplayName: service.Name,
		})
	}

	return subscriptions
}

func (e ConfigEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(e.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(string(e.AccountID)) == "" {
		return fmt.Errorf("account id is required")
	}
	if len(e.Services) == 0 {
		return fmt.Errorf("at least one service is required")
	}

	return nil
}

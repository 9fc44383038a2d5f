package wm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
)

const dateOnlyLayout = "2006-01-02"

type accountsResponse struct {
	Data struct {
		LinkedAccounts []struct {
			ID   string `json:"custAccountId"`
			Name string `json:"name"`
		} `json:"linkedAccounts"`
	} `json:"data"`
}

type servicesResponse struct {
	Data struct {
		Services []struct {
			ID   string `json:"serviceId"`
			Name string `json:"serviceName"`
		} `json:"services"`
	} `json:"data"`
}

type pickupResponse struct {
	Data struct {
		PickupScheduleInfo struct {
			PickupDates []string `json:"pickupDates"`
		} `json:"pickupScheduleInfo"`
	} `json:"data"`
}

func (c *Client) ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error) {
	if session.UserID == "" {
		return nil, errors.New("list accounts: user id is required")
	}

	var payload accountsResponse
	path := expandPath(c.API.AccountsPath, map[string]string{"user_id": session.UserID})
	if err := c.getJSON(ctx, "list accounts", session, path, &payload); err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(payload.Data.LinkedAccounts))
	for _, account := range payload.Data.LinkedAccounts {
		accounts = append(accounts, domain.Account{ID: domain.AccountID(account.ID), Name: account.Name})
	}

	return accounts, nil
}

func (c *Client) ListServices(ctx context.Context, session domain.Session, accountID domain.AccountID) ([]domain.Service, error) {
	var payload servicesResponse
	path := expandPath(c.API.ServicesPath, map[string]string{"account_id": string(accountID)})
	if err := c.getJSON(ctx, "list services", session, path, &payload); err != nil {
		return nil, err
	}

	services := make([]domain.Service, 0, len(payload.Data.Services))
	for _, service := range payload.Data.Services {
		services = append(services, domain.Service{ID: domain.ServiceID(service.ID), Name: service.Name})
	}

	return services, nil
}

// GetPickupSchedule returns the upcoming dates in the order the provider
// sent them. Date-only entries are placed at midnight in the client location.
func (c *Client) GetPickupSchedule(ctx context.Context, session domain.Session, accountID domain.AccountID, serviceID domain.ServiceID) (domain.PickupSchedule, error) {
	var payload pickupResponse
	path := expandPath(c.API.PickupPath, map[string]string{
		"account_id": string(accountID),
		"service_id": string(serviceID),
	})
	if err := c.getJSON(ctx, "pickup schedule", session, path, &payload); err != nil {
		return nil, err
	}

	dates := payload.Data.PickupScheduleInfo.PickupDates
	schedule := make(domain.PickupSchedule, 0, len(dates))
	for _, raw := range dates {
		value, err := c.parsePickupDate(raw)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, value)
	}

	return schedule, nil
}

func (c *Client) parsePickupDate(raw string) (time.Time, error) {
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return value, nil
	}
	if value, err := time.ParseInLocation(dateOnlyLayout, raw, c.location()); err == nil {
		return value, nil
	}

	return time.Time{}, fmt.Errorf("parse pickup date %q", raw)
}

package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
)

// Source is a persisted entry together with the credentials it polls with.
type Source struct {
	Entry       domain.ConfigEntry
	Credentials domain.Credentials
}

// Service manages persisted entries and reads sensor state.
type Service struct {
	repo  ports.SubscriptionRepository
	store ports.SecretStore
	state ports.PickupStateStore
}

func NewService(repo ports.SubscriptionRepository, store ports.SecretStore, state ports.PickupStateStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
		state: state,
	}
}

func (s *Service) Entries(ctx context.Context) ([]domain.ConfigEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return entries, nil
}

// Sources loads every entry with its password. Entries whose secret cannot be
// read are left out and reported in the joined error.
func (s *Service) Sources(ctx context.Context) ([]Source, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(entries))
	var errs error
	for _, entry := range entries {
		password, err := s.store.Get(ctx, entry.SecretRef)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("load password for account %s: %w", entry.AccountID, err))
			continue
		}

		sources = append(sources, Source{
			Entry:       entry,
			Credentials: domain.Credentials{Username: entry.Username, Password: password},
		})
	}

	return sources, errs
}

func (s *Service) RemoveEntry(ctx context.Context, accountID domain.AccountID) error {
	entry, err := s.entry(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if entry.SecretRef == "" {
		return nil
	}
	if err := s.store.Delete(ctx, entry.SecretRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		if restoreErr := s.repo.Save(ctx, entry); restoreErr != nil {
			return fmt.Errorf("delete password and restore subscription: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete password: %w", err)
	}

	return nil
}

// Sensors returns one sensor per configured subscription, merged with the
// last recorded state. Rows left behind by removed entries are ignored.
func (s *Service) Sensors(ctx context.Context) ([]domain.PickupSensor, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	recorded, err := s.state.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pickup state: %w", err)
	}
	byID := make(map[string]domain.PickupSensor, len(recorded))
	for _, sensor := range recorded {
		byID[sensor.UniqueID] = sensor
	}

	sensors := make([]domain.PickupSensor, 0, len(recorded))
	for _, entry := range entries {
		for _, sub := range entry.Subscriptions() {
			sensor := domain.NewPickupSensor(sub)
			if state, ok := byID[sensor.UniqueID]; ok {
				sensor.Value = state.Value
				sensor.ResolvedAt = state.ResolvedAt
				sensor.LastAttemptAt = state.LastAttemptAt
				sensor.LastError = state.LastError
				if state.Name != "" {
					sensor.Name = state.Name
				}
			}
			sensors = append(sensors, sensor)
		}
	}

	return sensors, nil
}

func (s *Service) Sensor(ctx context.Context, uniqueID string) (domain.PickupSensor, error) {
	sensors, err := s.Sensors(ctx)
	if err != nil {
		return domain.PickupSensor{}, err
	}

	for _, sensor := range sensors {
		if sensor.UniqueID == uniqueID {
			return sensor, nil
		}
	}

	return domain.PickupSensor{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, uniqueID)
}

func (s *Service) entry(ctx context.Context, accountID domain.AccountID) (domain.ConfigEntry, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return domain.ConfigEntry{}, err
	}

	for _, entry := range entries {
		if entry.AccountID == accountID {
			return entry, nil
		}
	}

	return domain.ConfigEntry{}, fmt.Errorf("%w: account %s", domain.ErrSubscriptionNotFound, accountID)
}

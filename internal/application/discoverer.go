package application

import (
	"context"
	"fmt"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
)

// Discoverer lists what an authorized session can see. Reads are idempotent
// and keep the upstream order; duplicate ids are dropped.
type Discoverer struct {
	upstream ports.Upstream
}

func NewDiscoverer(upstream ports.Upstream) *Discoverer {
	return &Discoverer{upstream: upstream}
}

func (d *Discoverer) ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error) {
	accounts, err := d.upstream.ListAccounts(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %w", domain.ErrUnknown, err)
	}

	return domain.UniqueAccounts(accounts), nil
}

func (d *Discoverer) ListServices(ctx context.Context, session domain.Session, accountID domain.AccountID) ([]domain.Service, error) {
	services, err := d.upstream.ListServices(ctx, session, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: list services for account %s: %w", domain.ErrUnknown, accountID, err)
	}

	return domain.UniqueServices(services), nil
}

func (d *Discoverer) PickupSchedule(ctx context.Context, session domain.Session, accountID domain.AccountID, serviceID domain.ServiceID) (domain.PickupSchedule, error) {
	schedule, err := d.upstream.GetPickupSchedule(ctx, session, accountID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup schedule for %s_%s: %w", domain.ErrUnknown, accountID, serviceID, err)
	}

	return schedule, nil
}

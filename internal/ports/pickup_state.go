package ports

import (
	"context"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
)

// PickupStateStore holds the latest resolved value per subscription.
type PickupStateStore interface {
	// RecordResolved replaces the value and clears the last error.
	RecordResolved(ctx context.Context, sub domain.ServiceSubscription, pickup domain.ResolvedPickup) error
	// RecordFailure keeps the previous value and stores the error.
	RecordFailure(ctx context.Context, sub domain.ServiceSubscription, at time.Time, cause error) error
	List(ctx context.Context) ([]domain.PickupSensor, error)
	Get(ctx context.Context, uniqueID string) (domain.PickupSensor, error)
}

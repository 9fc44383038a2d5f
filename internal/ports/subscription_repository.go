package ports

import (
	"context"

	"github.com/bnema/wm-pickup-cli/internal/domain"
)

type SubscriptionRepository interface {
	List(ctx context.Context) ([]domain.ConfigEntry, error)
	Save(ctx context.Context, entry domain.ConfigEntry) error
	Delete(ctx context.Context, accountID domain.AccountID) error
}

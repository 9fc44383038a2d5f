package ports

import (
	"context"

	"github.com/bnema/wm-pickup-cli/internal/domain"
)

// Upstream is the waste-management provider. Authorize must follow a
// successful Authenticate; every other call needs an authorized session.
type Upstream interface {
	Authenticate(ctx context.Context, username, password string) (domain.Session, error)
	Authorize(ctx context.Context, session domain.Session) (domain.Session, error)
	ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error)
	ListServices(ctx context.Context, session domain.Session, accountID domain.AccountID) ([]domain.Service, error)
	GetPickupSchedule(ctx context.Context, session domain.Session, accountID domain.AccountID, serviceID domain.ServiceID) (domain.PickupSchedule, error)
}

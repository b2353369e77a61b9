package ports

import (
	"context"

	"github.com/gramsight/dashboard/internal/core/domain"
)

// FarmerDashboardService aggregates the per-village data sources.
type FarmerDashboardService interface {
	// Refresh runs one aggregation round for villageID. published is false
	// when a newer round superseded this one and the result was discarded.
	Refresh(ctx context.Context, villageID string) (view domain.FarmerView, published bool)
	Select(ctx context.Context, villageID string) (domain.FarmerView, bool)
	Reload(ctx context.Context) (domain.FarmerView, bool, error)
	State() domain.FarmerState
	Villages(ctx context.Context) domain.Field[[]domain.Village]
	// Reset drops the selection and published view and suppresses rounds
	// still in flight.
	Reset()
}

// AdminDashboardService builds the admin overview.
type AdminDashboardService interface {
	Refresh(ctx context.Context) (view domain.AdminView, published bool)
	Current() (domain.AdminView, bool)
	Reset()
}

package contract

import (
	"context"

	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/specification"
)

type RequestRepository interface {
	Create(ctx context.Context, req *entity.ReturnRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReturnRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReturnRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// UpdateWhere applies updates to the row matching requestID only when
	// every precondition spec still holds, in a single conditional UPDATE.
	// It returns false when the precondition failed (another caller won the
	// race); callers treat that as "already handled".
	UpdateWhere(ctx context.Context, requestID string, updates map[string]interface{}, preconds ...specification.Specification) (bool, error)

	DeleteMany(ctx context.Context, requestIDs []string) (int64, error)
}

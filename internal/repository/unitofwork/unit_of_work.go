package unitofwork

import (
	"context"

	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RequestRepository() contract.RequestRepository
}

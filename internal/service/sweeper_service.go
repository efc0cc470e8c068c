package service

import (
	"context"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/logger"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/specification"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/unitofwork"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/courier"
)

// ISweeperService reconciles stored request state against live carrier state.
// It runs on a fixed interval and on demand from the admin console; both may
// overlap safely because every write goes through the lifecycle engine's
// conditional updates.
type ISweeperService interface {
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type sweeperService struct {
	uowFactory    unitofwork.RepositoryFactory
	courierClient courier.ICourierClient
	lifecycle     ILifecycleService
	sysLogger     logger.ILogger
}

func NewSweeperService(
	uowFactory unitofwork.RepositoryFactory,
	courierClient courier.ICourierClient,
	lifecycle ILifecycleService,
	sysLogger logger.ILogger,
) ISweeperService {
	return &sweeperService{
		uowFactory:    uowFactory,
		courierClient: courierClient,
		lifecycle:     lifecycle,
		sysLogger:     sysLogger,
	}
}

// Sweep polls the carrier for every non-terminal request that has a tracking
// number and feeds the results into the lifecycle engine, then re-attempts
// pickup scheduling for pending requests with no shipment. A failed item is
// skipped; the batch always completes.
func (s *sweeperService) Sweep(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.RequestRepository().FindAll(ctx, specification.NonTerminal{})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		if record.AWBNumber != "" && !record.Status.IsTerminal() && record.Status != entity.StatusDelivered {
			if s.sweepTrack(ctx, record.RequestID, record.AWBNumber, false) {
				updated++
			}
		}
		if record.ForwardAWBNumber != "" && record.ForwardStatus != entity.StatusDelivered {
			if s.sweepTrack(ctx, record.RequestID, record.ForwardAWBNumber, true) {
				updated++
			}
		}
	}

	awaiting, err := uow.RequestRepository().FindAll(ctx, specification.AwaitingPickup{})
	if err != nil {
		return updated, err
	}
	for _, record := range awaiting {
		scheduled, rerr := s.lifecycle.RetryPickup(ctx, record.RequestID)
		if rerr != nil {
			s.sysLogger.Warn("sweeper", "Pickup retry failed, skipping", map[string]interface{}{
				"request_id": record.RequestID, "error": rerr.Error(),
			})
			continue
		}
		if scheduled {
			updated++
		}
	}

	s.sysLogger.Info("sweeper", "Reconciliation sweep finished", map[string]interface{}{
		"scanned": len(records) + len(awaiting), "updated": updated,
	})
	return updated, nil
}

func (s *sweeperService) sweepTrack(ctx context.Context, requestID, awb string, forward bool) bool {
	track, err := s.courierClient.Track(ctx, awb)
	if err != nil {
		s.sysLogger.Warn("sweeper", "Carrier lookup failed, skipping", map[string]interface{}{
			"request_id": requestID, "awb": awb, "error": err.Error(),
		})
		return false
	}
	if track == nil {
		return false
	}

	advanced, err := s.lifecycle.AdvanceFromTracking(ctx, requestID, track, forward)
	if err != nil {
		s.sysLogger.Warn("sweeper", "Advance failed, skipping", map[string]interface{}{
			"request_id": requestID, "awb": awb, "error": err.Error(),
		})
		return false
	}
	return advanced
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *sweeperService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.sysLogger.Error("sweeper", "Sweep failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

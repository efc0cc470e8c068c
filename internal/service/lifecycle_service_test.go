package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"
	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/logger"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/contract"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/specification"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/unitofwork"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/commerce"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/courier"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/payments"

	"github.com/stretchr/testify/require"
)

// ---- in-memory repository with real conditional-update semantics ----

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]*entity.ReturnRequest
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*entity.ReturnRequest)}
}

func (r *memoryRepo) Create(ctx context.Context, req *entity.ReturnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	cp.CreatedAt = time.Now()
	r.records[req.RequestID] = &cp
	return nil
}

func (r *memoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if matchesAll(rec, specs) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ReturnRequest
	for _, rec := range r.records {
		if matchesAll(rec, specs) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memoryRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, rec := range r.records {
		counts[string(rec.Status)]++
	}
	return counts, nil
}

func (r *memoryRepo) UpdateWhere(ctx context.Context, requestID string, updates map[string]interface{}, preconds ...specification.Specification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[requestID]
	if !ok {
		return false, nil
	}
	if !matchesAll(rec, preconds) {
		return false, nil
	}
	for col, val := range updates {
		applyColumn(rec, col, val)
	}
	rec.UpdatedAt = time.Now()
	return true, nil
}

func (r *memoryRepo) DeleteMany(ctx context.Context, requestIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range requestIDs {
		if _, ok := r.records[id]; ok {
			delete(r.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepo) get(requestID string) *entity.ReturnRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[requestID]; ok {
		cp := *rec
		return &cp
	}
	return nil
}

func matchesAll(rec *entity.ReturnRequest, specs []specification.Specification) bool {
	for _, s := range specs {
		if !matches(rec, s) {
			return false
		}
	}
	return true
}

func matches(rec *entity.ReturnRequest, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByRequestID:
		return rec.RequestID == s.RequestID
	case specification.ByStatus:
		return rec.Status == s.Status
	case specification.ByType:
		return rec.Type == s.Type
	case specification.FilterBy:
		return columnValue(rec, s.Field) == fmt.Sprint(s.Value)
	case specification.IsNull:
		return columnValue(rec, s.Field) == ""
	case specification.NotEqual:
		return columnValue(rec, s.Field) != fmt.Sprint(s.Value)
	case specification.NonTerminal:
		return !rec.Status.IsTerminal() && (rec.AWBNumber != "" || rec.ForwardAWBNumber != "")
	case specification.AwaitingPickup:
		return rec.Status == entity.StatusPending && rec.ShipmentID == ""
	default:
		// Ordering and pagination do not filter.
		return true
	}
}

func columnValue(rec *entity.ReturnRequest, col string) string {
	switch col {
	case "status":
		return string(rec.Status)
	case "shipment_id":
		return rec.ShipmentID
	case "awb_number":
		return rec.AWBNumber
	case "replacement_order_id":
		return rec.ReplacementOrderID
	case "forward_shipment_id":
		return rec.ForwardShipmentID
	case "forward_status":
		return string(rec.ForwardStatus)
	case "forward_awb_number":
		return rec.ForwardAWBNumber
	default:
		return ""
	}
}

func applyColumn(rec *entity.ReturnRequest, col string, val interface{}) {
	switch col {
	case "status":
		rec.Status = entity.RequestStatus(val.(string))
	case "payment_id":
		rec.PaymentID = val.(string)
	case "payment_amount":
		rec.PaymentAmount = val.(float64)
	case "shipment_id":
		rec.ShipmentID = val.(string)
	case "awb_number":
		rec.AWBNumber = val.(string)
	case "pickup_date":
		rec.PickupDate = val.(string)
	case "replacement_order_id":
		rec.ReplacementOrderID = val.(string)
	case "forward_shipment_id":
		rec.ForwardShipmentID = val.(string)
	case "forward_awb_number":
		rec.ForwardAWBNumber = val.(string)
	case "forward_status":
		rec.ForwardStatus = entity.RequestStatus(val.(string))
	case "admin_notes":
		rec.AdminNotes = val.(string)
	case "picked_up_at":
		t := val.(time.Time)
		rec.PickedUpAt = &t
	case "in_transit_at":
		t := val.(time.Time)
		rec.InTransitAt = &t
	case "delivered_at":
		t := val.(time.Time)
		rec.DeliveredAt = &t
	case "approved_at":
		t := val.(time.Time)
		rec.ApprovedAt = &t
	case "rejected_at":
		t := val.(time.Time)
		rec.RejectedAt = &t
	}
}

type memoryUow struct{ repo *memoryRepo }

func (u *memoryUow) Begin(ctx context.Context) error               { return nil }
func (u *memoryUow) Commit() error                                 { return nil }
func (u *memoryUow) Rollback() error                               { return nil }
func (u *memoryUow) RequestRepository() contract.RequestRepository { return u.repo }

type memoryFactory struct{ repo *memoryRepo }

func (f *memoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUow{repo: f.repo}
}

// ---- adapter fakes ----

type stubCommerce struct {
	order            *commerce.Order
	variants         []commerce.Variant
	createOrderCalls int32
	failCreateOrder  bool
}

func (c *stubCommerce) FindOrder(ctx context.Context, orderNumber, contact string) (*commerce.Order, error) {
	return c.order, nil
}

func (c *stubCommerce) FetchVariants(ctx context.Context, productID int64) ([]commerce.Variant, error) {
	return c.variants, nil
}

func (c *stubCommerce) CreateReplacementOrder(ctx context.Context, original *commerce.Order, items []commerce.ReplacementItem, note string) (int64, error) {
	atomic.AddInt32(&c.createOrderCalls, 1)
	if c.failCreateOrder {
		return 0, errors.New("storefront unavailable")
	}
	return 9001, nil
}

type stubCourier struct {
	reverseCalls int32
	forwardCalls int32
	failReverse  bool
	tracks       map[string]*courier.TrackData
}

func (c *stubCourier) CreateReversePickup(ctx context.Context, req *entity.ReturnRequest, from courier.Destination) (*courier.Pickup, error) {
	atomic.AddInt32(&c.reverseCalls, 1)
	if c.failReverse {
		return nil, errors.New("aggregator down")
	}
	return &courier.Pickup{ShipmentID: "SHIP-1", AWBNumber: "AWB-1", PickupDate: "2026-09-01"}, nil
}

func (c *stubCourier) CreateForwardShipment(ctx context.Context, req *entity.ReturnRequest, to courier.Destination) (*courier.Shipment, error) {
	atomic.AddInt32(&c.forwardCalls, 1)
	return &courier.Shipment{ShipmentID: "FSHIP-1", AWBNumber: "FAWB-1"}, nil
}

func (c *stubCourier) Track(ctx context.Context, awb string) (*courier.TrackData, error) {
	if c.tracks == nil {
		return nil, nil
	}
	track, ok := c.tracks[awb]
	if !ok {
		return nil, errors.New("tracking unavailable")
	}
	return track, nil
}

type stubPayments struct {
	statuses map[string]payments.PaymentStatus
}

func (p *stubPayments) Verify(ctx context.Context, paymentID string) (*payments.Verification, error) {
	status, ok := p.statuses[paymentID]
	if !ok {
		status = payments.PaymentFailed
	}
	return &payments.Verification{PaymentID: paymentID, Status: status, Amount: 100, Currency: "INR"}, nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events [][]byte
}

func (p *stubPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

// ---- fixtures ----

func testOrder() *commerce.Order {
	return &commerce.Order{
		ID:        1,
		Name:      "#1001",
		Email:     "a@x.com",
		Phone:     "+91-98765-43210",
		CreatedAt: time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
		Customer:  commerce.Customer{FirstName: "Asha", LastName: "Rao", Email: "a@x.com", Phone: "+91-98765-43210"},
		ShippingTo: &commerce.Address{
			Name: "Asha Rao", Phone: "9876543210",
			Address1: "12 MG Road", City: "Mumbai", Province: "Maharashtra", Zip: "400001",
		},
		LineItems: []commerce.LineItem{
			{ProductID: 1, VariantID: 11, Title: "Shirt", VariantTitle: "M", Quantity: 1, Price: "499.00"},
		},
	}
}

type testEnv struct {
	svc      ILifecycleService
	repo     *memoryRepo
	commerce *stubCommerce
	courier  *stubCourier
	payments *stubPayments
}

func newTestEnv() *testEnv {
	repo := newMemoryRepo()
	sc := &stubCommerce{order: testOrder()}
	co := &stubCourier{}
	pay := &stubPayments{statuses: map[string]payments.PaymentStatus{
		"pay_ok":      payments.PaymentCaptured,
		"pay_auth":    payments.PaymentAuthorized,
		"pay_pending": payments.PaymentPending,
	}}
	svc := NewLifecycleService(
		&memoryFactory{repo: repo},
		sc,
		co,
		pay,
		&stubPublisher{},
		nil,
		nopLogger{},
		config.PolicyConfig{
			ReturnWindowDays: 30,
			FeeWaiverReasons: []string{"defective", "damaged", "wrong_item"},
		},
	)
	return &testEnv{svc: svc, repo: repo, commerce: sc, courier: co, payments: pay}
}

func submitBody(reqType, reason string) *dto.SubmitRequest {
	return &dto.SubmitRequest{
		Type:        reqType,
		OrderNumber: "#1001",
		Email:       "a@x.com",
		Items: []dto.SubmitItemRequest{
			{ProductID: 1, VariantID: 11, Quantity: 1, ExchangeSize: "L"},
		},
		Reason: reason,
	}
}

// ---- tests ----

func TestSubmitFeeWaivedSchedulesPickup(t *testing.T) {
	env := newTestEnv()

	res, err := env.svc.Submit(context.Background(), submitBody("exchange", "defective"))
	require.NoError(t, err)
	require.True(t, res.FeeWaived)
	require.Equal(t, string(entity.StatusScheduled), res.Status)
	require.Equal(t, int32(1), env.courier.reverseCalls)

	rec := env.repo.get(res.RequestID)
	require.NotNil(t, rec)
	require.Equal(t, entity.StatusScheduled, rec.Status)
	require.Equal(t, "SHIP-1", rec.ShipmentID)
	require.Equal(t, "AWB-1", rec.AWBNumber)
	// Items picked up titles and prices from the order.
	require.Equal(t, "Shirt", rec.Items[0].Title)
	require.Equal(t, 499.0, rec.Items[0].Price)
}

func TestSubmitFeeWaivedPickupFailureDegrades(t *testing.T) {
	env := newTestEnv()
	env.courier.failReverse = true

	res, err := env.svc.Submit(context.Background(), submitBody("return", "damaged"))
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusPending), res.Status)
	require.NotEmpty(t, res.Warning)

	rec := env.repo.get(res.RequestID)
	require.Equal(t, entity.StatusPending, rec.Status)
	require.Empty(t, rec.ShipmentID)
}

func TestSubmitWithoutPaymentWaits(t *testing.T) {
	env := newTestEnv()

	res, err := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))
	require.NoError(t, err)
	require.False(t, res.FeeWaived)
	require.Equal(t, string(entity.StatusWaitingPayment), res.Status)
	require.Equal(t, int32(0), env.courier.reverseCalls)
}

func TestSubmitWithUncapturedPaymentWaits(t *testing.T) {
	env := newTestEnv()

	body := submitBody("return", "changed_mind")
	body.PaymentID = "pay_pending"
	res, err := env.svc.Submit(context.Background(), body)
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusWaitingPayment), res.Status)
	require.Equal(t, int32(0), env.courier.reverseCalls)
}

func TestSubmitUnknownOrder(t *testing.T) {
	env := newTestEnv()
	env.commerce.order = nil

	_, err := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSubmitOutsideReturnWindow(t *testing.T) {
	env := newTestEnv()
	env.commerce.order.CreatedAt = time.Now().Add(-60 * 24 * time.Hour).Format(time.RFC3339)

	_, err := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	require.ErrorIs(t, err, ErrOutsideWindow)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	env := newTestEnv()

	sub, err := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusWaitingPayment), sub.Status)

	res, err := env.svc.ConfirmPayment(context.Background(), sub.RequestID, &dto.ConfirmPaymentRequest{PaymentID: "pay_ok"})
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusScheduled), res.Status)
	require.Equal(t, int32(1), env.courier.reverseCalls)

	// Second confirmation is a no-op against the finalized record.
	again, err := env.svc.ConfirmPayment(context.Background(), sub.RequestID, &dto.ConfirmPaymentRequest{PaymentID: "pay_ok"})
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusScheduled), again.Status)
	require.Equal(t, int32(1), env.courier.reverseCalls)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, "pay_ok", rec.PaymentID)
	require.Equal(t, 100.0, rec.PaymentAmount)
}

func TestConfirmPaymentConcurrentCallers(t *testing.T) {
	env := newTestEnv()

	sub, err := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.svc.ConfirmPayment(context.Background(), sub.RequestID, &dto.ConfirmPaymentRequest{PaymentID: "pay_ok"})
		}()
	}
	wg.Wait()

	// The status claim has exactly one winner, so the courier sees one call.
	require.Equal(t, int32(1), env.courier.reverseCalls)
	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusScheduled, rec.Status)
}

func TestConfirmPaymentNotCaptured(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))
	_, err := env.svc.ConfirmPayment(context.Background(), sub.RequestID, &dto.ConfirmPaymentRequest{PaymentID: "pay_pending"})
	require.ErrorIs(t, err, ErrPaymentNotCaptured)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusWaitingPayment, rec.Status)
}

func TestConfirmPaymentUnknownRequest(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.ConfirmPayment(context.Background(), "NOPE", &dto.ConfirmPaymentRequest{PaymentID: "pay_ok"})
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestPaymentWebhookFinalizes(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))

	event := &dto.PaymentWebhookEvent{Event: "payment.captured"}
	event.Payload.Payment.Entity = dto.PaymentEntity{
		ID: "pay_hook", Amount: 100, Currency: "INR", Status: "captured",
		Notes: map[string]string{"request_id": sub.RequestID},
	}
	require.NoError(t, env.svc.HandlePaymentWebhook(context.Background(), event))

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusScheduled, rec.Status)
	require.Equal(t, "pay_hook", rec.PaymentID)
	require.Equal(t, int32(1), env.courier.reverseCalls)

	// Replay of the same webhook is a no-op.
	require.NoError(t, env.svc.HandlePaymentWebhook(context.Background(), event))
	require.Equal(t, int32(1), env.courier.reverseCalls)
}

func TestPaymentWebhookIgnoresUnrelatedEvents(t *testing.T) {
	env := newTestEnv()
	event := &dto.PaymentWebhookEvent{Event: "payment.failed"}
	require.NoError(t, env.svc.HandlePaymentWebhook(context.Background(), event))
}

func TestApproveExchangeIdempotent(t *testing.T) {
	env := newTestEnv()
	env.commerce.variants = []commerce.Variant{
		{ID: 11, Title: "M", Option1: "M"},
		{ID: 12, Title: "L", Option1: "L"},
	}

	sub, err := env.svc.Submit(context.Background(), submitBody("exchange", "defective"))
	require.NoError(t, err)

	res, err := env.svc.Approve(context.Background(), sub.RequestID, "quality check passed")
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusApproved), res.Status)
	require.Empty(t, res.Warnings)
	require.Equal(t, int32(1), env.commerce.createOrderCalls)
	require.Equal(t, int32(1), env.courier.forwardCalls)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusApproved, rec.Status)
	require.NotNil(t, rec.ApprovedAt)
	require.Equal(t, "9001", rec.ReplacementOrderID)
	require.Equal(t, "FSHIP-1", rec.ForwardShipmentID)
	require.Equal(t, "FAWB-1", rec.ForwardAWBNumber)
	require.Contains(t, rec.AdminNotes, "quality check passed")

	// Second approval makes no additional external calls.
	again, err := env.svc.Approve(context.Background(), sub.RequestID, "again")
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusApproved), again.Status)
	require.Equal(t, int32(1), env.commerce.createOrderCalls)
	require.Equal(t, int32(1), env.courier.forwardCalls)
}

func TestApproveExchangeReplacementFailureIsWarning(t *testing.T) {
	env := newTestEnv()
	env.commerce.failCreateOrder = true

	sub, _ := env.svc.Submit(context.Background(), submitBody("exchange", "defective"))
	res, err := env.svc.Approve(context.Background(), sub.RequestID, "")
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusApproved), res.Status)
	require.NotEmpty(t, res.Warnings)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusApproved, rec.Status)
	require.Contains(t, rec.AdminNotes, "[warning]")
}

func TestApproveReturnSkipsExchangeSideEffects(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	res, err := env.svc.Approve(context.Background(), sub.RequestID, "")
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusApproved), res.Status)
	require.Equal(t, int32(0), env.commerce.createOrderCalls)
	require.Equal(t, int32(0), env.courier.forwardCalls)
}

func TestRejectStampsTimestamp(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))
	res, err := env.svc.Reject(context.Background(), sub.RequestID, "outside policy")
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusRejected), res.Status)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusRejected, rec.Status)
	require.NotNil(t, rec.RejectedAt)
	require.Contains(t, rec.AdminNotes, "outside policy")
}

func TestMarkDeliveredOverride(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	res, err := env.svc.MarkDelivered(context.Background(), sub.RequestID)
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusDelivered), res.Status)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusDelivered, rec.Status)
	require.NotNil(t, rec.DeliveredAt)
}

func TestAdvanceFromTrackingMovesForwardOnly(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusScheduled, rec.Status)

	advanced, err := env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "AWB-1", CurrentStatus: "Shipment Picked Up by Courier"}, false)
	require.NoError(t, err)
	require.True(t, advanced)

	rec = env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusPickedUp, rec.Status)
	require.NotNil(t, rec.PickedUpAt)

	// A stale carrier snapshot never moves the status backward.
	advanced, err = env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "AWB-1", CurrentStatus: "AWB Assigned"}, false)
	require.NoError(t, err)
	require.False(t, advanced)
	require.Equal(t, entity.StatusPickedUp, env.repo.get(sub.RequestID).Status)

	// Unknown text is a no-op, not an error.
	advanced, err = env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "AWB-1", CurrentStatus: "Some new carrier phrasing"}, false)
	require.NoError(t, err)
	require.False(t, advanced)
}

func TestAdvanceFromTrackingReassignedAWB(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "defective"))

	advanced, err := env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "AWB-2", CurrentStatus: "Manifest Generated"}, false)
	require.NoError(t, err)
	require.True(t, advanced)
	require.Equal(t, "AWB-2", env.repo.get(sub.RequestID).AWBNumber)
}

func TestAdvanceFromTrackingRTORejects(t *testing.T) {
	env := newTestEnv()

	sub, _ := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	advanced, err := env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "AWB-1", CurrentStatus: "RTO Initiated"}, false)
	require.NoError(t, err)
	require.True(t, advanced)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusRejected, rec.Status)
	require.NotNil(t, rec.RejectedAt)

	// Terminal state: later tracking signals are ignored.
	advanced, err = env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "AWB-1", CurrentStatus: "In Transit"}, false)
	require.NoError(t, err)
	require.False(t, advanced)
}

func TestAdvanceForwardTrackIndependent(t *testing.T) {
	env := newTestEnv()
	env.commerce.variants = []commerce.Variant{{ID: 12, Title: "L"}}

	sub, _ := env.svc.Submit(context.Background(), submitBody("exchange", "defective"))
	_, err := env.svc.Approve(context.Background(), sub.RequestID, "")
	require.NoError(t, err)

	advanced, err := env.svc.AdvanceFromTracking(context.Background(), sub.RequestID,
		&courier.TrackData{AWBNumber: "FAWB-1", CurrentStatus: "In Transit"}, true)
	require.NoError(t, err)
	require.True(t, advanced)

	rec := env.repo.get(sub.RequestID)
	require.Equal(t, entity.StatusInTransit, rec.ForwardStatus)
	// The primary state is untouched by forward-track movement.
	require.Equal(t, entity.StatusApproved, rec.Status)
}

func TestListFiltersAndCounts(t *testing.T) {
	env := newTestEnv()

	a, _ := env.svc.Submit(context.Background(), submitBody("return", "defective"))
	b, _ := env.svc.Submit(context.Background(), submitBody("return", "changed_mind"))

	res, err := env.svc.List(context.Background(), &dto.AdminListQuery{Status: string(entity.StatusWaitingPayment)})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	require.Len(t, res.Requests, 1)
	require.Equal(t, b.RequestID, res.Requests[0].RequestID)
	require.Equal(t, int64(1), res.Counts[string(entity.StatusScheduled)])
	require.Equal(t, int64(1), res.Counts[string(entity.StatusWaitingPayment)])

	deleted, err := env.svc.BulkDelete(context.Background(), []string{a.RequestID, b.RequestID, "missing"})
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"
	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/logger"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/contract"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/specification"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/unitofwork"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/address"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/commerce"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/courier"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/events"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/payments"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrRequestNotFound    = errors.New("request not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOutsideWindow      = errors.New("order is outside the return window")
	ErrPaymentNotCaptured = errors.New("payment is not captured")
)

const trackingCacheTTL = time.Minute

// ILifecycleService is the single authority for status transitions. Every
// mutation goes through a conditional update keyed on the state observed at
// read time, so two callers racing on the same request resolve to one winner
// and one no-op.
type ILifecycleService interface {
	Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmitResponse, error)
	ConfirmPayment(ctx context.Context, requestID string, req *dto.ConfirmPaymentRequest) (*dto.SubmitResponse, error)
	HandlePaymentWebhook(ctx context.Context, event *dto.PaymentWebhookEvent) error
	AdvanceFromTracking(ctx context.Context, requestID string, track *courier.TrackData, forward bool) (bool, error)
	RetryPickup(ctx context.Context, requestID string) (bool, error)

	Get(ctx context.Context, requestID string) (*dto.RequestDetailResponse, error)
	List(ctx context.Context, q *dto.AdminListQuery) (*dto.AdminListResponse, error)

	Approve(ctx context.Context, requestID, notes string) (*dto.AdminActionResponse, error)
	Reject(ctx context.Context, requestID, notes string) (*dto.AdminActionResponse, error)
	MarkDelivered(ctx context.Context, requestID string) (*dto.AdminActionResponse, error)
	BulkDelete(ctx context.Context, requestIDs []string) (int64, error)
}

type lifecycleService struct {
	uowFactory     unitofwork.RepositoryFactory
	commerceClient commerce.ICommerceClient
	courierClient  courier.ICourierClient
	paymentClient  payments.IPaymentClient
	publisher      IPublisherService
	redisClient    *redis.Client
	sysLogger      logger.ILogger
	policy         config.PolicyConfig
}

func NewLifecycleService(
	uowFactory unitofwork.RepositoryFactory,
	commerceClient commerce.ICommerceClient,
	courierClient courier.ICourierClient,
	paymentClient payments.IPaymentClient,
	publisher IPublisherService,
	redisClient *redis.Client,
	sysLogger logger.ILogger,
	policy config.PolicyConfig,
) ILifecycleService {
	return &lifecycleService{
		uowFactory:     uowFactory,
		commerceClient: commerceClient,
		courierClient:  courierClient,
		paymentClient:  paymentClient,
		publisher:      publisher,
		redisClient:    redisClient,
		sysLogger:      sysLogger,
		policy:         policy,
	}
}

func newRequestID(t entity.RequestType) string {
	prefix := "RET"
	if t == entity.RequestTypeExchange {
		prefix = "EXC"
	}
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

func (s *lifecycleService) Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmitResponse, error) {
	contact := req.Email
	if contact == "" {
		contact = req.Phone
	}

	order, err := s.commerceClient.FindOrder(ctx, req.OrderNumber, contact)
	if err != nil {
		s.sysLogger.Error("lifecycle", "Order lookup failed", map[string]interface{}{
			"order_number": req.OrderNumber, "error": err.Error(),
		})
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if s.policy.ReturnWindowDays > 0 {
		if placedAt, perr := time.Parse(time.RFC3339, order.CreatedAt); perr == nil {
			if time.Since(placedAt) > time.Duration(s.policy.ReturnWindowDays)*24*time.Hour {
				return nil, ErrOutsideWindow
			}
		}
	}

	feeWaived := s.isFeeWaived(req.Reason)

	record := &entity.ReturnRequest{
		RequestID:       newRequestID(entity.RequestType(req.Type)),
		Type:            entity.RequestType(req.Type),
		Status:          entity.StatusPending,
		OrderNumber:     req.OrderNumber,
		Email:           firstNonEmpty(req.Email, order.Email, order.Customer.Email),
		CustomerName:    normalizeName(req.CustomerName, order),
		CustomerPhone:   firstNonEmpty(req.Phone, order.Phone, order.Customer.Phone),
		ShippingAddress: formatAddress(order.ShippingTo),
		NewAddress:      req.NewAddress,
		NewCity:         req.NewCity,
		NewPincode:      req.NewPincode,
		Items:           enrichItems(req.Items, order),
		Reason:          req.Reason,
		Comments:        req.Comments,
		Images:          req.Images,
		FeeWaived:       feeWaived,
	}

	if !feeWaived {
		if req.PaymentID == "" {
			record.Status = entity.StatusWaitingPayment
		} else {
			verification, verr := s.paymentClient.Verify(ctx, req.PaymentID)
			if verr != nil {
				return nil, verr
			}
			if !verification.Paid() {
				record.Status = entity.StatusWaitingPayment
			} else {
				record.PaymentID = req.PaymentID
				record.PaymentAmount = verification.Amount
				if req.PaymentAmount > 0 {
					record.PaymentAmount = req.PaymentAmount
				}
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.RequestRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	s.sysLogger.Info("lifecycle", "Request submitted", map[string]interface{}{
		"request_id": record.RequestID, "type": string(record.Type),
		"status": string(record.Status), "fee_waived": feeWaived,
	})
	s.publishTransition(ctx, record, "", record.Status)

	res := &dto.SubmitResponse{
		RequestID: record.RequestID,
		Status:    string(record.Status),
		FeeWaived: feeWaived,
	}

	// No fee outstanding: schedule the reverse pickup right away. A pickup
	// failure leaves the record at pending for the sweeper to retry, the
	// submission itself still succeeds.
	if record.Status == entity.StatusPending {
		scheduled, warning := s.scheduleReversePickup(ctx, record)
		if scheduled {
			res.Status = string(entity.StatusScheduled)
		}
		res.Warning = warning
	}

	return res, nil
}

func (s *lifecycleService) ConfirmPayment(ctx context.Context, requestID string, req *dto.ConfirmPaymentRequest) (*dto.SubmitResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.RequestRepository().FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRequestNotFound
	}

	// Already finalized (by the webhook, a retry, or fee waiver): no-op.
	if record.Status != entity.StatusWaitingPayment {
		return &dto.SubmitResponse{
			RequestID: record.RequestID,
			Status:    string(record.Status),
			FeeWaived: record.FeeWaived,
		}, nil
	}

	verification, err := s.paymentClient.Verify(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if !verification.Paid() {
		return nil, ErrPaymentNotCaptured
	}

	amount := req.Amount
	if amount == 0 {
		amount = verification.Amount
	}

	return s.finalizePayment(ctx, record, req.PaymentID, amount)
}

// finalizePayment claims the waiting_payment -> pending transition with a
// conditional update. Exactly one of the racing callers (client callback vs
// gateway webhook) wins the claim and schedules the pickup; the loser reads
// back whatever the winner wrote.
func (s *lifecycleService) finalizePayment(ctx context.Context, record *entity.ReturnRequest, paymentID string, amount float64) (*dto.SubmitResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RequestRepository()

	won, err := repo.UpdateWhere(ctx, record.RequestID, map[string]interface{}{
		"payment_id":     paymentID,
		"payment_amount": amount,
		"status":         string(entity.StatusPending),
	}, specification.Filter("status", string(entity.StatusWaitingPayment)))
	if err != nil {
		return nil, err
	}
	if !won {
		current, ferr := repo.FindOne(ctx, specification.ByRequestID{RequestID: record.RequestID})
		if ferr != nil || current == nil {
			return nil, ErrRequestNotFound
		}
		return &dto.SubmitResponse{
			RequestID: current.RequestID,
			Status:    string(current.Status),
			FeeWaived: current.FeeWaived,
		}, nil
	}

	record.PaymentID = paymentID
	record.PaymentAmount = amount
	record.Status = entity.StatusPending

	s.sysLogger.Info("lifecycle", "Payment confirmed", map[string]interface{}{
		"request_id": record.RequestID, "payment_id": paymentID, "amount": amount,
	})
	s.publishTransition(ctx, record, entity.StatusWaitingPayment, entity.StatusPending)

	res := &dto.SubmitResponse{
		RequestID: record.RequestID,
		Status:    string(entity.StatusPending),
		FeeWaived: record.FeeWaived,
	}

	scheduled, warning := s.scheduleReversePickup(ctx, record)
	if scheduled {
		res.Status = string(entity.StatusScheduled)
	}
	res.Warning = warning
	return res, nil
}

func (s *lifecycleService) HandlePaymentWebhook(ctx context.Context, event *dto.PaymentWebhookEvent) error {
	if event.Event != "payment.captured" && event.Event != "payment.authorized" {
		return nil
	}

	payment := event.Payload.Payment.Entity
	requestID := payment.Notes["request_id"]
	if requestID == "" {
		s.sysLogger.Warn("lifecycle", "Payment webhook without request_id note", map[string]interface{}{
			"payment_id": payment.ID,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.RequestRepository().FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return err
	}
	if record == nil {
		s.sysLogger.Warn("lifecycle", "Payment webhook for unknown request", map[string]interface{}{
			"request_id": requestID, "payment_id": payment.ID,
		})
		return nil
	}
	if record.Status != entity.StatusWaitingPayment {
		return nil
	}

	// The gateway already confirmed capture; the signed event is the proof.
	_, err = s.finalizePayment(ctx, record, payment.ID, payment.Amount)
	return err
}

// scheduleReversePickup runs the at-most-once pickup side effect. Callers
// only reach it after winning a status claim, so the courier is called once;
// the IS NULL precondition on shipment_id covers the residual race.
func (s *lifecycleService) scheduleReversePickup(ctx context.Context, record *entity.ReturnRequest) (scheduled bool, warning string) {
	if record.ShipmentID != "" {
		return false, ""
	}

	parsed := address.Parse(record.ShippingAddress)
	pickup, err := s.courierClient.CreateReversePickup(ctx, record, courier.Destination{
		Name:    record.CustomerName,
		Phone:   record.CustomerPhone,
		Email:   record.Email,
		Address: parsed.Line,
		City:    parsed.City,
		State:   parsed.State,
		Pincode: parsed.Pincode,
	})
	if err != nil {
		s.sysLogger.Error("lifecycle", "Pickup scheduling failed", map[string]interface{}{
			"request_id": record.RequestID, "error": err.Error(),
		})
		return false, "pickup scheduling failed, will be retried"
	}
	if pickup == nil {
		s.sysLogger.Warn("lifecycle", "Pickup rejected by courier", map[string]interface{}{
			"request_id": record.RequestID,
		})
		return false, "pickup could not be scheduled"
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	won, err := uow.RequestRepository().UpdateWhere(ctx, record.RequestID, map[string]interface{}{
		"shipment_id": pickup.ShipmentID,
		"awb_number":  pickup.AWBNumber,
		"pickup_date": pickup.PickupDate,
		"status":      string(entity.StatusScheduled),
	}, specification.IsNull{Field: "shipment_id"})
	if err != nil {
		s.sysLogger.Error("lifecycle", "Pickup persist failed", map[string]interface{}{
			"request_id": record.RequestID, "error": err.Error(),
		})
		return false, "pickup scheduled but not recorded"
	}
	if !won {
		// Another finalizer already recorded a shipment.
		return true, ""
	}

	record.ShipmentID = pickup.ShipmentID
	record.AWBNumber = pickup.AWBNumber
	record.PickupDate = pickup.PickupDate

	s.publishTransition(ctx, record, entity.StatusPending, entity.StatusScheduled)
	return true, ""
}

// RetryPickup re-attempts the reverse pickup for a pending request whose
// earlier scheduling attempt failed. Called by the sweeper on its interval;
// the shipment_id precondition inside scheduleReversePickup keeps a sweep
// overlapping a payment confirmation harmless.
func (s *lifecycleService) RetryPickup(ctx context.Context, requestID string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.RequestRepository().FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, ErrRequestNotFound
	}
	if record.Status != entity.StatusPending || record.ShipmentID != "" {
		return false, nil
	}

	scheduled, _ := s.scheduleReversePickup(ctx, record)
	return scheduled, nil
}

func (s *lifecycleService) AdvanceFromTracking(ctx context.Context, requestID string, track *courier.TrackData, forward bool) (bool, error) {
	if track == nil {
		return false, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RequestRepository()
	record, err := repo.FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, ErrRequestNotFound
	}

	mapped, ok := courier.ClassifyStatus(track.CurrentStatus)
	if !ok {
		// Unrecognized carrier text: no transition.
		return false, nil
	}

	if forward {
		return s.advanceForward(ctx, repo, record, track, mapped)
	}
	return s.advancePrimary(ctx, repo, record, track, mapped)
}

func (s *lifecycleService) advancePrimary(ctx context.Context, repo contract.RequestRepository, record *entity.ReturnRequest, track *courier.TrackData, mapped entity.RequestStatus) (bool, error) {
	if record.Status.IsTerminal() {
		return false, nil
	}

	current := record.Status
	awbChanged := track.AWBNumber != "" && track.AWBNumber != record.AWBNumber
	updates := map[string]interface{}{}
	now := time.Now()

	if mapped == entity.StatusRejected {
		// RTO / cancelled by the carrier.
		updates["status"] = string(entity.StatusRejected)
		updates["rejected_at"] = now
	} else {
		if awbChanged {
			updates["awb_number"] = track.AWBNumber
		}
		if mapped.ShippingRank() > current.ShippingRank() {
			updates["status"] = string(mapped)
			switch mapped {
			case entity.StatusPickedUp:
				updates["picked_up_at"] = now
			case entity.StatusInTransit:
				updates["in_transit_at"] = now
			case entity.StatusDelivered:
				updates["delivered_at"] = now
			}
		}
	}
	if len(updates) == 0 {
		return false, nil
	}

	won, err := repo.UpdateWhere(ctx, record.RequestID, updates, specification.Filter("status", string(current)))
	if err != nil || !won {
		return false, err
	}

	if newStatus, changed := updates["status"]; changed {
		record.Status = entity.RequestStatus(newStatus.(string))
		s.sysLogger.Info("lifecycle", "Tracking advanced request", map[string]interface{}{
			"request_id": record.RequestID, "from": string(current), "to": newStatus,
			"carrier_status": track.CurrentStatus,
		})
		s.publishTransition(ctx, record, current, record.Status)
	}
	return true, nil
}

func (s *lifecycleService) advanceForward(ctx context.Context, repo contract.RequestRepository, record *entity.ReturnRequest, track *courier.TrackData, mapped entity.RequestStatus) (bool, error) {
	current := record.ForwardStatus
	if current == entity.StatusDelivered {
		return false, nil
	}

	awbChanged := track.AWBNumber != "" && track.AWBNumber != record.ForwardAWBNumber
	updates := map[string]interface{}{}
	if awbChanged {
		updates["forward_awb_number"] = track.AWBNumber
	}
	if mapped.ShippingRank() > current.ShippingRank() {
		updates["forward_status"] = string(mapped)
	}
	if len(updates) == 0 {
		return false, nil
	}

	won, err := repo.UpdateWhere(ctx, record.RequestID, updates, specification.Filter("forward_status", string(current)))
	if err != nil || !won {
		return false, err
	}
	if _, changed := updates["forward_status"]; changed {
		s.sysLogger.Info("lifecycle", "Tracking advanced forward shipment", map[string]interface{}{
			"request_id": record.RequestID, "from": string(current), "to": string(mapped),
		})
	}
	return true, nil
}

func (s *lifecycleService) Approve(ctx context.Context, requestID, notes string) (*dto.AdminActionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RequestRepository()
	record, err := repo.FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRequestNotFound
	}
	if record.Status == entity.StatusApproved {
		return &dto.AdminActionResponse{RequestID: requestID, Status: string(entity.StatusApproved)}, nil
	}

	var warnings []string
	if record.Type == entity.RequestTypeExchange {
		warnings = s.prepareExchange(ctx, record)
	}

	now := time.Now()
	won, err := repo.UpdateWhere(ctx, requestID, map[string]interface{}{
		"status":      string(entity.StatusApproved),
		"approved_at": now,
		"admin_notes": appendNotes(record.AdminNotes, notes, warnings),
	}, specification.NotEqual{Field: "status", Value: string(entity.StatusApproved)})
	if err != nil {
		return nil, err
	}
	if won {
		from := record.Status
		record.Status = entity.StatusApproved
		s.sysLogger.Info("lifecycle", "Request approved", map[string]interface{}{
			"request_id": requestID, "warnings": len(warnings),
		})
		s.publishTransition(ctx, record, from, entity.StatusApproved)
	}

	return &dto.AdminActionResponse{
		RequestID: requestID,
		Status:    string(entity.StatusApproved),
		Warnings:  warnings,
	}, nil
}

// prepareExchange runs the approval side effects for exchanges: a zero-charge
// replacement order on the storefront and a forward shipment to the customer.
// Both are best-effort; failures come back as warnings and never block the
// approval itself.
func (s *lifecycleService) prepareExchange(ctx context.Context, record *entity.ReturnRequest) []string {
	var warnings []string

	contact := record.Email
	if contact == "" {
		contact = record.CustomerPhone
	}
	order, err := s.commerceClient.FindOrder(ctx, record.OrderNumber, contact)
	if err != nil {
		warnings = append(warnings, "original order lookup failed: "+err.Error())
		order = nil
	}

	if record.ReplacementOrderID == "" {
		if order == nil {
			warnings = append(warnings, "replacement order skipped: original order unavailable")
		} else {
			items := s.resolveReplacementItems(ctx, record)
			orderID, cerr := s.commerceClient.CreateReplacementOrder(ctx, order, items, "Replacement for "+record.RequestID)
			if cerr != nil {
				s.sysLogger.Error("lifecycle", "Replacement order failed", map[string]interface{}{
					"request_id": record.RequestID, "error": cerr.Error(),
				})
				warnings = append(warnings, "replacement order creation failed: "+cerr.Error())
			} else {
				uow := s.uowFactory.NewUnitOfWork(ctx)
				if _, werr := uow.RequestRepository().UpdateWhere(ctx, record.RequestID, map[string]interface{}{
					"replacement_order_id": strconv.FormatInt(orderID, 10),
				}, specification.IsNull{Field: "replacement_order_id"}); werr != nil {
					warnings = append(warnings, "replacement order created but not recorded")
				}
				record.ReplacementOrderID = strconv.FormatInt(orderID, 10)
			}
		}
	}

	if record.ForwardShipmentID == "" {
		dest := s.deliveryDestination(record, order)
		shipment, serr := s.courierClient.CreateForwardShipment(ctx, record, dest)
		if serr != nil {
			s.sysLogger.Error("lifecycle", "Forward shipment failed", map[string]interface{}{
				"request_id": record.RequestID, "error": serr.Error(),
			})
			warnings = append(warnings, "forward shipment creation failed: "+serr.Error())
		} else if shipment == nil {
			warnings = append(warnings, "forward shipment rejected by courier")
		} else {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			if _, werr := uow.RequestRepository().UpdateWhere(ctx, record.RequestID, map[string]interface{}{
				"forward_shipment_id": shipment.ShipmentID,
				"forward_awb_number":  shipment.AWBNumber,
				"forward_status":      string(entity.StatusScheduled),
			}, specification.IsNull{Field: "forward_shipment_id"}); werr != nil {
				warnings = append(warnings, "forward shipment created but not recorded")
			}
			record.ForwardShipmentID = shipment.ShipmentID
			record.ForwardAWBNumber = shipment.AWBNumber
		}
	}

	return warnings
}

// resolveReplacementItems resolves each item's requested replacement variant.
// An explicit variant id wins; otherwise the requested size is matched
// against the product's variant catalog; otherwise the original variant is
// re-shipped as-is.
func (s *lifecycleService) resolveReplacementItems(ctx context.Context, record *entity.ReturnRequest) []commerce.ReplacementItem {
	out := make([]commerce.ReplacementItem, 0, len(record.Items))
	for _, item := range record.Items {
		variantID := item.ExchangeVariantID
		if variantID == 0 && item.ExchangeSize != "" {
			variants, err := s.commerceClient.FetchVariants(ctx, item.ProductID)
			if err != nil {
				s.sysLogger.Warn("lifecycle", "Variant fetch failed, keeping original variant", map[string]interface{}{
					"request_id": record.RequestID, "product_id": item.ProductID, "error": err.Error(),
				})
			} else {
				for _, v := range variants {
					if strings.EqualFold(v.Title, item.ExchangeSize) || strings.EqualFold(v.Option1, item.ExchangeSize) {
						variantID = v.ID
						break
					}
				}
			}
		}
		if variantID == 0 {
			variantID = item.VariantID
		}
		out = append(out, commerce.ReplacementItem{VariantID: variantID, Quantity: item.Quantity})
	}
	return out
}

// deliveryDestination picks where the forward shipment goes: an explicit new
// address wins, then the storefront's structured shipping address, then a
// best-effort parse of the free-text address captured at submission.
func (s *lifecycleService) deliveryDestination(record *entity.ReturnRequest, order *commerce.Order) courier.Destination {
	dest := courier.Destination{
		Name:  record.CustomerName,
		Phone: record.CustomerPhone,
		Email: record.Email,
	}

	if addr, city, pincode, explicit := record.DeliveryAddress(); explicit {
		dest.Address = addr
		dest.City = city
		dest.Pincode = pincode
		dest.State = address.Parse(addr).State
		return dest
	}

	if order != nil && order.ShippingTo != nil {
		a := order.ShippingTo
		dest.Address = strings.TrimSpace(a.Address1 + " " + a.Address2)
		dest.City = a.City
		dest.State = a.Province
		dest.Pincode = a.Zip
		return dest
	}

	parsed := address.Parse(record.ShippingAddress)
	dest.Address = parsed.Line
	dest.City = parsed.City
	dest.State = parsed.State
	dest.Pincode = parsed.Pincode
	return dest
}

func (s *lifecycleService) Reject(ctx context.Context, requestID, notes string) (*dto.AdminActionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RequestRepository()
	record, err := repo.FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRequestNotFound
	}
	if record.Status == entity.StatusRejected {
		return &dto.AdminActionResponse{RequestID: requestID, Status: string(entity.StatusRejected)}, nil
	}

	now := time.Now()
	won, err := repo.UpdateWhere(ctx, requestID, map[string]interface{}{
		"status":      string(entity.StatusRejected),
		"rejected_at": now,
		"admin_notes": appendNotes(record.AdminNotes, notes, nil),
	}, specification.NotEqual{Field: "status", Value: string(entity.StatusRejected)})
	if err != nil {
		return nil, err
	}
	if won {
		from := record.Status
		record.Status = entity.StatusRejected
		s.sysLogger.Info("lifecycle", "Request rejected", map[string]interface{}{"request_id": requestID})
		s.publishTransition(ctx, record, from, entity.StatusRejected)
	}

	return &dto.AdminActionResponse{RequestID: requestID, Status: string(entity.StatusRejected)}, nil
}

func (s *lifecycleService) MarkDelivered(ctx context.Context, requestID string) (*dto.AdminActionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RequestRepository()
	record, err := repo.FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRequestNotFound
	}

	now := time.Now()
	won, err := repo.UpdateWhere(ctx, requestID, map[string]interface{}{
		"status":       string(entity.StatusDelivered),
		"delivered_at": now,
	}, specification.NotEqual{Field: "status", Value: string(entity.StatusDelivered)})
	if err != nil {
		return nil, err
	}
	if won {
		from := record.Status
		record.Status = entity.StatusDelivered
		s.sysLogger.Info("lifecycle", "Request force-marked delivered", map[string]interface{}{"request_id": requestID})
		s.publishTransition(ctx, record, from, entity.StatusDelivered)
	}

	return &dto.AdminActionResponse{RequestID: requestID, Status: string(entity.StatusDelivered)}, nil
}

func (s *lifecycleService) Get(ctx context.Context, requestID string) (*dto.RequestDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.RequestRepository().FindOne(ctx, specification.ByRequestID{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRequestNotFound
	}

	detail := toDetail(record)
	if record.AWBNumber != "" {
		detail.Tracking = s.trackingSnapshot(ctx, record.AWBNumber)
	}
	return detail, nil
}

// trackingSnapshot fetches a live tracking view, served from a short redis
// cache so the admin console refreshing a page does not hammer the courier.
// Any failure yields a nil snapshot, never an error.
func (s *lifecycleService) trackingSnapshot(ctx context.Context, awb string) *dto.TrackingSnapshot {
	cacheKey := "tracking:" + awb

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var snap dto.TrackingSnapshot
			if json.Unmarshal([]byte(cached), &snap) == nil {
				return &snap
			}
		}
	}

	track, err := s.courierClient.Track(ctx, awb)
	if err != nil {
		s.sysLogger.Warn("lifecycle", "Live tracking fetch failed", map[string]interface{}{
			"awb": awb, "error": err.Error(),
		})
		return nil
	}
	if track == nil {
		return nil
	}

	snap := &dto.TrackingSnapshot{
		AWBNumber:     track.AWBNumber,
		CurrentStatus: track.CurrentStatus,
		Origin:        track.Origin,
		Destination:   track.Destination,
		ETA:           track.ETA,
	}
	for _, act := range track.Activities {
		snap.Activities = append(snap.Activities, dto.TrackingActivity{
			Date:     act.Date,
			Status:   act.Status,
			Location: act.Location,
		})
	}

	if s.redisClient != nil {
		if raw, merr := json.Marshal(snap); merr == nil {
			s.redisClient.Set(ctx, cacheKey, raw, trackingCacheTTL)
		}
	}
	return snap
}

func (s *lifecycleService) List(ctx context.Context, q *dto.AdminListQuery) (*dto.AdminListResponse, error) {
	var specs []specification.Specification
	if q.Status != "" {
		specs = append(specs, specification.ByStatus{Status: entity.RequestStatus(q.Status)})
	}
	if q.Type != "" {
		specs = append(specs, specification.ByType{Type: entity.RequestType(q.Type)})
	}
	if q.Date != "" {
		specs = append(specs, specification.CreatedOn{Date: q.Date})
	}
	if q.Search != "" {
		specs = append(specs, specification.Search{Term: q.Search})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RequestRepository()

	total, err := repo.Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	pageSpecs := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: q.Offset},
	)
	records, err := repo.FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, err
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.AdminListResponse{
		Requests: make([]*dto.RequestDetailResponse, 0, len(records)),
		Counts:   counts,
		Total:    total,
	}
	for _, record := range records {
		res.Requests = append(res.Requests, toDetail(record))
	}
	return res, nil
}

func (s *lifecycleService) BulkDelete(ctx context.Context, requestIDs []string) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.RequestRepository().DeleteMany(ctx, requestIDs)
	if err != nil {
		return 0, err
	}
	s.sysLogger.Info("lifecycle", "Bulk delete", map[string]interface{}{
		"requested": len(requestIDs), "deleted": deleted,
	})
	return deleted, nil
}

func (s *lifecycleService) isFeeWaived(reason string) bool {
	for _, r := range s.policy.FeeWaiverReasons {
		if strings.EqualFold(r, reason) {
			return true
		}
	}
	return false
}

func (s *lifecycleService) publishTransition(ctx context.Context, record *entity.ReturnRequest, from, to entity.RequestStatus) {
	if s.publisher == nil {
		return
	}
	evt := events.StatusChanged(record.RequestID, record.Email, record.OrderNumber, string(from), string(to))
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.sysLogger.Warn("lifecycle", "Event publish failed", map[string]interface{}{
			"request_id": record.RequestID, "error": err.Error(),
		})
	}
}

func toDetail(record *entity.ReturnRequest) *dto.RequestDetailResponse {
	items := make([]dto.RequestItemDTO, 0, len(record.Items))
	for _, it := range record.Items {
		items = append(items, dto.RequestItemDTO{
			ProductID:         it.ProductID,
			VariantID:         it.VariantID,
			Title:             it.Title,
			VariantTitle:      it.VariantTitle,
			Quantity:          it.Quantity,
			Price:             it.Price,
			ExchangeVariantID: it.ExchangeVariantID,
			ExchangeSize:      it.ExchangeSize,
		})
	}
	return &dto.RequestDetailResponse{
		RequestID:       record.RequestID,
		Type:            string(record.Type),
		Status:          string(record.Status),
		OrderNumber:     record.OrderNumber,
		Email:           record.Email,
		CustomerName:    record.CustomerName,
		CustomerPhone:   record.CustomerPhone,
		ShippingAddress: record.ShippingAddress,
		Items:           items,
		Reason:          record.Reason,
		Comments:        record.Comments,
		Images:          record.Images,
		FeeWaived:       record.FeeWaived,
		PaymentID:       record.PaymentID,
		AWBNumber:       record.AWBNumber,
		PickupDate:      record.PickupDate,
		ForwardAWB:      record.ForwardAWBNumber,
		ForwardStatus:   string(record.ForwardStatus),
		AdminNotes:      record.AdminNotes,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func appendNotes(existing, notes string, warnings []string) string {
	parts := make([]string, 0, 2+len(warnings))
	if existing != "" {
		parts = append(parts, existing)
	}
	if notes != "" {
		parts = append(parts, notes)
	}
	for _, w := range warnings {
		parts = append(parts, "[warning] "+w)
	}
	return strings.Join(parts, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalizeName(supplied string, order *commerce.Order) string {
	trimmed := strings.TrimSpace(supplied)
	if trimmed != "" && !strings.EqualFold(trimmed, "guest") && !strings.EqualFold(trimmed, "customer") {
		return trimmed
	}
	fromOrder := strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)
	if fromOrder != "" {
		return fromOrder
	}
	return trimmed
}

func formatAddress(a *commerce.Address) string {
	if a == nil {
		return ""
	}
	parts := []string{}
	for _, p := range []string{a.Address1, a.Address2, a.City, a.Province, a.Zip} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

func enrichItems(in []dto.SubmitItemRequest, order *commerce.Order) []entity.RequestItem {
	byVariant := make(map[int64]commerce.LineItem, len(order.LineItems))
	byProduct := make(map[int64]commerce.LineItem, len(order.LineItems))
	for _, li := range order.LineItems {
		byVariant[li.VariantID] = li
		if _, seen := byProduct[li.ProductID]; !seen {
			byProduct[li.ProductID] = li
		}
	}

	items := make([]entity.RequestItem, 0, len(in))
	for _, req := range in {
		item := entity.RequestItem{
			ProductID:         req.ProductID,
			VariantID:         req.VariantID,
			Quantity:          req.Quantity,
			Price:             req.Price,
			ExchangeVariantID: req.ExchangeVariantID,
			ExchangeSize:      req.ExchangeSize,
		}
		line, found := byVariant[req.VariantID]
		if !found {
			line, found = byProduct[req.ProductID]
		}
		if found {
			item.Title = line.Title
			item.VariantTitle = line.VariantTitle
			if item.Price == 0 {
				if price, err := strconv.ParseFloat(line.Price, 64); err == nil {
					item.Price = price
				}
			}
		}
		items = append(items, item)
	}
	return items
}

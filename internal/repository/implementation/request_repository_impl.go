package implementation

import (
	"context"
	"encoding/json"

	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
	"github.com/OffCmfrt/exchange-return-tracking/internal/model"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/contract"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/specification"

	"gorm.io/gorm"
)

type requestRepositoryImpl struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) contract.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

func (r *requestRepositoryImpl) Create(ctx context.Context, req *entity.ReturnRequest) error {
	m, err := r.mapToModel(req)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *requestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReturnRequest, error) {
	var m model.ReturnRequest
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&m)
}

func (r *requestRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReturnRequest, error) {
	var models []*model.ReturnRequest
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	var requests []*entity.ReturnRequest
	for _, m := range models {
		req, err := r.mapToEntity(m)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func (r *requestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.ReturnRequest{})

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *requestRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.ReturnRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}

// UpdateWhere is the at-most-once primitive: the WHERE clause carries the
// precondition, so two racing callers resolve at the database row lock and
// exactly one observes RowsAffected > 0.
func (r *requestRepositoryImpl) UpdateWhere(ctx context.Context, requestID string, updates map[string]interface{}, preconds ...specification.Specification) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.ReturnRequest{}).
		Where("request_id = ?", requestID)

	for _, spec := range preconds {
		query = spec.Apply(query)
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *requestRepositoryImpl) DeleteMany(ctx context.Context, requestIDs []string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("request_id IN ?", requestIDs).
		Delete(&model.ReturnRequest{})
	return res.RowsAffected, res.Error
}

func (r *requestRepositoryImpl) mapToModel(req *entity.ReturnRequest) (*model.ReturnRequest, error) {
	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, err
	}
	images, err := json.Marshal(req.Images)
	if err != nil {
		return nil, err
	}

	return &model.ReturnRequest{
		RequestID:          req.RequestID,
		Type:               string(req.Type),
		Status:             string(req.Status),
		OrderNumber:        req.OrderNumber,
		Email:              req.Email,
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		ShippingAddress:    req.ShippingAddress,
		NewAddress:         req.NewAddress,
		NewCity:            req.NewCity,
		NewPincode:         req.NewPincode,
		Items:              items,
		Reason:             req.Reason,
		Comments:           req.Comments,
		Images:             images,
		FeeWaived:          req.FeeWaived,
		PaymentID:          req.PaymentID,
		PaymentAmount:      req.PaymentAmount,
		ShipmentID:         req.ShipmentID,
		AWBNumber:          req.AWBNumber,
		PickupDate:         req.PickupDate,
		ReplacementOrderID: req.ReplacementOrderID,
		ForwardShipmentID:  req.ForwardShipmentID,
		ForwardAWBNumber:   req.ForwardAWBNumber,
		ForwardStatus:      string(req.ForwardStatus),
		AdminNotes:         req.AdminNotes,
		PickedUpAt:         req.PickedUpAt,
		InTransitAt:        req.InTransitAt,
		DeliveredAt:        req.DeliveredAt,
		ApprovedAt:         req.ApprovedAt,
		RejectedAt:         req.RejectedAt,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}, nil
}

func (r *requestRepositoryImpl) mapToEntity(m *model.ReturnRequest) (*entity.ReturnRequest, error) {
	var items []entity.RequestItem
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return nil, err
		}
	}
	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, err
		}
	}

	return &entity.ReturnRequest{
		RequestID:          m.RequestID,
		Type:               entity.RequestType(m.Type),
		Status:             entity.RequestStatus(m.Status),
		OrderNumber:        m.OrderNumber,
		Email:              m.Email,
		CustomerName:       m.CustomerName,
		CustomerPhone:      m.CustomerPhone,
		ShippingAddress:    m.ShippingAddress,
		NewAddress:         m.NewAddress,
		NewCity:            m.NewCity,
		NewPincode:         m.NewPincode,
		Items:              items,
		Reason:             m.Reason,
		Comments:           m.Comments,
		Images:             images,
		FeeWaived:          m.FeeWaived,
		PaymentID:          m.PaymentID,
		PaymentAmount:      m.PaymentAmount,
		ShipmentID:         m.ShipmentID,
		AWBNumber:          m.AWBNumber,
		PickupDate:         m.PickupDate,
		ReplacementOrderID: m.ReplacementOrderID,
		ForwardShipmentID:  m.ForwardShipmentID,
		ForwardAWBNumber:   m.ForwardAWBNumber,
		ForwardStatus:      entity.RequestStatus(m.ForwardStatus),
		AdminNotes:         m.AdminNotes,
		PickedUpAt:         m.PickedUpAt,
		InTransitAt:        m.InTransitAt,
		DeliveredAt:        m.DeliveredAt,
		ApprovedAt:         m.ApprovedAt,
		RejectedAt:         m.RejectedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

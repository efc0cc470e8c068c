package specification

import (
	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"

	"gorm.io/gorm"
)

// ByRequestID filters by the public request identifier.
type ByRequestID struct {
	RequestID string
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}

// ByRequestIDs filters by a list of request identifiers (bulk admin delete).
type ByRequestIDs struct {
	RequestIDs []string
}

func (s ByRequestIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id IN ?", s.RequestIDs)
}

// ByStatus filters by lifecycle status.
type ByStatus struct {
	Status entity.RequestStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// ByType filters by request type (return / exchange).
type ByType struct {
	Type entity.RequestType
}

func (s ByType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", string(s.Type))
}

// CreatedOn filters to a single calendar day (YYYY-MM-DD).
type CreatedOn struct {
	Date string
}

func (s CreatedOn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("DATE(created_at) = ?", s.Date)
}

// Search matches the admin console free-text search against the request id,
// order number, customer email and name.
type Search struct {
	Term string
}

func (s Search) Apply(db *gorm.DB) *gorm.DB {
	like := "%" + s.Term + "%"
	return db.Where(
		"request_id ILIKE ? OR order_number ILIKE ? OR email ILIKE ? OR customer_name ILIKE ?",
		like, like, like, like,
	)
}

// AwaitingPickup selects pending requests with no shipment yet scheduled,
// i.e. paid or fee-waived submissions whose courier call failed. The sweeper
// retries these.
type AwaitingPickup struct{}

func (s AwaitingPickup) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("status = ?", string(entity.StatusPending)).
		Where("shipment_id IS NULL OR shipment_id = ''")
}

// NonTerminal selects requests the reconciliation sweeper still cares about:
// not approved/rejected, with at least one tracking identifier assigned.
type NonTerminal struct{}

func (s NonTerminal) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("status NOT IN ?", []string{string(entity.StatusApproved), string(entity.StatusRejected)}).
		Where("(awb_number <> '' AND awb_number IS NOT NULL) OR (forward_awb_number <> '' AND forward_awb_number IS NOT NULL)")
}

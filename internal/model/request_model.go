package model

import (
	"time"

	"gorm.io/datatypes"
)

// ReturnRequest is the persisted row. Items and Images are JSON columns;
// the status column is constrained to the request_status enum created by
// cmd/migrate.
type ReturnRequest struct {
	ID              uint   `gorm:"primaryKey"`
	RequestID       string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Type            string `gorm:"type:varchar(20);not null"`
	Status          string `gorm:"type:request_status;default:'pending';index"`
	OrderNumber     string `gorm:"type:varchar(64);index;not null"`
	Email           string `gorm:"type:varchar(255);index"`
	CustomerName    string `gorm:"type:varchar(255)"`
	CustomerPhone   string `gorm:"type:varchar(32)"`
	ShippingAddress string `gorm:"type:text"`
	NewAddress      string `gorm:"type:text"`
	NewCity         string `gorm:"type:varchar(100)"`
	NewPincode      string `gorm:"type:varchar(16)"`

	Items    datatypes.JSON `gorm:"not null"`
	Reason   string         `gorm:"type:varchar(100);not null"`
	Comments string         `gorm:"type:text"`
	Images   datatypes.JSON

	FeeWaived     bool    `gorm:"default:false"`
	PaymentID     string  `gorm:"type:varchar(128)"`
	PaymentAmount float64 `gorm:"type:decimal(10,2);default:0"`

	ShipmentID string `gorm:"type:varchar(64)"`
	AWBNumber  string `gorm:"type:varchar(64);index"`
	PickupDate string `gorm:"type:varchar(32)"`

	ReplacementOrderID string `gorm:"type:varchar(64)"`
	ForwardShipmentID  string `gorm:"type:varchar(64)"`
	ForwardAWBNumber   string `gorm:"type:varchar(64);index"`
	ForwardStatus      string `gorm:"type:varchar(32)"`

	AdminNotes string `gorm:"type:text"`

	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ReturnRequest) TableName() string {
	return "return_requests"
}

package dto

import "time"

type SubmitItemRequest struct {
	ProductID         int64   `json:"product_id" validate:"required"`
	VariantID         int64   `json:"variant_id"`
	Quantity          int     `json:"quantity" validate:"required,min=1"`
	Price             float64 `json:"price"`
	ExchangeVariantID int64   `json:"exchange_variant_id"`
	ExchangeSize      string  `json:"exchange_size"`
}

type SubmitRequest struct {
	Type          string              `json:"type" validate:"required,oneof=return exchange"`
	OrderNumber   string              `json:"order_number" validate:"required"`
	Email         string              `json:"email" validate:"omitempty,email"`
	Phone         string              `json:"phone"`
	CustomerName  string              `json:"customer_name"`
	Items         []SubmitItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason        string              `json:"reason" validate:"required"`
	Comments      string              `json:"comments"`
	Images        []string            `json:"images"`
	PaymentID     string              `json:"payment_id"`
	PaymentAmount float64             `json:"payment_amount"`
	NewAddress    string              `json:"new_address"`
	NewCity       string              `json:"new_city"`
	NewPincode    string              `json:"new_pincode"`
}

type SubmitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	FeeWaived bool   `json:"fee_waived"`
	// Warning carries a non-fatal side-effect failure (e.g. pickup
	// scheduling) back to the client for display.
	Warning string `json:"warning,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentID string  `json:"payment_id" validate:"required"`
	Amount    float64 `json:"amount"`
}

type RequestDetailResponse struct {
	RequestID       string           `json:"request_id"`
	Type            string           `json:"type"`
	Status          string           `json:"status"`
	OrderNumber     string           `json:"order_number"`
	Email           string           `json:"email"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	ShippingAddress string           `json:"shipping_address"`
	Items           []RequestItemDTO `json:"items"`
	Reason          string           `json:"reason"`
	Comments        string           `json:"comments,omitempty"`
	Images          []string         `json:"images,omitempty"`
	FeeWaived       bool             `json:"fee_waived"`
	PaymentID       string           `json:"payment_id,omitempty"`
	AWBNumber       string           `json:"awb_number,omitempty"`
	PickupDate      string           `json:"pickup_date,omitempty"`
	ForwardAWB      string           `json:"forward_awb,omitempty"`
	ForwardStatus   string           `json:"forward_status,omitempty"`
	AdminNotes      string           `json:"admin_notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// Tracking is a live-merged snapshot fetched from the courier at read
	// time; it is never stored.
	Tracking *TrackingSnapshot `json:"tracking,omitempty"`
}

type RequestItemDTO struct {
	ProductID         int64   `json:"product_id"`
	VariantID         int64   `json:"variant_id"`
	Title             string  `json:"title,omitempty"`
	VariantTitle      string  `json:"variant_title,omitempty"`
	Quantity          int     `json:"quantity"`
	Price             float64 `json:"price"`
	ExchangeVariantID int64   `json:"exchange_variant_id,omitempty"`
	ExchangeSize      string  `json:"exchange_size,omitempty"`
}

type TrackingSnapshot struct {
	AWBNumber     string             `json:"awb_number"`
	CurrentStatus string             `json:"current_status"`
	Origin        string             `json:"origin,omitempty"`
	Destination   string             `json:"destination,omitempty"`
	ETA           string             `json:"eta,omitempty"`
	Activities    []TrackingActivity `json:"activities,omitempty"`
}

type TrackingActivity struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
}

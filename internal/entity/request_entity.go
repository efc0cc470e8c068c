package entity

import (
	"time"
)

// RequestType distinguishes plain returns from exchanges. Exchanges carry a
// parallel forward shipment back to the customer.
type RequestType string

const (
	RequestTypeReturn   RequestType = "return"
	RequestTypeExchange RequestType = "exchange"
)

// RequestStatus is the primary lifecycle enum. It only moves forward through
// the shipping track (waiting_payment -> pending -> scheduled -> picked_up ->
// in_transit -> delivered); approved/rejected are admin diversions.
type RequestStatus string

const (
	StatusWaitingPayment RequestStatus = "waiting_payment"
	StatusPending        RequestStatus = "pending"
	StatusScheduled      RequestStatus = "scheduled"
	StatusPickedUp       RequestStatus = "picked_up"
	StatusInTransit      RequestStatus = "in_transit"
	StatusDelivered      RequestStatus = "delivered"
	StatusApproved       RequestStatus = "approved"
	StatusRejected       RequestStatus = "rejected"
)

// shippingRank orders the automated shipping track. Admin states and unknown
// values rank as -1 so tracking updates never touch them.
var shippingRank = map[RequestStatus]int{
	StatusWaitingPayment: 0,
	StatusPending:        1,
	StatusScheduled:      2,
	StatusPickedUp:       3,
	StatusInTransit:      4,
	StatusDelivered:      5,
}

// ShippingRank returns the position of s on the shipping track, or -1 when s
// is not part of it.
func (s RequestStatus) ShippingRank() int {
	if r, ok := shippingRank[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether the primary lifecycle is finished. Terminal
// requests are skipped by the reconciliation sweeper.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RequestItem is one order line the customer wants back. ExchangeVariantID /
// ExchangeSize carry the requested replacement for exchange requests.
type RequestItem struct {
	ProductID         int64   `json:"product_id"`
	VariantID         int64   `json:"variant_id"`
	Title             string  `json:"title"`
	VariantTitle      string  `json:"variant_title"`
	Quantity          int     `json:"quantity"`
	Price             float64 `json:"price"`
	ExchangeVariantID int64   `json:"exchange_variant_id,omitempty"`
	ExchangeSize      string  `json:"exchange_size,omitempty"`
}

// ReturnRequest is the central record: one row per customer-submitted return
// or exchange, keyed by the immutable RequestID.
type ReturnRequest struct {
	RequestID       string
	Type            RequestType
	Status          RequestStatus
	OrderNumber     string
	Email           string
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
	NewAddress      string
	NewCity         string
	NewPincode      string

	Items    []RequestItem
	Reason   string
	Comments string
	Images   []string

	FeeWaived     bool
	PaymentID     string
	PaymentAmount float64

	// Reverse (customer -> warehouse) shipment sub-state.
	ShipmentID string
	AWBNumber  string
	PickupDate string

	// Forward (warehouse -> customer) shipment sub-state, exchange only.
	ReplacementOrderID string
	ForwardShipmentID  string
	ForwardAWBNumber   string
	ForwardStatus      RequestStatus

	AdminNotes string

	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeliveryAddress resolves the forward-shipment target in preference order:
// explicit new address, else the free-text shipping address captured at
// submission (parsed by the caller when structure is needed).
func (r *ReturnRequest) DeliveryAddress() (addr, city, pincode string, explicit bool) {
	if r.NewAddress != "" {
		return r.NewAddress, r.NewCity, r.NewPincode, true
	}
	return r.ShippingAddress, "", "", false
}

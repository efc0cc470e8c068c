package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// PaymentStatus is the canonical verification result. A payment counts as
// settled only when captured or authorized.
type PaymentStatus string

const (
	PaymentCaptured   PaymentStatus = "captured"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentPending    PaymentStatus = "pending"
	PaymentFailed     PaymentStatus = "failed"
)

type Verification struct {
	PaymentID string
	Status    PaymentStatus
	Amount    float64
	Currency  string
}

// Paid reports whether the gateway considers the money secured.
func (v *Verification) Paid() bool {
	return v.Status == PaymentCaptured || v.Status == PaymentAuthorized
}

// IPaymentClient verifies payments against the gateway's core API.
type IPaymentClient interface {
	Verify(ctx context.Context, paymentID string) (*Verification, error)
}

type paymentClient struct {
	core coreapi.Client
}

func NewPaymentClient(cfg config.PaymentConfig) IPaymentClient {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	var core coreapi.Client
	core.New(cfg.ServerKey, env)

	return &paymentClient{core: core}
}

func (c *paymentClient) Verify(ctx context.Context, paymentID string) (*Verification, error) {
	res, err := c.core.CheckTransaction(paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment verification failed: %v", err.GetMessage())
	}
	if res == nil {
		return nil, fmt.Errorf("payment verification returned no result")
	}

	amount, _ := strconv.ParseFloat(res.GrossAmount, 64)
	return &Verification{
		PaymentID: paymentID,
		Status:    mapGatewayStatus(res.TransactionStatus),
		Amount:    amount,
		Currency:  res.Currency,
	}, nil
}

func mapGatewayStatus(s string) PaymentStatus {
	switch s {
	case "capture", "settlement":
		return PaymentCaptured
	case "authorize":
		return PaymentAuthorized
	case "pending":
		return PaymentPending
	default:
		return PaymentFailed
	}
}

package dto

// PaymentWebhookEvent is the gateway's webhook payload. The raw body is
// HMAC-verified before this struct is trusted; the request id travels in
// the payment's notes.
type PaymentWebhookEvent struct {
	Event   string              `json:"event"`
	Payload PaymentEventPayload `json:"payload"`
}

type PaymentEventPayload struct {
	Payment PaymentEventEntity `json:"payment"`
}

type PaymentEventEntity struct {
	Entity PaymentEntity `json:"entity"`
}

type PaymentEntity struct {
	ID       string            `json:"id"`
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

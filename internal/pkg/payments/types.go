package payments

// Webhook event types sent by the payment provider.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// PaymentEvent is the normalized shape of a provider webhook notification.
type PaymentEvent struct {
	Type          string
	PaymentID     string
	CustomerEmail string
	TotalAmount   int64
	ProductIDs    []string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider       string
	PaymentID      string
	EventType      string
	PayloadJSON    string
	SignatureValid bool
}

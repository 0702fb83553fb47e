package payments

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedPayload is returned when the webhook body cannot be decoded.
var ErrMalformedPayload = errors.New("payments: malformed webhook payload")

// dodoWebhookPayload mirrors the provider's wire format:
// { type, data: { customer: { email }, total_amount, payment_id,
//   product_cart: [ { product_id } ] } }
type dodoWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Customer struct {
			Email string `json:"email"`
		} `json:"customer"`
		TotalAmount int64  `json:"total_amount"`
		PaymentID   string `json:"payment_id"`
		ProductCart []struct {
			ProductID string `json:"product_id"`
		} `json:"product_cart"`
	} `json:"data"`
}

// ParseDodoWebhookEvent decodes a raw webhook body into a PaymentEvent.
func ParseDodoWebhookEvent(raw []byte) (*PaymentEvent, error) {
	var payload dodoWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMalformedPayload
	}
	if strings.TrimSpace(payload.Type) == "" {
		return nil, ErrMalformedPayload
	}

	event := &PaymentEvent{
		Type:          strings.TrimSpace(payload.Type),
		PaymentID:     strings.TrimSpace(payload.Data.PaymentID),
		CustomerEmail: strings.TrimSpace(payload.Data.Customer.Email),
		TotalAmount:   payload.Data.TotalAmount,
	}
	for _, item := range payload.Data.ProductCart {
		if id := strings.TrimSpace(item.ProductID); id != "" {
			event.ProductIDs = append(event.ProductIDs, id)
		}
	}
	return event, nil
}

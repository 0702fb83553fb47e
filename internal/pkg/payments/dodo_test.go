package payments

import (
	"errors"
	"testing"
)

func TestParseDodoWebhookEvent(t *testing.T) {
	raw := []byte(`{
		"type": "payment.succeeded",
		"data": {
			"customer": { "email": "a@x.com" },
			"total_amount": 1000,
			"payment_id": "pay_123",
			"product_cart": [
				{ "product_id": "pdt_QcERrcHmG3kzIBR0Su4Sc" },
				{ "product_id": "" }
			]
		}
	}`)

	ev, err := ParseDodoWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Type != EventPaymentSucceeded {
		t.Fatalf("unexpected type %q", ev.Type)
	}
	if ev.PaymentID != "pay_123" || ev.CustomerEmail != "a@x.com" || ev.TotalAmount != 1000 {
		t.Fatalf("unexpected fields: %+v", ev)
	}
	if len(ev.ProductIDs) != 1 || ev.ProductIDs[0] != "pdt_QcERrcHmG3kzIBR0Su4Sc" {
		t.Fatalf("expected blank cart entries to be dropped, got %v", ev.ProductIDs)
	}
}

func TestParseDodoWebhookEventMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"data":{}}`} {
		if _, err := ParseDodoWebhookEvent([]byte(raw)); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("ParseDodoWebhookEvent(%q) = %v, want ErrMalformedPayload", raw, err)
		}
	}
}

func TestParseDodoWebhookEventFailedType(t *testing.T) {
	raw := []byte(`{"type":"payment.failed","data":{"customer":{"email":"a@x.com"},"payment_id":"pay_9"}}`)
	ev, err := ParseDodoWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Type != EventPaymentFailed || ev.PaymentID != "pay_9" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.ProductIDs) != 0 {
		t.Fatalf("expected no products, got %v", ev.ProductIDs)
	}
}

package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"payment.succeeded"}`)
	secret := "top-secret"
	valid := signPayload(payload, secret)

	if !VerifyWebhookSignature(payload, valid, secret) {
		t.Fatalf("expected signature to validate")
	}
	if !VerifyWebhookSignature(payload, strings.ToUpper(valid), secret) {
		t.Fatalf("expected uppercase hex signature to validate")
	}
	if VerifyWebhookSignature(payload, valid, "other-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifyWebhookSignature([]byte(`{"type":"tampered"}`), valid, secret) {
		t.Fatalf("expected tampered payload to fail")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex!", secret) {
		t.Fatalf("expected undecodable signature to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, valid, "") {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestAcceptDeliveryWithoutConfiguredSecret(t *testing.T) {
	payload := []byte(`{"type":"payment.succeeded"}`)
	secret := "top-secret"
	valid := signPayload(payload, secret)

	if !AcceptDelivery(payload, "", "") {
		t.Fatalf("expected unsigned delivery to pass with no configured secret")
	}
	if !AcceptDelivery(payload, "deadbeef", " ") {
		t.Fatalf("expected blank secret to disable verification")
	}
	if !AcceptDelivery(payload, valid, secret) {
		t.Fatalf("expected valid signature to pass with configured secret")
	}
	if AcceptDelivery(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail with configured secret")
	}
	if AcceptDelivery(payload, "", secret) {
		t.Fatalf("expected missing signature to fail with configured secret")
	}
}

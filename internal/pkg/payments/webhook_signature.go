package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// AcceptDelivery decides whether a webhook delivery passes the signature
// check. Verification only runs when a webhook secret is configured; with
// no secret every delivery is accepted.
func AcceptDelivery(payload []byte, signatureHeader, webhookSecret string) bool {
	if strings.TrimSpace(webhookSecret) == "" {
		return true
	}
	return VerifyWebhookSignature(payload, signatureHeader, webhookSecret)
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 signature the provider
// sends in the dodo-signature header against the raw request body.
// Comparison runs through hmac.Equal so it is constant time.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

package models

import "time"

// PaymentWebhookEvent stores provider webhook payloads with deduplication
// metadata. The unique (provider, payment_id) index is what makes webhook
// delivery idempotent: a retried notification never credits twice.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_payment_webhook_events_payment,unique,priority:1;index" json:"provider"`
	PaymentID       string     `gorm:"type:varchar(191);not null;default:'';index:ux_payment_webhook_events_payment,unique,priority:2" json:"payment_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	CreditedAmount  uint       `gorm:"not null;default:0" json:"credited_amount"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Completed reports whether a delivery of this payment already finished
// processing without an error. Only completed events consume the payment
// id; a retry of an incomplete delivery runs the event again.
func (e *PaymentWebhookEvent) Completed() bool {
	return e.ProcessedAt != nil && e.ProcessingError == ""
}

package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pixeldodo/pixeldodo/app/models"
)

// Outcome statuses of one webhook notification. A notification ends up
// credited or rejected; everything the provider should not retry maps to
// an acknowledged status.
const (
	StatusCredited = "credited"
	StatusIgnored  = "ignored"
	StatusRejected = "rejected"
)

// Rejection reasons carried in Outcome.Reason.
const (
	ReasonUnknownCustomer = "unknown_customer"
	ReasonUnknownProduct  = "unknown_product"
	ReasonEmptyCart       = "empty_cart"
)

// Outcome reports how a parsed payment event was applied.
type Outcome struct {
	Status          string
	Reason          string
	CreditedAccount uint
	CreditedAmount  uint
}

// Service applies payment webhook events to account balances.
type Service struct {
	repo Repository
}

// NewService creates a payments service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists webhook payloads idempotently. The returned
// bool reports whether the caller should process the event: false only
// when a previous delivery of the same payment completed successfully, in
// which case the caller acknowledges without reprocessing. A retry of a
// delivery that ended in an error (bad signature, malformed payload, a
// crash before crediting) runs again. Events without a payment id are
// deduplicated by a payload hash so a retried malformed delivery does not
// pile up rows either.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	paymentID := strings.TrimSpace(in.PaymentID)
	if paymentID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		paymentID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:       provider,
		PaymentID:      paymentID,
		EventType:      strings.TrimSpace(in.EventType),
		PayloadJSON:    in.PayloadJSON,
		SignatureValid: in.SignatureValid,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(event)
	if err != nil {
		return false, nil, err
	}
	return created || !stored.Completed(), stored, nil
}

// MarkWebhookProcessed marks an event as processed and stores the credited
// amount plus an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, creditedAmount uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, creditedAmount, errMsg)
}

// ProcessEvent runs the notification state machine after signature and
// dedup handling: account_resolved → amount_resolved → credited. All
// rejections are decided before any mutation; the single mutating step is
// the atomic credit increment.
func (s *Service) ProcessEvent(ctx context.Context, event *PaymentEvent) (Outcome, error) {
	_ = ctx
	switch event.Type {
	case EventPaymentSucceeded:
	case EventPaymentFailed:
		// The provider reports a failed charge; acknowledged, no balance change.
		return Outcome{Status: StatusIgnored}, nil
	default:
		// Forward-compatible no-op for event types we do not handle.
		return Outcome{Status: StatusIgnored}, nil
	}

	userID, err := s.repo.GetUserIDByEmail(event.CustomerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Outcome{Status: StatusRejected, Reason: ReasonUnknownCustomer}, nil
		}
		return Outcome{}, err
	}

	if len(event.ProductIDs) == 0 {
		return Outcome{Status: StatusRejected, Reason: ReasonEmptyCart}, nil
	}
	pkg, err := s.repo.FindActivePackage(models.PaymentProviderDodo, event.ProductIDs[0])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Outcome{Status: StatusRejected, Reason: ReasonUnknownProduct}, nil
		}
		return Outcome{}, err
	}

	if err := s.repo.AddCredits(userID, pkg.Credits); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Status:          StatusCredited,
		CreditedAccount: userID,
		CreditedAmount:  pkg.Credits,
	}, nil
}

package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pixeldodo/pixeldodo/app/models"
)

type fakePaymentsRepo struct {
	events    map[string]*models.PaymentWebhookEvent
	nextID    uint
	usersByID map[uint]uint // id -> credits
	emails    map[string]uint
	packages  map[string]models.CreditPackage
	processed map[uint]string
}

func newFakePaymentsRepo() *fakePaymentsRepo {
	return &fakePaymentsRepo{
		events:    map[string]*models.PaymentWebhookEvent{},
		usersByID: map[uint]uint{},
		emails:    map[string]uint{},
		packages:  map[string]models.CreditPackage{},
		processed: map[uint]string{},
	}
}

func (f *fakePaymentsRepo) addUser(id uint, email string, credits uint) {
	f.usersByID[id] = credits
	f.emails[email] = id
}

func (f *fakePaymentsRepo) addPackage(productID string, credits uint) {
	f.packages[productID] = models.CreditPackage{
		Provider:  models.PaymentProviderDodo,
		ProductID: productID,
		Credits:   credits,
		IsActive:  true,
	}
}

func (f *fakePaymentsRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "/" + event.PaymentID
	if existing, ok := f.events[key]; ok {
		return false, existing, nil
	}
	f.nextID++
	event.ID = f.nextID
	f.events[key] = event
	return true, event, nil
}

func (f *fakePaymentsRepo) MarkWebhookProcessed(id uint, creditedAmount uint, processingError string) error {
	f.processed[id] = processingError
	for _, event := range f.events {
		if event.ID == id {
			now := time.Now()
			event.ProcessedAt = &now
			event.CreditedAmount = creditedAmount
			event.ProcessingError = processingError
		}
	}
	return nil
}

func (f *fakePaymentsRepo) GetUserIDByEmail(email string) (uint, error) {
	id, ok := f.emails[email]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return id, nil
}

func (f *fakePaymentsRepo) FindActivePackage(provider, productID string) (*models.CreditPackage, error) {
	pkg, ok := f.packages[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &pkg, nil
}

func (f *fakePaymentsRepo) AddCredits(userID uint, amount uint) error {
	f.usersByID[userID] += amount
	return nil
}

func TestProcessEventCreditsAccount(t *testing.T) {
	repo := newFakePaymentsRepo()
	repo.addUser(7, "a@x.com", 0)
	repo.addPackage("P500", 500)
	svc := NewService(repo)

	out, err := svc.ProcessEvent(context.Background(), &PaymentEvent{
		Type:          EventPaymentSucceeded,
		PaymentID:     "pay_1",
		CustomerEmail: "a@x.com",
		ProductIDs:    []string{"P500"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusCredited || out.CreditedAmount != 500 || out.CreditedAccount != 7 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if repo.usersByID[7] != 500 {
		t.Fatalf("expected balance 500, got %d", repo.usersByID[7])
	}
}

func TestProcessEventUnknownCustomer(t *testing.T) {
	repo := newFakePaymentsRepo()
	repo.addPackage("P500", 500)
	svc := NewService(repo)

	out, err := svc.ProcessEvent(context.Background(), &PaymentEvent{
		Type:          EventPaymentSucceeded,
		CustomerEmail: "ghost@x.com",
		ProductIDs:    []string{"P500"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusRejected || out.Reason != ReasonUnknownCustomer {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	for id, credits := range repo.usersByID {
		if credits != 0 {
			t.Fatalf("account %d mutated: %d", id, credits)
		}
	}
}

func TestProcessEventUnknownProduct(t *testing.T) {
	repo := newFakePaymentsRepo()
	repo.addUser(7, "a@x.com", 3)
	svc := NewService(repo)

	out, err := svc.ProcessEvent(context.Background(), &PaymentEvent{
		Type:          EventPaymentSucceeded,
		CustomerEmail: "a@x.com",
		ProductIDs:    []string{"pdt_bogus"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusRejected || out.Reason != ReasonUnknownProduct {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if repo.usersByID[7] != 3 {
		t.Fatalf("balance changed on rejected product: %d", repo.usersByID[7])
	}
}

func TestProcessEventEmptyCart(t *testing.T) {
	repo := newFakePaymentsRepo()
	repo.addUser(7, "a@x.com", 0)
	svc := NewService(repo)

	out, err := svc.ProcessEvent(context.Background(), &PaymentEvent{
		Type:          EventPaymentSucceeded,
		CustomerEmail: "a@x.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusRejected || out.Reason != ReasonEmptyCart {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestProcessEventFailedAndUnknownTypesAreNoOps(t *testing.T) {
	repo := newFakePaymentsRepo()
	repo.addUser(7, "a@x.com", 42)
	repo.addPackage("P500", 500)
	svc := NewService(repo)

	for _, typ := range []string{EventPaymentFailed, "refund.created"} {
		out, err := svc.ProcessEvent(context.Background(), &PaymentEvent{
			Type:          typ,
			CustomerEmail: "a@x.com",
			ProductIDs:    []string{"P500"},
		})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", typ, err)
		}
		if out.Status != StatusIgnored {
			t.Fatalf("expected %q to be ignored, got %+v", typ, out)
		}
	}
	if repo.usersByID[7] != 42 {
		t.Fatalf("balance changed by a no-op event: %d", repo.usersByID[7])
	}
}

func TestRecordWebhookEventDeduplicatesByPaymentID(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewService(repo)

	in := WebhookEventInput{
		Provider:       models.PaymentProviderDodo,
		PaymentID:      "pay_dup",
		EventType:      EventPaymentSucceeded,
		PayloadJSON:    `{"type":"payment.succeeded"}`,
		SignatureValid: true,
	}

	process, first, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil || !process {
		t.Fatalf("first delivery: process=%v err=%v", process, err)
	}
	if err := svc.MarkWebhookProcessed(context.Background(), first.ID, 500, nil); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	process, second, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if process {
		t.Fatalf("completed payment must not be processed again")
	}
	if first.ID != second.ID {
		t.Fatalf("expected the stored event back, got %d and %d", first.ID, second.ID)
	}
}

// A delivery that did not complete (bad signature, malformed payload, a
// crash before crediting) must not consume the payment id: the provider's
// retry is the only second chance a payment gets.
func TestRecordWebhookEventRetryAfterFailure(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewService(repo)

	in := WebhookEventInput{
		Provider:       models.PaymentProviderDodo,
		PaymentID:      "pay_retry",
		EventType:      EventPaymentSucceeded,
		PayloadJSON:    `{"type":"payment.succeeded"}`,
		SignatureValid: true,
	}

	process, first, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil || !process {
		t.Fatalf("first delivery: process=%v err=%v", process, err)
	}

	// Unmarked row: the first attempt crashed before finishing.
	process, _, err = svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("retry of unfinished delivery: %v", err)
	}
	if !process {
		t.Fatalf("retry of an unfinished delivery must be processed")
	}

	// Marked with an error: the first attempt was rejected.
	if err := svc.MarkWebhookProcessed(context.Background(), first.ID, 0, errors.New("invalid webhook signature")); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	process, _, err = svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("retry of failed delivery: %v", err)
	}
	if !process {
		t.Fatalf("retry of a failed delivery must be processed")
	}

	// Marked successful: the payment is consumed.
	if err := svc.MarkWebhookProcessed(context.Background(), first.ID, 500, nil); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	process, _, err = svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("retry of completed delivery: %v", err)
	}
	if process {
		t.Fatalf("completed payment must not be processed again")
	}
}

func TestRecordWebhookEventHashFallback(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewService(repo)

	in := WebhookEventInput{
		Provider:    models.PaymentProviderDodo,
		EventType:   "payment.succeeded",
		PayloadJSON: `{"type":"payment.succeeded","data":{}}`,
	}
	process, stored, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil || !process {
		t.Fatalf("process=%v err=%v", process, err)
	}
	if !strings.HasPrefix(stored.PaymentID, "hash:") {
		t.Fatalf("expected hash fallback id, got %q", stored.PaymentID)
	}
	if err := svc.MarkWebhookProcessed(context.Background(), stored.ID, 0, nil); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	process, second, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if process || second.ID != stored.ID {
		t.Fatalf("identical payload without payment id must deduplicate")
	}
}

// Duplicate delivery end to end: the same payment credited exactly once.
func TestDuplicateDeliveryCreditsOnce(t *testing.T) {
	repo := newFakePaymentsRepo()
	repo.addUser(7, "a@x.com", 0)
	repo.addPackage("P500", 500)
	svc := NewService(repo)

	raw := `{"type":"payment.succeeded","data":{"customer":{"email":"a@x.com"},"payment_id":"pay_7","product_cart":[{"product_id":"P500"}]}}`

	for i := 0; i < 2; i++ {
		event, err := ParseDodoWebhookEvent([]byte(raw))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		process, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
			Provider:       models.PaymentProviderDodo,
			PaymentID:      event.PaymentID,
			EventType:      event.Type,
			PayloadJSON:    raw,
			SignatureValid: true,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if !process {
			continue // acknowledged duplicate, no reprocessing
		}
		out, err := svc.ProcessEvent(context.Background(), event)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		_ = svc.MarkWebhookProcessed(context.Background(), stored.ID, out.CreditedAmount, nil)
	}

	if repo.usersByID[7] != 500 {
		t.Fatalf("expected 500 after duplicate delivery, got %d", repo.usersByID[7])
	}
}

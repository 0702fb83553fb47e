package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/pixeldodo/pixeldodo/app/models"
	"github.com/pixeldodo/pixeldodo/internal/pkg/ledger"
)

type fakeStore struct {
	users     map[uint]*models.User
	artifacts []models.GeneratedImage
	createErr error
}

func (f *fakeStore) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) Create(image *models.GeneratedImage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.artifacts = append(f.artifacts, *image)
	return nil
}

// The ledger repo view of the same balances.
func (f *fakeStore) AddCredits(userID uint, amount uint) error {
	if u, ok := f.users[userID]; ok {
		u.Credits += amount
	}
	return nil
}

func (f *fakeStore) DebitCredits(userID uint, amount uint) (bool, error) {
	u, ok := f.users[userID]
	if !ok || u.Credits < amount {
		return false, nil
	}
	u.Credits -= amount
	return true, nil
}

func (f *fakeStore) GetCredits(userID uint) (uint, error) {
	u, ok := f.users[userID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return u.Credits, nil
}

type fakeGenerator struct {
	url   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newGate(store *fakeStore, gen *fakeGenerator, hooks ...Hook) *Service {
	return NewService(store, store, ledger.NewService(store), gen, hooks...)
}

func TestCheckAllowanceOrder(t *testing.T) {
	store := &fakeStore{users: map[uint]*models.User{
		1: {ID: 1, Status: models.STATUS_INACTIVE, Credits: 100},
		2: {ID: 2, Status: models.STATUS_ACTIVE, Credits: 5},
		3: {ID: 3, Status: models.STATUS_ACTIVE, Credits: 10},
	}}
	svc := newGate(store, &fakeGenerator{url: "https://img.example/x.png"})

	tests := []struct {
		name      string
		accountID uint
		want      error
	}{
		{name: "missing account", accountID: 99, want: ErrAccountNotFound},
		{name: "unverified outranks balance", accountID: 1, want: ErrNotVerified},
		{name: "short balance", accountID: 2, want: ErrInsufficientCredits},
		{name: "exactly the cost passes", accountID: 3, want: nil},
	}

	for _, tt := range tests {
		if got := svc.CheckAllowance(context.Background(), tt.accountID); !errors.Is(got, tt.want) {
			t.Fatalf("%s: CheckAllowance = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGenerateRejectedWithoutMutation(t *testing.T) {
	store := &fakeStore{users: map[uint]*models.User{
		1: {ID: 1, Status: models.STATUS_ACTIVE, Credits: 5},
	}}
	gen := &fakeGenerator{url: "https://img.example/x.png"}
	svc := newGate(store, gen)

	_, err := svc.Generate(context.Background(), 1, "a red fox")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("upstream must not be called on a failed pre-check")
	}
	if store.users[1].Credits != 5 {
		t.Fatalf("balance changed on rejection: %d", store.users[1].Credits)
	}
}

func TestGenerateDebitsAfterSuccess(t *testing.T) {
	store := &fakeStore{users: map[uint]*models.User{
		1: {ID: 1, Status: models.STATUS_ACTIVE, Credits: 20},
	}}
	var hooked []models.GeneratedImage
	svc := newGate(store, &fakeGenerator{url: "https://img.example/fox.png"}, func(img models.GeneratedImage) {
		hooked = append(hooked, img)
	})

	artifact, err := svc.Generate(context.Background(), 1, " a red fox ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.users[1].Credits != 10 {
		t.Fatalf("expected balance 10 after debit, got %d", store.users[1].Credits)
	}
	if artifact.Prompt != "a red fox" {
		t.Fatalf("prompt not trimmed: %q", artifact.Prompt)
	}
	if artifact.URL != "https://img.example/fox.png" || artifact.UUID == "" {
		t.Fatalf("artifact not filled: %+v", artifact)
	}
	if len(store.artifacts) != 1 {
		t.Fatalf("artifact not recorded")
	}
	if len(hooked) != 1 || hooked[0].UUID != artifact.UUID {
		t.Fatalf("hook not invoked with artifact")
	}
}

func TestGenerateUpstreamFailureDoesNotDebit(t *testing.T) {
	store := &fakeStore{users: map[uint]*models.User{
		1: {ID: 1, Status: models.STATUS_ACTIVE, Credits: 20},
	}}
	svc := newGate(store, &fakeGenerator{err: fmt.Errorf("api timeout")})

	_, err := svc.Generate(context.Background(), 1, "a red fox")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if store.users[1].Credits != 20 {
		t.Fatalf("credits taken for a failed generation: %d", store.users[1].Credits)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	store := &fakeStore{users: map[uint]*models.User{
		1: {ID: 1, Status: models.STATUS_ACTIVE, Credits: 20},
	}}
	svc := newGate(store, &fakeGenerator{url: "https://img.example/x.png"})

	if _, err := svc.Generate(context.Background(), 1, "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}

func TestGenerateArtifactWriteFailureDoesNotFail(t *testing.T) {
	store := &fakeStore{
		users:     map[uint]*models.User{1: {ID: 1, Status: models.STATUS_ACTIVE, Credits: 20}},
		createErr: fmt.Errorf("db gone"),
	}
	svc := newGate(store, &fakeGenerator{url: "https://img.example/x.png"})

	artifact, err := svc.Generate(context.Background(), 1, "a red fox")
	if err != nil {
		t.Fatalf("artifact bookkeeping must not fail the generation: %v", err)
	}
	if artifact.URL == "" {
		t.Fatalf("expected artifact despite write failure")
	}
	if store.users[1].Credits != 10 {
		t.Fatalf("debit should have happened, balance %d", store.users[1].Credits)
	}
}

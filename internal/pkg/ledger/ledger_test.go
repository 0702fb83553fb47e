package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"
)

// fakeRepo mimics the conditional relative updates the gorm repository
// issues against MySQL, including their serialization behavior.
type fakeRepo struct {
	mu       sync.Mutex
	balances map[uint]uint
}

func newFakeRepo(balances map[uint]uint) *fakeRepo {
	return &fakeRepo{balances: balances}
}

func (f *fakeRepo) AddCredits(userID uint, amount uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.balances[userID]; !ok {
		return nil // UPDATE on a missing row affects nothing
	}
	f.balances[userID] += amount
	return nil
}

func (f *fakeRepo) DebitCredits(userID uint, amount uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[userID]
	if !ok || balance < amount {
		return false, nil
	}
	f.balances[userID] = balance - amount
	return true, nil
}

func (f *fakeRepo) GetCredits(userID uint) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[userID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return balance, nil
}

func TestDebitInsufficientCreditsLeavesBalanceUntouched(t *testing.T) {
	repo := newFakeRepo(map[uint]uint{1: 5})
	svc := NewService(repo)

	err := svc.Debit(context.Background(), 1, 10)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	balance, err := svc.Balance(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected balance error: %v", err)
	}
	if balance != 5 {
		t.Fatalf("balance changed on rejected debit: got %d, want 5", balance)
	}
}

func TestDebitUnknownAccount(t *testing.T) {
	svc := NewService(newFakeRepo(map[uint]uint{}))

	if err := svc.Debit(context.Background(), 42, 10); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDebitAndCreditZeroAmount(t *testing.T) {
	svc := NewService(newFakeRepo(map[uint]uint{1: 50}))

	if err := svc.Debit(context.Background(), 1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero debit, got %v", err)
	}
	if err := svc.Credit(context.Background(), 1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero credit, got %v", err)
	}
}

func TestConcurrentDebitsNeverOverspend(t *testing.T) {
	repo := newFakeRepo(map[uint]uint{1: 100})
	svc := NewService(repo)

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Debit(context.Background(), 1, 10)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientCredits):
		default:
			t.Fatalf("unexpected debit error: %v", err)
		}
	}

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful debits, got %d", succeeded)
	}
	balance, _ := svc.Balance(context.Background(), 1)
	if balance != 0 {
		t.Fatalf("expected final balance 0, got %d", balance)
	}
}

func TestConcurrentDebitRacingCredit(t *testing.T) {
	repo := newFakeRepo(map[uint]uint{1: 20})
	svc := NewService(repo)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = svc.Debit(context.Background(), 1, 10)
	}()
	go func() {
		defer wg.Done()
		_ = svc.Credit(context.Background(), 1, 500)
	}()
	wg.Wait()

	balance, err := svc.Balance(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected balance error: %v", err)
	}
	if balance != 510 {
		t.Fatalf("expected 20 - 10 + 500 = 510, got %d", balance)
	}
}

// Package ledger implements the credit accounting rules: every balance
// change is a relative increment applied by the database, a debit never
// succeeds beyond the available balance, and callers always pass the
// account id explicitly.
package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrAccountNotFound is returned when the referenced account does not exist.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrInsufficientCredits is returned when a debit would push the balance below zero.
	ErrInsufficientCredits = errors.New("ledger: insufficient credits")
	// ErrInvalidAmount is returned for zero amounts, which are always caller bugs.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")
)

// Repository provides the balance operations used by the ledger service.
// The user repository in app/repository satisfies it.
type Repository interface {
	AddCredits(userID uint, amount uint) error
	DebitCredits(userID uint, amount uint) (bool, error)
	GetCredits(userID uint) (uint, error)
}

// Service computes balance transitions on top of an injected repository.
type Service struct {
	repo Repository
}

// NewService creates a ledger service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Credit applies a top-up as an atomic relative increment.
func (s *Service) Credit(ctx context.Context, accountID uint, amount uint) error {
	_ = ctx
	if accountID == 0 {
		return ErrAccountNotFound
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	return s.repo.AddCredits(accountID, amount)
}

// Debit takes amount from the account's balance. The decrement is
// conditional on the balance covering the amount, so two concurrent
// debits can never spend the same credits twice. When the conditional
// update matches nothing, the balance is re-read only to report whether
// the account is missing or merely short.
func (s *Service) Debit(ctx context.Context, accountID uint, amount uint) error {
	_ = ctx
	if accountID == 0 {
		return ErrAccountNotFound
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	ok, err := s.repo.DebitCredits(accountID, amount)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := s.repo.GetCredits(accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return ErrInsufficientCredits
}

// Balance reads the current balance.
func (s *Service) Balance(ctx context.Context, accountID uint) (uint, error) {
	_ = ctx
	credits, err := s.repo.GetCredits(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return credits, nil
}

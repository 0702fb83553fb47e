// Package generation guards the paid image-generation flow: preconditions
// are checked before the upstream call, the debit happens only after the
// upstream confirmed success, and the artifact record is informational.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixeldodo/pixeldodo/app/models"
	"github.com/pixeldodo/pixeldodo/internal/pkg/ledger"
)

var (
	// ErrAccountNotFound mirrors ledger.ErrAccountNotFound for the pre-check.
	ErrAccountNotFound = errors.New("generation: account not found")
	// ErrNotVerified is returned for accounts that have not confirmed their email.
	ErrNotVerified = errors.New("generation: email not verified")
	// ErrInsufficientCredits is returned when the balance does not cover one generation.
	ErrInsufficientCredits = errors.New("generation: insufficient credits")
	// ErrEmptyPrompt is returned for blank prompts before anything else runs.
	ErrEmptyPrompt = errors.New("generation: prompt must not be empty")
	// ErrUpstream wraps failures of the external image API; no credits were taken.
	ErrUpstream = errors.New("generation: image generation failed")
)

// UserReader is the slice of the user repository the gate needs.
type UserReader interface {
	GetByID(id uint) (*models.User, error)
}

// ArtifactWriter persists generated artifact references.
type ArtifactWriter interface {
	Create(image *models.GeneratedImage) error
}

// ImageGenerator calls the external image-generation API and returns the
// URL of the produced image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Hook runs after a successful, debited generation. Used for the S3
// mirror and statistics counters; failures in a hook never surface.
type Hook func(image models.GeneratedImage)

// Service is the generation gate.
type Service struct {
	users     UserReader
	artifacts ArtifactWriter
	ledger    *ledger.Service
	generator ImageGenerator
	hooks     []Hook
}

// NewService creates a generation gate from its collaborators.
func NewService(users UserReader, artifacts ArtifactWriter, led *ledger.Service, generator ImageGenerator, hooks ...Hook) *Service {
	return &Service{
		users:     users,
		artifacts: artifacts,
		ledger:    led,
		generator: generator,
		hooks:     hooks,
	}
}

// CheckAllowance verifies, in order: the account exists, its email is
// verified, and the balance covers one generation. No mutation occurs.
func (s *Service) CheckAllowance(ctx context.Context, accountID uint) error {
	_ = ctx
	user, err := s.users.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if !user.IsVerified() {
		return ErrNotVerified
	}
	if user.Credits < models.CreditsPerGeneration {
		return ErrInsufficientCredits
	}
	return nil
}

// Generate runs the full gated flow for one prompt. The debit is issued
// only after the upstream call succeeded, and it re-checks the balance
// atomically, so a second tab racing this request cannot overdraw the
// account: the slower debit simply fails with ErrInsufficientCredits.
func (s *Service) Generate(ctx context.Context, accountID uint, prompt string) (*models.GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if err := s.CheckAllowance(ctx, accountID); err != nil {
		return nil, err
	}

	url, err := s.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	switch err := s.ledger.Debit(ctx, accountID, models.CreditsPerGeneration); {
	case err == nil:
	case errors.Is(err, ledger.ErrInsufficientCredits):
		// Lost the race against a concurrent debit after our pre-check.
		return nil, ErrInsufficientCredits
	case errors.Is(err, ledger.ErrAccountNotFound):
		return nil, ErrAccountNotFound
	default:
		return nil, err
	}

	artifact := models.GeneratedImage{
		UUID:   uuid.NewString(),
		UserID: accountID,
		Prompt: prompt,
		URL:    url,
	}
	if err := s.artifacts.Create(&artifact); err != nil {
		// Display data only; the paid-for generation already happened.
		log.Printf("failed to record generated image for user %d: %v", accountID, err)
	}

	for _, hook := range s.hooks {
		hook(artifact)
	}

	return &artifact, nil
}

package repository

import (
	"time"

	"github.com/pixeldodo/pixeldodo/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)

	// Balance mutations are relative increments issued to the database,
	// never compute-then-overwrite of the absolute value.
	AddCredits(userID uint, amount uint) error
	DebitCredits(userID uint, amount uint) (bool, error)
	GetCredits(userID uint) (uint, error)
}

// GeneratedImageRepository persists artifact references for display.
type GeneratedImageRepository interface {
	Create(image *models.GeneratedImage) error
	GetLatestByUserID(userID uint) (*models.GeneratedImage, error)
	ListByUserID(userID uint, offset, limit int) ([]models.GeneratedImage, error)
	SetMirrorURL(uuid string, mirrorURL string) error
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// CreditPackageRepository serves the price table.
type CreditPackageRepository interface {
	GetActiveByProductID(provider, productID string) (*models.CreditPackage, error)
	ListActive(provider string) ([]models.CreditPackage, error)
	Seed(packages []models.CreditPackage) error
}

// Repositories bundles all repository implementations
type Repositories struct {
	User           UserRepository
	GeneratedImage GeneratedImageRepository
	CreditPackage  CreditPackageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		GeneratedImage: NewGeneratedImageRepository(db),
		CreditPackage:  NewCreditPackageRepository(db),
	}
}

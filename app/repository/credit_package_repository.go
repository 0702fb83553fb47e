package repository

import (
	"github.com/pixeldodo/pixeldodo/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditPackageRepository implements the CreditPackageRepository interface
type creditPackageRepository struct {
	db *gorm.DB
}

// NewCreditPackageRepository creates a new credit package repository instance
func NewCreditPackageRepository(db *gorm.DB) CreditPackageRepository {
	return &creditPackageRepository{db: db}
}

func (r *creditPackageRepository) GetActiveByProductID(provider, productID string) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	err := r.db.
		Where("provider = ? AND product_id = ? AND is_active = ?", provider, productID, true).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *creditPackageRepository) ListActive(provider string) ([]models.CreditPackage, error) {
	var pkgs []models.CreditPackage
	err := r.db.
		Where("provider = ? AND is_active = ?", provider, true).
		Order("credits ASC").
		Find(&pkgs).Error
	return pkgs, err
}

// Seed inserts the default price table, leaving existing rows untouched so
// operators can adjust prices without the seed overwriting them.
func (r *creditPackageRepository) Seed(packages []models.CreditPackage) error {
	if len(packages) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "product_id"},
		},
		DoNothing: true,
	}).Create(&packages).Error
}

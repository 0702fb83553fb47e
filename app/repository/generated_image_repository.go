package repository

import (
	"time"

	"github.com/pixeldodo/pixeldodo/app/models"
	"gorm.io/gorm"
)

// generatedImageRepository implements the GeneratedImageRepository interface
type generatedImageRepository struct {
	db *gorm.DB
}

// NewGeneratedImageRepository creates a new generated image repository instance
func NewGeneratedImageRepository(db *gorm.DB) GeneratedImageRepository {
	return &generatedImageRepository{db: db}
}

func (r *generatedImageRepository) Create(image *models.GeneratedImage) error {
	return r.db.Create(image).Error
}

func (r *generatedImageRepository) GetLatestByUserID(userID uint) (*models.GeneratedImage, error) {
	var image models.GeneratedImage
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *generatedImageRepository) ListByUserID(userID uint, offset, limit int) ([]models.GeneratedImage, error) {
	var images []models.GeneratedImage
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&images).Error
	return images, err
}

// SetMirrorURL records the S3 mirror location after the async copy ran.
func (r *generatedImageRepository) SetMirrorURL(uuid string, mirrorURL string) error {
	return r.db.Model(&models.GeneratedImage{}).
		Where("uuid = ?", uuid).
		UpdateColumn("mirror_url", mirrorURL).Error
}

// GetDailyStats returns per-day generation counts in the given range.
func (r *generatedImageRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var stats []models.DailyStats
	err := r.db.Model(&models.GeneratedImage{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats).Error
	return stats, err
}

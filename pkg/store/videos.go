package store

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"clipstream/pkg/models"
)

// Videos owns the Video collection.
type Videos struct {
	db *gorm.DB
}

func NewVideos(db *gorm.DB) *Videos {
	return &Videos{db: db}
}

// List returns all videos newest-first. An empty store yields an empty slice,
// not an error; the HTTP layer decides how to flavour that.
func (s *Videos) List() ([]models.Video, error) {
	videos := []models.Video{}
	if err := s.db.Order("created_at desc").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("video list: %v", err)
	}
	return videos, nil
}

// Create persists a video record. Serving defaults (controls, transformation)
// are applied by the model's pre-create hook.
func (s *Videos) Create(v *models.Video) (*models.Video, error) {
	if v.Title == "" || v.Description == "" || v.VideoURL == "" {
		return nil, fmt.Errorf("title, description and videoUrl are required: %w", ErrInvalidInput)
	}
	if err := s.db.Create(v).Error; err != nil {
		return nil, fmt.Errorf("video create: %v", err)
	}
	return v, nil
}

package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/watchpost/watchpost/models"
)

// MediaStore persists and queries media records over gorm. Inserts rely on
// the unique filename index to serialize concurrent submissions; queries
// are read-only snapshots.
type MediaStore struct {
	db *gorm.DB
}

// NewMediaStore creates a store over an initialized database.
func NewMediaStore(db *gorm.DB) *MediaStore {
	return &MediaStore{db: db}
}

// Insert creates one media record, assigning its id and creation time.
// A filename uniqueness violation surfaces as the returned error.
func (s *MediaStore) Insert(ctx context.Context, m *models.Media) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// Recent returns records most-recent-first. limit <= 0 means no limit.
func (s *MediaStore) Recent(ctx context.Context, limit int) ([]models.Media, error) {
	var items []models.Media
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	return items, err
}

// CountByKind counts records of one media kind.
func (s *MediaStore) CountByKind(ctx context.Context, kind string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Media{}).
		Where("media_type = ?", kind).Count(&n).Error
	return n, err
}

// CountTotal counts all records.
func (s *MediaStore) CountTotal(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Media{}).Count(&n).Error
	return n, err
}

// Counts bundles the dashboard aggregates. Individual query failures fall
// back to zero instead of failing the page.
type Counts struct {
	Images int64
	Videos int64
	Total  int64
}

// DashboardCounts gathers image/video/total counts for the dashboard.
func (s *MediaStore) DashboardCounts(ctx context.Context) Counts {
	var c Counts
	if n, err := s.CountByKind(ctx, "image"); err == nil {
		c.Images = n
	}
	if n, err := s.CountByKind(ctx, "video"); err == nil {
		c.Videos = n
	}
	if n, err := s.CountTotal(ctx); err == nil {
		c.Total = n
	}
	return c
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Sweet model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Field validation lives in the service
// layer (services.CatalogService); stock arithmetic lives in stock.go.
//
// Error semantics:
//   - When a sweet is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// SweetFields carries the writable attributes of a sweet. Create reads every
// field; UpdateSweet receives a column map built from the non-nil subset.
type SweetFields struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Quantity    int64
	Description string
	ImageURL    string
}

// CreateSweet inserts a new Sweet row with a generated UUID primary key and
// a UTC creation timestamp. On success, it returns the persisted Sweet.
func CreateSweet(ctx context.Context, db *gorm.DB, f SweetFields) (*domain.Sweet, error) {
	s := &domain.Sweet{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Category:    f.Category,
		Price:       f.Price,
		Quantity:    f.Quantity,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ListSweets returns the full catalog ordered deterministically by insertion
// (CreatedAt ASC, ID ASC) so list responses are stable across calls. It
// returns an empty slice when the catalog is empty.
func ListSweets(ctx context.Context, db *gorm.DB) ([]domain.Sweet, error) {
	var out []domain.Sweet
	err := db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// GetSweet fetches a single sweet by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetSweet(ctx context.Context, db *gorm.DB, id string) (*domain.Sweet, error) {
	var s domain.Sweet
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSweet applies a partial update to the sweet identified by id. The
// updates map uses column names as keys and is expected to be non-empty.
// If no rows are affected (sweet missing), it returns ErrNotFound.
func UpdateSweet(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Sweet{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSweet soft-deletes the sweet identified by id. Purchase records keep
// their own name/price snapshot and are not touched. Returns ErrNotFound if
// the sweet does not exist.
func DeleteSweet(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Sweet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSweets returns the total number of sweets in the catalog.
func CountSweets(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Sweet{}).
		Count(&total).Error
	return total, err
}

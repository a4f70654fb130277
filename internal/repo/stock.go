// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the stock arithmetic primitives used by the
// stock ledger (services.StockService). Both operations are single UPDATE
// statements, so a purchase's availability check and decrement cannot
// interleave with another writer on the same row.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
)

// DecrementStock atomically subtracts qty units from a sweet's quantity,
// guarded by the availability condition:
//
//	UPDATE sweets SET quantity = quantity - ? WHERE id = ? AND quantity >= ?
//
// It reports applied=false when the row was not updated, which means the
// sweet is either missing or has insufficient stock; the caller disambiguates
// by fetching the row. The quantity column can never go negative through this
// path.
func DecrementStock(ctx context.Context, db *gorm.DB, id string, qty int64) (applied bool, err error) {
	res := db.WithContext(ctx).
		Model(&domain.Sweet{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementStock atomically adds qty units to a sweet's quantity. Returns
// ErrNotFound when the sweet does not exist. Validation of qty (> 0) happens
// in the service layer.
func IncrementStock(ctx context.Context, db *gorm.DB, id string, qty int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Sweet{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

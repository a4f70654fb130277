// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Purchase
// model — the append-only history recorder. Rows are only ever inserted;
// there are no update or delete helpers on purpose.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
)

// CreatePurchase appends one purchase record. The unit price is the price
// captured before the stock decrement; the total is derived here with decimal
// arithmetic so repeated purchases never accumulate floating-point drift.
// Callers are expected to run this inside the same transaction as the
// decrement so the record and the quantity change commit together.
func CreatePurchase(ctx context.Context, db *gorm.DB, sweetID, sweetName, userID string, qty int64, unitPrice decimal.Decimal) (*domain.Purchase, error) {
	p := &domain.Purchase{
		ID:         uuid.NewString(),
		SweetID:    sweetID,
		SweetName:  sweetName,
		UserID:     userID,
		Quantity:   qty,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(qty)),
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPurchase fetches a purchase by ID (used for idempotent replay).
func GetPurchase(ctx context.Context, db *gorm.DB, id string) (*domain.Purchase, error) {
	var p domain.Purchase
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPurchases returns all purchases belonging to userID, newest first
// (CreatedAt DESC, ID DESC for a deterministic tie-break).
func ListPurchases(ctx context.Context, db *gorm.DB, userID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountPurchases returns the total number of purchases made by userID.
func CountPurchases(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListPurchasesPage returns a paginated slice of purchases for userID, newest
// first. Use CountPurchases to obtain the total for pagination metadata.
func ListPurchasesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

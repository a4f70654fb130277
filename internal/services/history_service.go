// Package services – HistoryService
//
// This file implements HistoryService, the read side of the purchase history
// recorder. Records are appended by StockService inside the purchase
// transaction; this service only lists them, newest first, with the same
// pagination defaults as the rest of the API.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
	"github.com/sweetshop/go-sweetshop-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HistoryService answers per-user purchase history queries. Purchases are
// immutable, so every listing is a consistent snapshot; the order is always
// newest first (created_at DESC) and is part of the API contract.
type HistoryService struct {
	DB *gorm.DB
}

// List returns all purchases for a user (non-paginated).
// Prefer ListPage for scalability on large histories.
func (s *HistoryService) List(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return repo.ListPurchases(ctx, s.DB, userID)
}

// ListPage returns a page of purchases for a user plus the total count.
// It applies defaults for invalid page/pageSize.
func (s *HistoryService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Purchase, int64, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountPurchases(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Purchase{}, 0, nil
	}

	items, err := repo.ListPurchasesPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

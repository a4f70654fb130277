// Package services – StockService
//
// This file implements StockService, the stock ledger. It is the sole writer
// of a sweet's quantity after creation: purchases decrement it, restocks
// increment it, and both paths go through single atomic UPDATE statements so
// no interleaving of concurrent requests can drive the quantity negative or
// let two purchases both succeed against stock that only covers one.
//
// A successful purchase also appends exactly one immutable history record,
// committed in the same transaction as the decrement: either both effects
// happen or neither does.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// sweet/user identifiers and quantities.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
	"github.com/sweetshop/go-sweetshop-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StockService coordinates atomic stock transitions and history recording.
// The ledger performs no implicit retries: an ambiguous failure must be
// retried by the caller with an idempotency key, never re-executed blindly.
type StockService struct {
	DB *gorm.DB
}

// Purchase atomically checks availability and decrements stock by qty on
// behalf of userID, recording one purchase with the unit price captured
// before the decrement.
//
// Semantics:
//   - qty must be a positive integer; otherwise ErrInvalidPurchaseQuantity.
//   - Unknown sweetID yields ErrSweetNotFound.
//   - qty greater than the available quantity yields ErrInsufficientStock and
//     performs no mutation at all.
//   - On success it returns the new purchase record and the sweet with its
//     decremented quantity.
//
// Concurrency & atomicity:
//   - The availability check and the decrement are one conditional UPDATE
//     (quantity = quantity - qty WHERE quantity >= qty), so concurrent
//     purchases on the same sweet serialize at the row and N unit purchases
//     against stock Q succeed exactly min(N, Q) times.
//   - The decrement and the history insert commit in one transaction.
func (s *StockService) Purchase(ctx context.Context, userID, sweetID string, qty int64) (*domain.Purchase, *domain.Sweet, error) {
	tr := otel.Tracer("services/StockService")
	ctx, span := tr.Start(ctx, "Purchase",
		trace.WithAttributes(
			attribute.String("sweet.id", sweetID),
			attribute.String("user.id", userID),
			attribute.Int64("quantity", qty),
		),
	)
	defer span.End()

	if qty <= 0 {
		return nil, nil, ErrInvalidPurchaseQuantity
	}

	var (
		purchase *domain.Purchase
		updated  *domain.Sweet
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Snapshot name and unit price before the decrement; the record must
		// reflect the price the customer saw, not a later edit.
		sweet, err := repo.GetSweet(ctx, tx, sweetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSweetNotFound
			}
			return err
		}

		applied, err := repo.DecrementStock(ctx, tx, sweetID, qty)
		if err != nil {
			return err
		}
		if !applied {
			// The row exists (we just read it), so the guard failed on stock.
			return ErrInsufficientStock
		}

		p, err := repo.CreatePurchase(ctx, tx, sweet.ID, sweet.Name, userID, qty, sweet.Price)
		if err != nil {
			return err
		}
		purchase = p

		updated, err = repo.GetSweet(ctx, tx, sweetID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return purchase, updated, nil
}

// Restock atomically adds qty units to a sweet's stock.
//
// Semantics:
//   - qty must be a positive integer; otherwise ErrInvalidRestockQuantity.
//   - Unknown sweetID yields ErrSweetNotFound.
//   - On success it returns the sweet with its incremented quantity.
func (s *StockService) Restock(ctx context.Context, sweetID string, qty int64) (*domain.Sweet, error) {
	tr := otel.Tracer("services/StockService")
	ctx, span := tr.Start(ctx, "Restock",
		trace.WithAttributes(
			attribute.String("sweet.id", sweetID),
			attribute.Int64("quantity", qty),
		),
	)
	defer span.End()

	if qty <= 0 {
		return nil, ErrInvalidRestockQuantity
	}

	var updated *domain.Sweet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.IncrementStock(ctx, tx, sweetID, qty); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSweetNotFound
			}
			return err
		}
		var err error
		updated, err = repo.GetSweet(ctx, tx, sweetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Stock ledger HTTP handlers.
//
// This file exposes the two mutations on a sweet's stock level:
//   - POST /sweets/{id}/purchase  (any authenticated user; atomic decrement)
//   - POST /sweets/{id}/restock   (admin only; atomic increment)
//
// Purchases honor an optional Idempotency-Key header: a retried request with
// the same key replays the originally recorded purchase instead of charging
// stock twice.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/repo"
	"github.com/sweetshop/go-sweetshop-backend/internal/services"
)

// idempotencyTTL bounds how long a recorded purchase result can be replayed.
const idempotencyTTL = 24 * time.Hour

// PurchaseRequest is the optional JSON payload for a purchase. An absent body
// or absent quantity means "buy one".
type PurchaseRequest struct {
	// Quantity is the number of units to buy; must be positive when present.
	Quantity *int64 `json:"quantity,omitempty" example:"3"`
}

// RestockRequest is the JSON payload for a restock.
type RestockRequest struct {
	// Quantity is the number of units to add; must be positive.
	Quantity int64 `json:"quantity" binding:"required" example:"5"`
}

// PurchaseResponse is returned on a successful purchase. It carries the
// recorded purchase and the sweet's post-purchase state so the storefront can
// refresh its card without a second round trip.
type PurchaseResponse struct {
	Purchase any `json:"purchase"`
	Sweet    any `json:"sweet"`
}

// stockDB returns the GORM handle behind the stock service when available.
// The idempotency replay path needs direct repository access.
func (h *Handlers) stockDB() *gorm.DB {
	if svc, ok := h.stockSvc.(*services.StockService); ok {
		return svc.DB
	}
	return nil
}

// PurchaseSweet godoc
// @ID          purchaseSweet
// @Summary     Purchase a sweet
// @Description Atomically decrements stock by the requested quantity (default 1) and records the purchase.
// @Description Retries with the same Idempotency-Key replay the recorded purchase with its original status.
// @Tags        Stock
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(u1)
// @Param       Idempotency-Key  header  string  false "Retry-safe request key" example(4f7f4a2e)
// @Param       id               path    string  true  "Sweet ID (UUID)"        format(uuid)
// @Param       body             body    handlers.PurchaseRequest  false  "Purchase payload (optional)"
//
// @Success     201  {object} handlers.PurchaseResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Sweet not found"
// @Failure     409  {object} handlers.ErrorResponse "Insufficient stock"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets/{id}/purchase [post]
func (h *Handlers) PurchaseSweet(c *gin.Context) {
	ctx := c.Request.Context()

	sweetID := c.Param("id")
	if _, err := uuid.Parse(sweetID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sweet id must be a UUID")
		return
	}

	qty := int64(1)
	if c.Request.ContentLength > 0 {
		var req PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
		if req.Quantity != nil {
			qty = *req.Quantity
		}
	}

	uid := userID(c)
	idemKey := c.GetHeader("Idempotency-Key")

	// Replay path: a previously recorded result short-circuits the charge.
	if idemKey != "" {
		if db := h.stockDB(); db != nil {
			rec, err := repo.GetIdempotency(ctx, db, uid, sweetID, idemKey, time.Now().UTC())
			if err == nil && rec != nil {
				p, perr := repo.GetPurchase(ctx, db, rec.PurchaseID)
				if perr == nil {
					sw, _ := repo.GetSweet(ctx, db, sweetID)
					c.Header("Idempotency-Replayed", "true")
					ok(c, rec.Status, PurchaseResponse{Purchase: p, Sweet: sw})
					return
				}
			}
		}
	}

	p, sw, err := h.stockSvc.Purchase(ctx, uid, sweetID, qty)
	if err != nil {
		switch err {
		case services.ErrInvalidPurchaseQuantity:
			fail(c, http.StatusBadRequest, ErrCodeValidation, "quantity must be a positive integer")
		case services.ErrSweetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sweet not found")
		case services.ErrInsufficientStock:
			fail(c, http.StatusConflict, ErrCodeInsufficientStock, "insufficient stock")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	// Record the result for later replays. A lost race against a concurrent
	// retry with the same key is tolerated; the first writer wins.
	if idemKey != "" {
		if db := h.stockDB(); db != nil {
			_, _ = repo.CreateIdempotency(ctx, db, uid, sweetID, idemKey, p.ID, http.StatusCreated, idempotencyTTL)
		}
	}

	ok(c, http.StatusCreated, PurchaseResponse{Purchase: p, Sweet: sw})
}

// RestockSweet godoc
// @ID          restockSweet
// @Summary     Restock a sweet
// @Description Atomically increments stock by the requested quantity. Requires the admin capability.
// @Tags        Stock
// @Accept      json
// @Produce     json
//
// @Param       X-User-Role  header  string  false "Role (demo header)"  example(admin)
// @Param       id           path    string  true  "Sweet ID (UUID)"     format(uuid)
// @Param       body         body    handlers.RestockRequest  true  "Restock payload"
//
// @Success     200  {object} domain.Sweet
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Admin capability required"
// @Failure     404  {object} handlers.ErrorResponse "Sweet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets/{id}/restock [post]
func (h *Handlers) RestockSweet(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	sweetID := c.Param("id")
	if _, err := uuid.Parse(sweetID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sweet id must be a UUID")
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sw, err := h.stockSvc.Restock(c.Request.Context(), sweetID, req.Quantity)
	if err != nil {
		switch err {
		case services.ErrInvalidRestockQuantity:
			fail(c, http.StatusBadRequest, ErrCodeValidation, "quantity must be a positive integer")
		case services.ErrSweetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sweet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, sw)
}

// Purchase history HTTP handlers.
//
// This file exposes per-user purchase history:
//   - GET /users/{id}/purchases  (paginated, newest first, self-or-admin)
//
// Purchase rows are immutable snapshots: they keep the sweet's name and unit
// price as they were at purchase time, so history stays meaningful after
// catalog edits or deletions.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
	"github.com/sweetshop/go-sweetshop-backend/internal/repo"
	"github.com/sweetshop/go-sweetshop-backend/internal/services"
)

// PurchasesPageResponse is the paginated envelope for purchase history.
type PurchasesPageResponse struct {
	Purchases  []domain.Purchase `json:"purchases"`
	Pagination Pagination        `json:"pagination"`
}

// ListUserPurchases godoc
// @ID          listUserPurchases
// @Summary     List a user's purchases
// @Description Returns the purchase history for a user, newest first. A user may read only
// @Description their own history unless they carry the admin capability.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Purchases
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(u1)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       id         path    string  true   "User ID whose history to read"
// @Param       page       query   int     false  "1-based page number"  default(1)
// @Param       page_size  query   int     false  "Page size (max 100)"  default(20)
//
// @Success     200  {object} handlers.PurchasesPageResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     403  {object} handlers.ErrorResponse "Cannot read another user's history"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/purchases [get]
func (h *Handlers) ListUserPurchases(c *gin.Context) {
	ctx := c.Request.Context()

	target := c.Param("id")
	if target != userID(c) && !isAdmin(c) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot read another user's purchase history")
		return
	}

	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). Purchases are append-only, so a
	// (count, latest) pair fully identifies the user's history state.
	var db *gorm.DB
	if svc, ok := h.histSvc.(*services.HistoryService); ok {
		db = svc.DB
	}
	if db != nil {
		count, latest, err := repo.PurchasesStats(ctx, db, target)
		if err == nil {
			var ts int64
			if latest != nil {
				ts = latest.Unix()
			}
			etag := fmt.Sprintf(`W/"purchases:%s:%d:%d:%d:%d"`, strings.ToLower(target), page, pageSize, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.histSvc.ListPage(ctx, target, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, PurchasesPageResponse{
		Purchases: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

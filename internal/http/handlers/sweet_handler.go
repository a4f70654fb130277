// Sweet catalog HTTP handlers.
//
// This file exposes REST endpoints for catalog resources:
//   - GET    /sweets             (list, optional search/category/max_price filters, ETag support)
//   - GET    /sweets/categories  (distinct categories for the filter dropdown)
//   - GET    /sweets/{id}        (single sweet)
//   - POST   /sweets             (create, admin only)
//   - PUT    /sweets/{id}        (partial update, admin only)
//   - DELETE /sweets/{id}        (delete, admin only)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/catalog"
	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
	"github.com/sweetshop/go-sweetshop-backend/internal/repo"
	"github.com/sweetshop/go-sweetshop-backend/internal/services"
	"github.com/sweetshop/go-sweetshop-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogService defines catalog lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CatalogService interface {
	// Create validates fields and inserts a new sweet.
	Create(ctx context.Context, f services.CreateFields) (*domain.Sweet, error)
	// Update applies a partial update to a sweet.
	Update(ctx context.Context, id string, f services.UpdateFields) (*domain.Sweet, error)
	// Delete removes a sweet from the catalog.
	Delete(ctx context.Context, id string) error
	// Get returns a single sweet by id.
	Get(ctx context.Context, id string) (*domain.Sweet, error)
	// List returns the catalog narrowed by criteria.
	List(ctx context.Context, c catalog.Criteria) ([]domain.Sweet, error)
	// Categories returns distinct categories plus the synthetic "All" entry.
	Categories(ctx context.Context) ([]string, error)
}

// StockService defines the atomic purchase and restock operations.
//
// Implementations must guarantee that concurrent purchases on the same sweet
// cannot drive its quantity negative.
type StockService interface {
	// Purchase decrements stock and records history atomically.
	Purchase(ctx context.Context, userID, sweetID string, qty int64) (*domain.Purchase, *domain.Sweet, error)
	// Restock increments a sweet's stock.
	Restock(ctx context.Context, sweetID string, qty int64) (*domain.Sweet, error)
}

// HistoryService defines per-user purchase history reads.
type HistoryService interface {
	// ListPage returns a page of purchases for a user and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Purchase, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for the catalog, the stock ledger, and
// purchase history. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	catSvc   CatalogService
	stockSvc StockService
	histSvc  HistoryService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(catSvc CatalogService, stockSvc StockService, histSvc HistoryService) *Handlers {
	return &Handlers{catSvc: catSvc, stockSvc: stockSvc, histSvc: histSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// isAdmin reports whether the upstream identity layer resolved an admin
// capability for this request. The core never validates credentials itself;
// it only consumes the boolean.
func isAdmin(c *gin.Context) bool {
	if v, ok := c.Get("isAdmin"); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	if c != nil && c.Request != nil {
		return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-User-Role")), "admin")
	}
	return false
}

//
// DTOs
//

// CreateSweetRequest is the JSON payload for creating a sweet.
type CreateSweetRequest struct {
	// Name is the product name (required).
	Name string `json:"name" binding:"required" example:"Chocolate Bar"`
	// Category groups sweets for filtering (required).
	Category string `json:"category" binding:"required" example:"chocolate"`
	// Price is the non-negative unit price as a decimal string or number.
	Price decimal.Decimal `json:"price" example:"5.00"`
	// Quantity is the initial non-negative stock level.
	Quantity int64 `json:"quantity" example:"10"`
	// Description is optional display text.
	Description string `json:"description,omitempty" example:"70% cocoa"`
	// ImageURL is an optional product image link.
	ImageURL string `json:"imageUrl,omitempty" example:"https://cdn.example.com/choc.png"`
}

// UpdateSweetRequest is the JSON payload for a partial sweet update.
// Omitted fields are left unchanged.
type UpdateSweetRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int64           `json:"quantity,omitempty"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
}

// CategoriesResponse wraps the distinct category list.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// criteriaFromQuery builds filter criteria from the request query string.
// "all" (any case) and empty values are wildcards; a non-numeric max_price is
// rejected by returning an error message for the client.
func criteriaFromQuery(c *gin.Context) (catalog.Criteria, string) {
	crit := catalog.Criteria{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	if raw := strings.TrimSpace(c.Query("max_price")); raw != "" && !strings.EqualFold(raw, catalog.All) {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return crit, "max_price must be a decimal number or \"all\""
		}
		if p.IsNegative() {
			return crit, "max_price must not be negative"
		}
		crit.MaxPrice = &p
	}
	return crit, ""
}

// requireAdmin enforces the admin capability for catalog writes. It reports
// whether processing may continue.
func requireAdmin(c *gin.Context) bool {
	if !isAdmin(c) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "admin capability required")
		return false
	}
	return true
}

// failValidation maps service validation sentinels to a 400 response, or
// returns false when err is not a validation error.
func failValidation(c *gin.Context, err error) bool {
	switch err {
	case services.ErrNameRequired,
		services.ErrCategoryRequired,
		services.ErrNegativePrice,
		services.ErrNegativeQuantity:
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return true
	}
	return false
}

//
// Handlers
//

// ListSweets godoc
// @ID          listSweets
// @Summary     List sweets
// @Description Returns the catalog, optionally narrowed by search, category, and max_price filters.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Sweets
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       search     query   string  false "Case-insensitive substring of the name"
// @Param       category   query   string  false "Category filter; \"all\" matches everything"
// @Param       max_price  query   string  false "Maximum price; \"all\" disables the ceiling"
//
// @Success     200  {array}  domain.Sweet
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets [get]
func (h *Handlers) ListSweets(c *gin.Context) {
	ctx := c.Request.Context()

	crit, msg := criteriaFromQuery(c)
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}

	// ETag pre-check (best effort). The tag covers catalog state and the
	// active criteria, so different filters never alias each other.
	var db *gorm.DB
	if svc, ok := h.catSvc.(*services.CatalogService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.SweetsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			maxPrice := catalog.All
			if crit.MaxPrice != nil {
				maxPrice = crit.MaxPrice.String()
			}
			etag := fmt.Sprintf(`W/"sweets:%s:%s:%s:%d:%d"`,
				strings.ToLower(crit.Search), strings.ToLower(crit.Category), maxPrice, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.catSvc.List(ctx, crit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List distinct categories
// @Description Returns the categories present in the catalog plus a synthetic "All" entry.
// @Tags        Sweets
// @Produce     json
//
// @Success     200  {object} handlers.CategoriesResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets/categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.catSvc.Categories(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, CategoriesResponse{Categories: cats})
}

// GetSweet godoc
// @ID          getSweet
// @Summary     Get a sweet
// @Description Returns a single catalog item by id.
// @Tags        Sweets
// @Produce     json
//
// @Param       id  path  string  true  "Sweet ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Sweet
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Sweet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets/{id} [get]
func (h *Handlers) GetSweet(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sweet id must be a UUID")
		return
	}

	sw, err := h.catSvc.Get(c.Request.Context(), id)
	if err != nil {
		switch err {
		case services.ErrSweetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sweet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, sw)
}

// CreateSweet godoc
// @ID          createSweet
// @Summary     Create a sweet
// @Description Creates a catalog item. Requires the admin capability.
// @Tags        Sweets
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID    header  string  false "User ID (demo header)"   example(admin1)
// @Param       X-User-Role  header  string  false "Role (demo header)"      example(admin)
// @Param       body         body    handlers.CreateSweetRequest  true  "Create sweet payload"
//
// @Success     201  {object}  domain.Sweet
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin capability required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sweets [post]
func (h *Handlers) CreateSweet(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req CreateSweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sw, err := h.catSvc.Create(c.Request.Context(), services.CreateFields{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if failValidation(c, err) {
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, sw)
}

// UpdateSweet godoc
// @ID          updateSweet
// @Summary     Update a sweet
// @Description Applies a partial update to a catalog item. Requires the admin capability.
// @Tags        Sweets
// @Accept      json
// @Produce     json
//
// @Param       X-User-Role  header  string  false "Role (demo header)"  example(admin)
// @Param       id           path    string  true  "Sweet ID (UUID)"     format(uuid)
// @Param       body         body    handlers.UpdateSweetRequest  true  "Fields to update"
//
// @Success     200  {object} domain.Sweet
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Admin capability required"
// @Failure     404  {object} handlers.ErrorResponse "Sweet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets/{id} [put]
func (h *Handlers) UpdateSweet(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sweet id must be a UUID")
		return
	}

	var req UpdateSweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sw, err := h.catSvc.Update(c.Request.Context(), id, services.UpdateFields{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if failValidation(c, err) {
			return
		}
		switch err {
		case services.ErrSweetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sweet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, sw)
}

// DeleteSweet godoc
// @ID          deleteSweet
// @Summary     Delete a sweet
// @Description Removes a catalog item. Recorded purchases keep their snapshots. Requires the admin capability.
// @Tags        Sweets
// @Produce     json
//
// @Param       X-User-Role  header  string  false "Role (demo header)"  example(admin)
// @Param       id           path    string  true  "Sweet ID (UUID)"     format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Admin capability required"
// @Failure     404  {object} handlers.ErrorResponse "Sweet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sweets/{id} [delete]
func (h *Handlers) DeleteSweet(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sweet id must be a UUID")
		return
	}

	if err := h.catSvc.Delete(c.Request.Context(), id); err != nil {
		switch err {
		case services.ErrSweetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sweet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

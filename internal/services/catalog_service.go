// Package services – CatalogService
//
// This file implements the CatalogService, which owns the lifecycle of sweets
// in the catalog. It validates and normalizes fields, coordinates repository
// operations for creating, reading, updating, and deleting sweets, and
// answers filtered views through the catalog query engine. Stock arithmetic
// is deliberately not handled here; that belongs to StockService, the sole
// writer of the quantity column after creation.
//
// Service-level errors (e.g., ErrSweetNotFound, ErrNameRequired) are returned
// for predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/catalog"
	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
)

// CatalogRepo defines the repository contract required by CatalogService.
// Implementations are responsible for persistence of sweet records.
type CatalogRepo interface {
	// CreateSweet inserts a new sweet row.
	CreateSweet(ctx context.Context, db *gorm.DB, f CreateFields) (*domain.Sweet, error)

	// ListSweets returns the whole catalog in stable insertion order.
	ListSweets(ctx context.Context, db *gorm.DB) ([]domain.Sweet, error)

	// GetSweet fetches a sweet by ID.
	GetSweet(ctx context.Context, db *gorm.DB, id string) (*domain.Sweet, error)

	// UpdateSweet applies a partial column update to a sweet.
	UpdateSweet(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error

	// DeleteSweet removes a sweet from the catalog.
	DeleteSweet(ctx context.Context, db *gorm.DB, id string) error
}

// CreateFields carries the attributes for a new sweet. All fields are
// required except Description and ImageURL.
type CreateFields struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Quantity    int64
	Description string
	ImageURL    string
}

// UpdateFields carries a partial update: nil fields are left unchanged.
type UpdateFields struct {
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	Quantity    *int64
	Description *string
	ImageURL    *string
}

// CatalogService provides catalog-level operations: admin writes and
// customer-facing reads. It enforces field validation and delegates
// persistence to the repository.
type CatalogService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the sweet repository used by this service.
	Repo CatalogRepo

	// NameMaxLen caps stored names by rune length.
	NameMaxLen int
}

// NewCatalogService constructs a CatalogService with sane defaults.
func NewCatalogService(db *gorm.DB, r CatalogRepo) *CatalogService {
	return &CatalogService{
		DB:         db,
		Repo:       r,
		NameMaxLen: 255,
	}
}

// Create validates the fields and inserts a new sweet. Name and category are
// trimmed and whitespace-collapsed before validation; price and quantity must
// not be negative.
func (s *CatalogService) Create(ctx context.Context, f CreateFields) (*domain.Sweet, error) {
	f.Name = normalizeField(f.Name)
	f.Category = normalizeField(f.Category)
	if err := validateFields(f.Name, f.Category, f.Price, f.Quantity); err != nil {
		return nil, err
	}
	f.Name = s.clip(f.Name)
	return s.Repo.CreateSweet(ctx, s.DB, f)
}

// Update applies a partial update to the sweet identified by id. Only non-nil
// fields are written; each supplied field is validated with the same rules as
// Create. Returns ErrSweetNotFound when the id is unknown.
func (s *CatalogService) Update(ctx context.Context, id string, f UpdateFields) (*domain.Sweet, error) {
	// Ensure the sweet exists before validating, so a bad id reports 404
	// rather than a validation failure.
	if _, err := s.Repo.GetSweet(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSweetNotFound
		}
		return nil, err
	}

	updates := make(map[string]any, 6)
	if f.Name != nil {
		name := normalizeField(*f.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = s.clip(name)
	}
	if f.Category != nil {
		cat := normalizeField(*f.Category)
		if cat == "" {
			return nil, ErrCategoryRequired
		}
		updates["category"] = cat
	}
	if f.Price != nil {
		if f.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		updates["price"] = *f.Price
	}
	if f.Quantity != nil {
		if *f.Quantity < 0 {
			return nil, ErrNegativeQuantity
		}
		updates["quantity"] = *f.Quantity
	}
	if f.Description != nil {
		updates["description"] = *f.Description
	}
	if f.ImageURL != nil {
		updates["image_url"] = *f.ImageURL
	}

	if len(updates) > 0 {
		if err := s.Repo.UpdateSweet(ctx, s.DB, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSweetNotFound
			}
			return nil, err
		}
	}
	return s.Repo.GetSweet(ctx, s.DB, id)
}

// Delete removes the sweet from the catalog. Recorded purchases keep their
// name/price snapshot, so history remains readable after deletion.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.DeleteSweet(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSweetNotFound
		}
		return err
	}
	return nil
}

// Get returns a single sweet by id, or ErrSweetNotFound.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	sw, err := s.Repo.GetSweet(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSweetNotFound
		}
		return nil, err
	}
	return sw, nil
}

// List returns the catalog narrowed by the given criteria. Zero criteria
// return the full catalog. Querying never mutates the stored records.
func (s *CatalogService) List(ctx context.Context, c catalog.Criteria) ([]domain.Sweet, error) {
	items, err := s.Repo.ListSweets(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if c.IsZero() {
		return items, nil
	}
	return catalog.Filter(items, c), nil
}

// Categories returns the distinct categories present in the catalog plus the
// synthetic "All" entry, case-preserved from first occurrence.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.Repo.ListSweets(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(items), nil
}

// validateFields applies the create-time validation rules.
func validateFields(name, category string, price decimal.Decimal, quantity int64) error {
	if name == "" {
		return ErrNameRequired
	}
	if category == "" {
		return ErrCategoryRequired
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// clip truncates a name to the configured maximum rune length.
func (s *CatalogService) clip(name string) string {
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return string([]rune(name)[:s.NameMaxLen])
	}
	return name
}

// normalizeField trims whitespace and collapses multiple spaces to one.
func normalizeField(s string) string {
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// Package catalog provides a simple, deterministic, read-only query engine
// over slices of sweets. It is intentionally small and side-effect free, but
// engineered with production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Pure functions: inputs are never mutated, results are fresh slices
//   - Unicode-aware case-insensitive matching (case folding, not ASCII lower)
//   - Deterministic output order (input order is preserved)
//   - Idempotent: re-applying identical criteria yields the same result set
//
// The three predicates — name substring, category equality, price ceiling —
// compose with logical AND. An empty result is a valid answer, not an error.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
)

// All is the wildcard criteria value accepted by the HTTP boundary for both
// the category and max-price filters.
const All = "all"

// Criteria narrows a catalog listing. Zero values mean "match everything":
// an empty Search matches all names, an empty (or "all") Category matches all
// categories, and a nil MaxPrice imposes no price ceiling.
type Criteria struct {
	// Search matches as a case-insensitive substring of the sweet name.
	Search string
	// Category matches case-insensitively and exactly, unless empty or "all".
	Category string
	// MaxPrice keeps sweets with price <= MaxPrice when non-nil.
	MaxPrice *decimal.Decimal
}

// IsZero reports whether the criteria would match every sweet.
func (c Criteria) IsZero() bool {
	return c.Search == "" && (c.Category == "" || strings.EqualFold(c.Category, All)) && c.MaxPrice == nil
}

// Filter returns the sweets matching all three predicates, preserving input
// order. The input slice is never mutated; the result is always a fresh
// slice (possibly empty, never nil).
func Filter(items []domain.Sweet, c Criteria) []domain.Sweet {
	fold := cases.Fold()

	search := fold.String(strings.TrimSpace(c.Search))
	category := strings.TrimSpace(c.Category)
	filterCategory := category != "" && !strings.EqualFold(category, All)
	if filterCategory {
		category = fold.String(category)
	}

	out := make([]domain.Sweet, 0, len(items))
	for _, s := range items {
		if search != "" && !strings.Contains(fold.String(s.Name), search) {
			continue
		}
		if filterCategory && fold.String(s.Category) != category {
			continue
		}
		if c.MaxPrice != nil && s.Price.GreaterThan(*c.MaxPrice) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Categories returns the distinct categories present in the catalog, each
// case-preserved from its first occurrence, prefixed with the synthetic "All"
// entry for UI convenience. Input order determines output order.
func Categories(items []domain.Sweet) []string {
	fold := cases.Fold()

	out := []string{"All"}
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		key := fold.String(s.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}

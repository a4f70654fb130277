// Package domain defines the persistence models for sweets and purchases.
// These types are mapped with GORM and form the core data layer of the
// sweet shop application.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sweet represents a catalog item with a price and a tracked stock quantity.
// Quantity is the only numeric field mutated after creation (by purchases and
// restocks) and must never be observable below zero.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned on creation, immutable.
//   - Name: human-readable product name (required).
//   - Category: product category (required); matching is case-insensitive.
//   - Price: unit price with fixed-precision decimal semantics (never float).
//   - Quantity: units in stock; quantity == 0 means "out of stock".
//   - Description / ImageURL: optional presentation fields.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker. Purchases reference sweets by id only
//     and carry their own name/price snapshot, so deleting a sweet never
//     corrupts recorded history.
type Sweet struct {
	ID          string          `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string          `json:"name"        gorm:"type:varchar(255);not null"`
	Category    string          `json:"category"    gorm:"type:varchar(100);not null;index"`
	Price       decimal.Decimal `json:"price"       gorm:"type:decimal(20,2);not null"`
	Quantity    int64           `json:"quantity"    gorm:"not null;default:0;check:quantity >= 0"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	ImageURL    string          `json:"imageUrl,omitempty"    gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Sweet.
func (Sweet) TableName() string { return "sweets" }

// InStock reports whether at least one unit is available.
func (s Sweet) InStock() bool { return s.Quantity > 0 }

// Purchase is an immutable record of a successful purchase. It is appended
// exactly once per successful stock decrement and is never updated or
// deleted afterwards.
//
// SweetID is a back-reference, not an ownership link: there is deliberately
// no foreign-key constraint, so history survives catalog deletions. The
// record snapshots the sweet's name and unit price at purchase time, which
// decouples history from later price edits.
type Purchase struct {
	ID         string          `json:"id"         gorm:"type:char(36);primaryKey"`
	SweetID    string          `json:"sweet_id"   gorm:"type:char(36);not null;index"`
	SweetName  string          `json:"sweet_name" gorm:"type:varchar(255);not null"`
	UserID     string          `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_purchases,priority:1"`
	Quantity   int64           `json:"quantity"   gorm:"not null;check:quantity > 0"`
	UnitPrice  decimal.Decimal `json:"unit_price"  gorm:"type:decimal(20,2);not null"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(20,2);not null"`
	CreatedAt  time.Time       `json:"created_at"  gorm:"index:idx_user_purchases,priority:2"`
}

// TableName returns the database table name for Purchase.
func (Purchase) TableName() string { return "purchases" }

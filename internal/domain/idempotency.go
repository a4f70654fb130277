// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed purchase
// request, keyed by (user_id, sweet_id, key). It enables safe retries of
// POST /sweets/:id/purchase: an ambiguous failure can be retried with the same
// Idempotency-Key and the originally recorded purchase is returned without
// decrementing stock a second time.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_sweet_key,priority:1"`
	SweetID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_sweet_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_sweet_key,priority:3"`
	PurchaseID string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Seed loading for the sweet catalog.
//
// A deployment can point SEED_PATH at a JSON file describing the initial
// catalog; on startup the file is loaded only when the sweets table is empty,
// so restarts never duplicate rows or clobber admin edits.
package repo

import (
	"context"
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// seedEntry mirrors the JSON shape of one catalog seed record.
type seedEntry struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// SeedCatalog loads sweets from the JSON file at path into an empty catalog.
// It returns the number of rows inserted; a non-empty catalog is left
// untouched and reported as zero inserts.
func SeedCatalog(ctx context.Context, db *gorm.DB, path string) (int, error) {
	count, err := CountSweets(ctx, db)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, err
	}

	inserted := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if _, err := CreateSweet(ctx, tx, SweetFields(e)); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Package services defines the business logic for the sweet catalog, the
// stock ledger, and purchase history. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Catalog validation errors.
var (
	// ErrNameRequired is returned when a sweet is created or updated with an
	// empty name.
	ErrNameRequired = errors.New("name is required")

	// ErrCategoryRequired is returned when a sweet is created or updated with
	// an empty category.
	ErrCategoryRequired = errors.New("category is required")

	// ErrNegativePrice is returned when a price below zero is supplied.
	ErrNegativePrice = errors.New("price must not be negative")

	// ErrNegativeQuantity is returned when a stock quantity below zero is
	// supplied on create or update.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
)

// Catalog and ledger errors.
var (
	// ErrSweetNotFound indicates that the requested sweet does not exist.
	ErrSweetNotFound = errors.New("sweet not found")

	// ErrInsufficientStock is returned when a purchase requests more units
	// than are available. The sweet is left untouched and no purchase record
	// is written.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidPurchaseQuantity is returned when a purchase quantity is not
	// a positive integer.
	ErrInvalidPurchaseQuantity = errors.New("purchase quantity must be a positive integer")

	// ErrInvalidRestockQuantity is returned when a restock quantity is not a
	// positive integer.
	ErrInvalidRestockQuantity = errors.New("restock quantity must be a positive integer")
)

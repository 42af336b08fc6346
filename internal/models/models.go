package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// ValidProductStatus reports whether s is a known product status.
func ValidProductStatus(s string) bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	}
	return false
}

// Product represents a catalog item owned by a store.
type Product struct {
	ID          string          `db:"id" json:"id"`
	StoreID     string          `db:"store_id" json:"store_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ProductPatch is an explicit partial update. Only non-nil fields are
// applied; the store compiles them against a whitelist of mutable columns.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// IsEmpty reports whether no fields were supplied.
func (p *ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Stock == nil && p.Status == nil
}

// Session is the identity attached to an authenticated request,
// as returned by the external identity provider.
type Session struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
}

// ProcessedEvent records a consumed event id for worker idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}

package catalog

import "time"

type Product struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Price           string     `json:"price"` // display string, e.g. "349€"; diparse ke minor units waktu sync
	Images          []string   `json:"images"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory"`
	Available       bool       `json:"available"`
	StripeProductID string     `json:"stripe_product_id"`
	StripePriceID   string     `json:"stripe_price_id"`
	SyncStatus      SyncStatus `json:"sync_status"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

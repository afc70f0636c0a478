package events

import (
	"encoding/json"
	"time"
)

const (
	EventProductChanged = "ProductChanged"
	EventSyncCompleted  = "SyncCompleted"
	EventSyncFailed     = "SyncFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "catalog-sync"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya product_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

// Change kinds yang dipublish admin backend waktu product berubah.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

type ProductChangedPayload struct {
	ProductID string `json:"product_id"`
	Change    string `json:"change"` // created | updated | deleted
	// Diisi untuk deleted: row product sudah hilang waktu job jalan,
	// jadi id provider harus ikut di event.
	StripeProductID string `json:"stripe_product_id,omitempty"`
}

type SyncCompletedPayload struct {
	JobID           string `json:"job_id"`
	ProductID       string `json:"product_id,omitempty"`
	Operation       string `json:"operation"`
	StripeProductID string `json:"stripe_product_id,omitempty"`
	StripePriceID   string `json:"stripe_price_id,omitempty"`
}

type SyncFailedPayload struct {
	JobID      string `json:"job_id"`
	ProductID  string `json:"product_id,omitempty"`
	Operation  string `json:"operation"`
	Error      string `json:"error"`
	RetryCount int    `json:"retry_count"`
	Terminal   bool   `json:"terminal"` // true kalau retry budget habis
}

package syncqueue

import "time"

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// MaxRetries: setelah gagal ke-5 job jadi terminal 'failed',
// selanjutnya butuh re-enqueue manual.
const MaxRetries = 5

// Metadata ikut di row job. Untuk delete job, product row biasanya sudah
// hilang, jadi id provider dibawa di sini.
type Metadata struct {
	StripeProductID string `json:"stripe_product_id,omitempty"`
}

type Job struct {
	ID           string
	ProductID    string
	Operation    Operation
	Status       Status
	RetryCount   int
	NextRetryAt  time.Time
	ErrorMessage string
	Metadata     Metadata
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

type Stats struct {
	Pending          int       `json:"pending"`
	Processing       int       `json:"processing"`
	Completed        int       `json:"completed"`
	Retrying         int       `json:"retrying"`
	Failed           int       `json:"failed"`
	Total            int       `json:"total"`
	OldestPendingAge string    `json:"oldest_pending_age,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

type CleanupResult struct {
	Deleted  int `json:"deleted"`
	Requeued int `json:"requeued"`
}

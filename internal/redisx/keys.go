package redisx

import "time"

const (
	// Dedup consumer event: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Guard supaya queue_all_products tidak jalan dobel dalam waktu dekat.
	KeyEnqueueGuard = "sync:queue_all:guard"

	// Cache hasil get_queue_stats (JSON).
	KeyQueueStats = "sync:queue:stats"
)

var (
	TTLDedup        = 48 * time.Hour
	TTLEnqueueGuard = 10 * time.Second
	TTLStatsCache   = 15 * time.Second
)

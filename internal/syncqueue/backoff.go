package syncqueue

import (
	"math/rand"
	"time"
)

const (
	backoffBase = 30 * time.Second
	backoffCap  = time.Hour
)

// Backoff returns the delay before the next attempt, exponential in the
// number of failures so far, with +/-20% jitter. retryCount = jumlah gagal
// yang sudah terjadi (1 untuk gagal pertama).
func Backoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := backoffBase << (retryCount - 1)
	if d > backoffCap || d <= 0 {
		d = backoffCap
	}
	// jitter biar retry dari batch yang sama tidak barengan semua
	j := time.Duration(rand.Int63n(int64(d)/5+1)) - d/10
	return d + j
}

package usecase

import (
	"strconv"
	"time"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	dashboardCachePrefix   = "dashboard:"
	dashboardVersionPrefix = "dashboard-version:"
)

// IdempotencyPlaceholder is stored under a key while its first request is
// still running.
const IdempotencyPlaceholder = "processing"

// DashboardCacheKey is the cache key of a trip's dashboard computed at the
// given ledger version.
func DashboardCacheKey(tripID string, version int64) string {
	return dashboardCachePrefix + tripID + ":v" + strconv.FormatInt(version, 10)
}

// DashboardVersionKey holds a counter bumped after every committed write to
// a trip's ledger.
func DashboardVersionKey(tripID string) string {
	return dashboardVersionPrefix + tripID
}

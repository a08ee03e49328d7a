package adminstats

import (
	"context"
	"log"
	"sync"
	"time"

	"oficinagil/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	cacheTTL      = 5 * time.Minute
	extraAttempts = 2
	retryBackoff  = 200 * time.Millisecond
)

// Stats is the back-office dashboard aggregate.
type Stats struct {
	TotalUsers          int       `json:"totalUsers"`
	ActiveSubscriptions int       `json:"activeSubscriptions"`
	TrialingUsers       int       `json:"trialingUsers"`
	NewUsersThisMonth   int       `json:"newUsersThisMonth"`
	CollectedAt         time.Time `json:"collected_at"`
}

// UserCounter is the user-store count surface the reporter needs.
type UserCounter interface {
	CountAll(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

// SubscriptionCounter is the subscription-store count surface.
type SubscriptionCounter interface {
	CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error)
}

// Reporter aggregates the four dashboard counts. Results are cached for five
// minutes; each count is retried individually and zero-filled on persistent
// failure so one broken metric never takes down the rest. At most one
// aggregation pass runs at a time.
type Reporter struct {
	users UserCounter
	subs  SubscriptionCounter

	refreshMu sync.Mutex
	mu        sync.RWMutex
	cached    *Stats
	cachedAt  time.Time
}

func NewReporter(users UserCounter, subs SubscriptionCounter) *Reporter {
	return &Reporter{users: users, subs: subs}
}

// GetStats returns the cached aggregate when fresh, otherwise runs (or waits
// for) an aggregation pass.
func (r *Reporter) GetStats(ctx context.Context) *Stats {
	if stats := r.cachedFresh(); stats != nil {
		return stats
	}

	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	// Another caller may have refreshed while this one waited for the lock.
	if stats := r.cachedFresh(); stats != nil {
		return stats
	}
	return r.collectAndPublish(ctx)
}

// Refresh re-runs the aggregation, keeping the cache warm. It is a no-op
// while another pass is already in flight.
func (r *Reporter) Refresh(ctx context.Context) {
	if !r.refreshMu.TryLock() {
		return
	}
	defer r.refreshMu.Unlock()
	r.collectAndPublish(ctx)
}

func (r *Reporter) cachedFresh() *Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached != nil && time.Since(r.cachedAt) < cacheTTL {
		stats := *r.cached
		return &stats
	}
	return nil
}

// collectAndPublish issues the four counts concurrently and publishes the
// combined result once all of them (or their zero fallbacks) settle.
// Callers must hold refreshMu.
func (r *Reporter) collectAndPublish(ctx context.Context) *Stats {
	stats := &Stats{CollectedAt: time.Now()}
	startOfMonth := time.Date(stats.CollectedAt.Year(), stats.CollectedAt.Month(), 1, 0, 0, 0, 0, stats.CollectedAt.Location())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.TotalUsers = countWithRetry(gctx, "total users", r.users.CountAll)
		return nil
	})
	g.Go(func() error {
		stats.ActiveSubscriptions = countWithRetry(gctx, "active subscriptions", func(ctx context.Context) (int, error) {
			return r.subs.CountByStatus(ctx, models.SubscriptionActive)
		})
		return nil
	})
	g.Go(func() error {
		stats.TrialingUsers = countWithRetry(gctx, "trialing users", func(ctx context.Context) (int, error) {
			return r.subs.CountByStatus(ctx, models.SubscriptionTrialing)
		})
		return nil
	})
	g.Go(func() error {
		stats.NewUsersThisMonth = countWithRetry(gctx, "new users this month", func(ctx context.Context) (int, error) {
			return r.users.CountCreatedSince(ctx, startOfMonth)
		})
		return nil
	})
	_ = g.Wait()

	r.mu.Lock()
	r.cached = stats
	r.cachedAt = time.Now()
	r.mu.Unlock()

	result := *stats
	return &result
}

// countWithRetry tries the count up to two extra times, then falls back to
// zero for that metric only.
func countWithRetry(ctx context.Context, name string, count func(ctx context.Context) (int, error)) int {
	var lastErr error
	for attempt := 0; attempt <= extraAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				log.Printf("admin stats: %s count cancelled: %v", name, ctx.Err())
				return 0
			case <-time.After(retryBackoff):
			}
		}
		n, err := count(ctx)
		if err == nil {
			return n
		}
		lastErr = err
	}
	log.Printf("admin stats: %s count failed after retries, reporting 0: %v", name, lastErr)
	return 0
}

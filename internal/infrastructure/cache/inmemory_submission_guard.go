package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vendorhub/console/internal/domain/shared"
)

const defaultGuardCleanupInterval = time.Minute

// InMemorySubmissionGuard implements shared.LeaseStore with a TTL map.
// Leases are only visible to the current process, so it is suitable for
// single-instance deployments and tests.
type InMemorySubmissionGuard struct {
	mu        sync.Mutex
	leases    map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySubmissionGuard creates a guard and starts a goroutine that
// drops expired leases every cleanupInterval
func NewInMemorySubmissionGuard(cleanupInterval time.Duration) *InMemorySubmissionGuard {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultGuardCleanupInterval
	}
	g := &InMemorySubmissionGuard{
		leases:   make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop(cleanupInterval)

	return g
}

// TryAcquire takes the lease for key unless an unexpired one exists
func (g *InMemorySubmissionGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expiresAt, held := g.leases[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	g.leases[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lease for key
func (g *InMemorySubmissionGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.leases, key)
	g.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (g *InMemorySubmissionGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *InMemorySubmissionGuard) cleanupLoop(interval time.Duration) {
	defer g.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemorySubmissionGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, expiresAt := range g.leases {
		if !now.Before(expiresAt) {
			delete(g.leases, key)
		}
	}
}

// Size returns the number of leases currently tracked, expired ones included
func (g *InMemorySubmissionGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.leases)
}

var _ shared.LeaseStore = (*InMemorySubmissionGuard)(nil)

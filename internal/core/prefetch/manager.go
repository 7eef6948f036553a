package prefetch

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"Handlecache/internal/atproto/identity"
)

// Config holds manager settings
type Config struct {
	// Enabled mirrors the user's prefetch preference; a disabled manager ignores every event
	Enabled bool
	// BaseContext parents every dispatched task. Cancelling it aborts in-flight
	// resolutions on shutdown. Defaults to context.Background().
	BaseContext context.Context
	// Metrics is optional
	Metrics *Metrics
}

// Manager keeps the DID -> handle cache filled as pages are visited.
//
// No lock is held across a resolution: two events for the same uncached DID
// both resolve it and both write, and the last full-mapping write wins.
// Both writes carry the same entry, so the cache stays correct.
type Manager struct {
	extractor Extractor
	resolver  HandleResolver
	cache     *HandleCache
	enabled   bool
	baseCtx   context.Context
	metrics   *Metrics

	mu     sync.Mutex
	closed bool
	tasks  sync.WaitGroup
}

// NewManager creates a new resolution cache manager
func NewManager(extractor Extractor, resolver HandleResolver, cache *HandleCache, cfg Config) *Manager {
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	return &Manager{
		extractor: extractor,
		resolver:  resolver,
		cache:     cache,
		enabled:   cfg.Enabled,
		baseCtx:   cfg.BaseContext,
		metrics:   cfg.Metrics,
	}
}

// Dispatch handles ev in its own goroutine and returns immediately.
// The task outlives the tab that triggered it; only the base context cancels it.
func (m *Manager) Dispatch(ev NavigationEvent) {
	if !m.enabled {
		m.metrics.observeOutcome(OutcomeDisabled)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		log.Printf("[PREFETCH] Dropping navigation event for tab %d: manager shut down", ev.TabID)
		return
	}
	m.tasks.Add(1)
	m.mu.Unlock()

	taskID := uuid.NewString()
	m.metrics.taskStarted()
	go func() {
		defer m.tasks.Done()
		defer m.metrics.taskFinished()

		outcome := m.HandleNavigation(m.baseCtx, ev.URL, ev.Status)
		if outcome == OutcomeResolved || outcome == OutcomeResolveFailed ||
			outcome == OutcomeStoreReadFailed || outcome == OutcomeStoreWriteFailed {
			log.Printf("[PREFETCH] task=%s tab=%d outcome=%s", taskID, ev.TabID, outcome)
		}
	}()
}

// Wait blocks until every dispatched task has finished
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Shutdown stops accepting events and waits for in-flight tasks.
// Events dispatched afterwards are dropped.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.tasks.Wait()
}

// HandleNavigation pre-resolves the DID in rawURL once the page has loaded.
// It never returns an error: every failure leaves the cache untouched and is
// logged. The returned Outcome says which branch was taken.
func (m *Manager) HandleNavigation(ctx context.Context, rawURL string, status PageStatus) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PREFETCH] Recovered from panic handling %q: %v", rawURL, r)
			outcome = OutcomePanicked
		}
		m.metrics.observeOutcome(outcome)
	}()

	if !m.enabled {
		return OutcomeDisabled
	}

	if status != StatusComplete {
		return OutcomeIgnoredStatus
	}

	extraction, ok := m.extractor.Extract(rawURL)
	if !ok || extraction.DID == "" {
		return OutcomeNoIdentifier
	}
	// The page already shows the handle, nothing to pre-fetch
	if extraction.Handle != "" {
		return OutcomeHandleKnown
	}
	did := extraction.DID

	cached, err := m.cache.Load(ctx)
	if err != nil {
		log.Printf("[PREFETCH] Failed to load handle cache for %s: %v", did, err)
		return OutcomeStoreReadFailed
	}

	if _, hit := cached[did]; hit {
		return OutcomeCacheHit
	}

	res := m.resolver.ResolveHandle(ctx, did)
	m.metrics.observeResolution(res.Status)

	switch res.Status {
	case identity.StatusResolved:
		if res.Handle == "" {
			return OutcomeUnresolved
		}
	case identity.StatusUnresolved:
		return OutcomeUnresolved
	default:
		log.Printf("[PREFETCH] Failed to resolve handle for %s: %v", did, res.Err)
		return OutcomeResolveFailed
	}

	if err := m.cache.MergeSet(ctx, cached, did, res.Handle); err != nil {
		log.Printf("[PREFETCH] Failed to cache handle %s for %s: %v", res.Handle, did, err)
		return OutcomeStoreWriteFailed
	}

	return OutcomeResolved
}

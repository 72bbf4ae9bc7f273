// Package availability keeps an in-memory snapshot of the streaming
// provider's playable-ID sets, one per content type, refreshed wholesale on
// a TTL. Membership checks never fail: when the provider is down the last
// good snapshot keeps answering, and with no snapshot at all the check
// degrades to "not available" with a reason.
package availability

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cinestream/internal/metrics"
	"cinestream/models"
)

// Result is a membership verdict. Reason is set only when the verdict did
// not come from a fresh membership check (provider unreachable with no
// snapshot to fall back on).
type Result struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// snapshot is an immutable capture of one category's ID set. Readers share
// the pointer; refreshes build a new snapshot and swap it in.
type snapshot struct {
	capturedAt time.Time
	ids        map[string]struct{}
}

type Service struct {
	client *providerClient
	ttl    time.Duration

	mu        sync.RWMutex
	snapshots map[models.ContentType]*snapshot

	now func() time.Time
}

func NewService(baseURL string, ttlMinutes int) *Service {
	return NewServiceWithClient(baseURL, ttlMinutes, nil)
}

// NewServiceWithClient injects an HTTP client, for tests.
func NewServiceWithClient(baseURL string, ttlMinutes int, httpc *http.Client) *Service {
	if ttlMinutes <= 0 {
		ttlMinutes = 30
	}
	return &Service{
		client:    newProviderClient(baseURL, httpc),
		ttl:       time.Duration(ttlMinutes) * time.Minute,
		snapshots: make(map[models.ContentType]*snapshot),
		now:       time.Now,
	}
}

// current returns the category's snapshot, or nil if none was ever captured.
func (s *Service) current(ct models.ContentType) *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[ct]
}

func (s *Service) fresh(snap *snapshot) bool {
	return snap != nil && s.now().Sub(snap.capturedAt) < s.ttl
}

// refresh fetches the category's full ID list and swaps it in. On failure
// the existing snapshot, fresh or stale, is left untouched.
// Two goroutines crossing an expiry boundary may both fetch; the second
// swap just installs an equally fresh set, so the duplicate work is
// accepted rather than coordinated away.
func (s *Service) refresh(ctx context.Context, ct models.ContentType) error {
	ids, err := s.client.fetchIDs(ctx, ct)
	if err != nil {
		metrics.AvailabilityRefreshes.WithLabelValues("error").Inc()
		return err
	}

	s.mu.Lock()
	s.snapshots[ct] = &snapshot{capturedAt: s.now(), ids: ids}
	s.mu.Unlock()

	metrics.AvailabilityRefreshes.WithLabelValues("ok").Inc()
	log.Printf("[availability] refreshed %s snapshot: %d ids", ct, len(ids))
	return nil
}

// IsAvailable reports whether the title is playable right now. It refreshes
// the category snapshot when stale, falls back to the stale set when the
// refresh fails, and only answers "unknown" when no snapshot has ever been
// captured.
func (s *Service) IsAvailable(ctx context.Context, ct models.ContentType, tmdbID int64) Result {
	snap := s.current(ct)
	if !s.fresh(snap) {
		if err := s.refresh(ctx, ct); err != nil {
			log.Printf("[availability] %s refresh failed: %v", ct, err)
			if snap == nil {
				metrics.AvailabilityChecks.WithLabelValues("unknown").Inc()
				return Result{Available: false, Reason: fmt.Sprintf("provider unreachable: %v", err)}
			}
			// Stale set still answers; the verdict a caller saw before the
			// outage is the verdict they see during it.
		} else {
			snap = s.current(ct)
		}
	}

	_, ok := snap.ids[strconv.FormatInt(tmdbID, 10)]
	if ok {
		metrics.AvailabilityChecks.WithLabelValues("available").Inc()
	} else {
		metrics.AvailabilityChecks.WithLabelValues("unavailable").Inc()
	}
	return Result{Available: ok}
}

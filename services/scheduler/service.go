// Package scheduler runs the periodic background work: the metadata repair
// pass and an availability snapshot prewarm, so browse traffic rarely pays
// for a cold refresh.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"cinestream/models"
	"cinestream/services/availability"
	"cinestream/services/catalog"
)

type metadataSyncer interface {
	RefreshMetadata(ctx context.Context, batchSize int) catalog.SyncReport
}

type availabilityChecker interface {
	IsAvailable(ctx context.Context, ct models.ContentType, tmdbID int64) availability.Result
}

type Service struct {
	syncer    metadataSyncer
	avail     availabilityChecker
	interval  time.Duration
	batchSize int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewService(syncer metadataSyncer, avail availabilityChecker, intervalHours, batchSize int) *Service {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &Service{
		syncer:    syncer,
		avail:     avail,
		interval:  time.Duration(intervalHours) * time.Hour,
		batchSize: batchSize,
	}
}

// Start begins the background loop. Idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx)
	log.Printf("[scheduler] started (sync every %s)", s.interval)
}

// Stop cancels the loop and waits for in-flight work, bounded by ctx.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Printf("[scheduler] stopped")
	case <-ctx.Done():
		log.Printf("[scheduler] stopped (timeout waiting for tasks)")
	}
	s.running = false
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	// Prewarm availability snapshots right away so the first resolve
	// doesn't block on a cold fetch.
	s.prewarm(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSync(ctx)
			s.prewarm(ctx)
		}
	}
}

func (s *Service) runSync(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	report := s.syncer.RefreshMetadata(runCtx, s.batchSize)
	log.Printf("[scheduler] metadata sync: scanned=%d updated=%d failed=%d",
		report.Scanned, report.Updated, report.Failed)
}

func (s *Service) prewarm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	for _, ct := range []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries} {
		// Any membership check forces a snapshot when none is live.
		s.avail.IsAvailable(warmCtx, ct, 0)
	}
}

package catalog

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"

	"cinestream/models"
)

// SyncReport summarizes one metadata repair pass.
type SyncReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// RefreshMetadata re-fetches provider metadata for a bounded batch of the
// most recent stored items per content type and rewrites their mutable
// fields. Meant to run periodically so titles picked up at sync time don't
// drift from the provider (artwork swaps, rating changes, relabeled
// genres). Individual failures are logged and counted, never fatal.
func (s *Service) RefreshMetadata(ctx context.Context, batchSize int) SyncReport {
	if batchSize <= 0 {
		batchSize = 50
	}

	var scanned, updated, failed atomic.Int64

	for _, ct := range []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries} {
		items, err := s.repo.List(ctx, ct, batchSize)
		if err != nil {
			log.Printf("[catalog] repair pass: listing %s failed: %v", ct, err)
			continue
		}

		p := pool.New().WithMaxGoroutines(4)
		for _, item := range items {
			item := item
			p.Go(func() {
				scanned.Add(1)
				if err := s.refreshItem(ctx, item); err != nil {
					failed.Add(1)
					log.Printf("[catalog] repair pass: %s/%d: %v", item.Type, item.TMDBID, err)
					return
				}
				updated.Add(1)
			})
		}
		p.Wait()
	}

	report := SyncReport{
		Scanned: int(scanned.Load()),
		Updated: int(updated.Load()),
		Failed:  int(failed.Load()),
	}
	log.Printf("[catalog] repair pass done: scanned=%d updated=%d failed=%d",
		report.Scanned, report.Updated, report.Failed)
	return report
}

func (s *Service) refreshItem(ctx context.Context, item *models.CatalogItem) error {
	var meta *models.TitleMetadata
	err := retry.Do(
		func() error {
			var err error
			meta, err = s.metadata.Details(ctx, item.Type, item.TMDBID)
			return err
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	item.Title = meta.Title
	item.Overview = meta.Overview
	item.PosterPath = meta.PosterPath
	item.BackdropPath = meta.BackdropPath
	item.Slug = slugify(meta.Title)
	item.ReleaseYear = meta.ReleaseYear()
	item.Rating = meta.Rating
	item.Genres = meta.Genres
	return s.repo.UpdateMetadata(ctx, item)
}

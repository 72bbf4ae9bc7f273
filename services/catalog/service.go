// Package catalog resolves external title identifiers into locally stored
// catalog items and serves the stored collections for browse pages.
package catalog

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"

	"cinestream/internal/database"
	"cinestream/internal/metrics"
	"cinestream/models"
	"cinestream/services/availability"
)

// MetadataProvider is the slice of the metadata service the resolver needs.
type MetadataProvider interface {
	Details(ctx context.Context, ct models.ContentType, tmdbID int64) (*models.TitleMetadata, error)
}

// AvailabilityChecker gates first-time syncs on provider playability.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, ct models.ContentType, tmdbID int64) availability.Result
}

type Service struct {
	repo     *database.CatalogRepository
	metadata MetadataProvider
	avail    AvailabilityChecker

	now func() time.Time
}

func NewService(repo *database.CatalogRepository, metadata MetadataProvider, avail AvailabilityChecker) *Service {
	return &Service{repo: repo, metadata: metadata, avail: avail, now: time.Now}
}

// finalStatuses are the provider statuses considered done enough to sync.
// Anything still in production or announced-only stays out of the catalog.
var finalStatuses = map[string]struct{}{
	"Released":         {},
	"Returning Series": {},
	"Ended":            {},
}

func (s *Service) eligible(meta *models.TitleMetadata) bool {
	if !meta.Released(s.now()) {
		return false
	}
	_, ok := finalStatuses[meta.Status]
	return ok
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL slug from a title, transliterating non-ASCII first.
func slugify(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Resolve maps an external identifier onto the local catalog identifier,
// syncing the title on first sight. A title that cannot be resolved, for
// whatever reason (unknown upstream, not yet released, not playable, or a
// transient failure), yields an empty identifier with the cause logged;
// callers only distinguish "have an id" from "don't".
func (s *Service) Resolve(ctx context.Context, ct models.ContentType, tmdbID int64) string {
	existing, err := s.repo.FindByExternalID(ctx, ct, tmdbID)
	if err != nil {
		log.Printf("[catalog] lookup failed for %s/%d: %v", ct, tmdbID, err)
		metrics.Resolutions.WithLabelValues("error").Inc()
		return ""
	}
	if existing != nil {
		metrics.Resolutions.WithLabelValues("hit").Inc()
		return existing.ID
	}

	meta, err := s.metadata.Details(ctx, ct, tmdbID)
	if err != nil {
		log.Printf("[catalog] metadata fetch failed for %s/%d: %v", ct, tmdbID, err)
		metrics.Resolutions.WithLabelValues("error").Inc()
		return ""
	}

	if !s.eligible(meta) {
		log.Printf("[catalog] %s/%d not eligible (status=%q, release=%q)", ct, tmdbID, meta.Status, meta.ReleaseDate)
		metrics.Resolutions.WithLabelValues("ineligible").Inc()
		return ""
	}

	if res := s.avail.IsAvailable(ctx, ct, tmdbID); !res.Available {
		log.Printf("[catalog] %s/%d not playable, skipping sync", ct, tmdbID)
		metrics.Resolutions.WithLabelValues("unavailable").Inc()
		return ""
	}

	item := &models.CatalogItem{
		ID:           uuid.NewString(),
		TMDBID:       tmdbID,
		Type:         ct,
		Title:        meta.Title,
		Overview:     meta.Overview,
		PosterPath:   meta.PosterPath,
		BackdropPath: meta.BackdropPath,
		Slug:         slugify(meta.Title),
		ReleaseYear:  meta.ReleaseYear(),
		Rating:       meta.Rating,
		Genres:       meta.Genres,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		log.Printf("[catalog] sync failed for %s/%d: %v", ct, tmdbID, err)
		metrics.Resolutions.WithLabelValues("error").Inc()
		return ""
	}

	// Re-query instead of trusting our own insert: a concurrent resolver may
	// have won the uniqueness race, and its identifier is the canonical one.
	stored, err := s.repo.FindByExternalID(ctx, ct, tmdbID)
	if err != nil || stored == nil {
		log.Printf("[catalog] post-sync lookup failed for %s/%d: %v", ct, tmdbID, err)
		metrics.Resolutions.WithLabelValues("error").Inc()
		return ""
	}
	metrics.Resolutions.WithLabelValues("synced").Inc()
	return stored.ID
}

// GetByLocalID fetches a stored item by its local identifier, either type.
// Returns (nil, nil) when absent.
func (s *Service) GetByLocalID(ctx context.Context, id string) (*models.CatalogItem, error) {
	return s.repo.FindByLocalID(ctx, id)
}

// List returns stored items of one content type, newest first.
func (s *Service) List(ctx context.Context, ct models.ContentType, limit int) ([]*models.CatalogItem, error) {
	return s.repo.List(ctx, ct, limit)
}

// Package metadata fetches title details from TMDB, fronted by a TTL file
// cache so repeated lookups inside the window stay off the network.
package metadata

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"cinestream/internal/metrics"
	"cinestream/models"
)

type Service struct {
	tmdb  *tmdbClient
	cache *responseCache

	ttlHours int
}

func NewService(apiKey, language, cacheDir string, ttlHours int) *Service {
	return &Service{
		tmdb:     newTMDBClient(apiKey, language, &http.Client{}),
		cache:    newResponseCache(filepath.Join(cacheDir, "metadata"), ttlHours),
		ttlHours: ttlHours,
	}
}

// NewServiceWithClient injects an HTTP client, for tests.
func NewServiceWithClient(apiKey, language, cacheDir string, ttlHours int, httpc *http.Client) *Service {
	return &Service{
		tmdb:     newTMDBClient(apiKey, language, httpc),
		cache:    newResponseCache(filepath.Join(cacheDir, "metadata"), ttlHours),
		ttlHours: ttlHours,
	}
}

// UpdateAPIKey swaps the provider credentials and drops cached responses so
// fresh data is fetched under the new key.
func (s *Service) UpdateAPIKey(apiKey, language string) {
	s.tmdb = newTMDBClient(apiKey, language, s.tmdb.httpc)
	if err := s.cache.clear(); err != nil {
		log.Printf("[metadata] warning: failed to clear cache: %v", err)
	} else {
		log.Printf("[metadata] cleared response cache after API key change")
	}
}

// Details returns the provider metadata for one title, from cache when the
// entry is still inside its TTL.
func (s *Service) Details(ctx context.Context, ct models.ContentType, tmdbID int64) (*models.TitleMetadata, error) {
	if tmdbID <= 0 {
		return nil, fmt.Errorf("invalid tmdb id %d", tmdbID)
	}

	key := cacheKey("details", string(ct), fmt.Sprintf("%d", tmdbID))
	var cached models.TitleMetadata
	if s.cache.get(key, &cached) {
		metrics.MetadataCacheHits.Inc()
		return &cached, nil
	}
	metrics.MetadataCacheMisses.Inc()

	meta, err := s.tmdb.fetchDetails(ctx, ct, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%d details: %w", ct, tmdbID, err)
	}
	metrics.MetadataFetches.Inc()

	if err := s.cache.set(key, meta); err != nil {
		log.Printf("[metadata] failed to cache details for %s/%d: %v", ct, tmdbID, err)
	}
	return meta, nil
}

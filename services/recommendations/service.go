// Package recommendations tracks per-profile genre interest. The signal is
// advisory: writes are fire-and-forget from the caller's point of view and
// a lost increment only costs a little personalization.
package recommendations

import (
	"context"
	"errors"
	"log"
	"time"

	"cinestream/internal/database"
	"cinestream/internal/metrics"
)

var ErrProfileRequired = errors.New("profile id is required")

type Service struct {
	repo *database.PreferenceRepository
}

func NewService(repo *database.PreferenceRepository) *Service {
	return &Service{repo: repo}
}

// TrackInterest bumps the profile's score for every listed genre by one.
// An empty genre list is a successful no-op. All listed genres land
// atomically or none do.
func (s *Service) TrackInterest(ctx context.Context, profileID string, genres []string) error {
	if profileID == "" {
		return ErrProfileRequired
	}
	if len(genres) == 0 {
		return nil
	}

	if err := s.repo.IncrementGenres(ctx, profileID, genres); err != nil {
		metrics.PreferenceWrites.WithLabelValues("error").Inc()
		return err
	}
	metrics.PreferenceWrites.WithLabelValues("ok").Inc()
	return nil
}

// TrackInterestAsync runs TrackInterest off the request path. The write
// gets its own context so it survives the response being sent; failures
// are logged, not reported.
func (s *Service) TrackInterestAsync(profileID string, genres []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.TrackInterest(ctx, profileID, genres); err != nil {
			log.Printf("[recommendations] interest tracking failed for profile %s: %v", profileID, err)
		}
	}()
}

// GetPreferences returns the profile's genre scores, nil when the profile
// has no tracked interest yet.
func (s *Service) GetPreferences(ctx context.Context, profileID string) (map[string]int, error) {
	if profileID == "" {
		return nil, ErrProfileRequired
	}
	return s.repo.GetScores(ctx, profileID)
}

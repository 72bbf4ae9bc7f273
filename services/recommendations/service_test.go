package recommendations

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"cinestream/internal/database"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewService(database.NewPreferenceRepository(db.Connection()))
}

func TestTrackInterest_IncrementsScores(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.TrackInterest(ctx, "profile-1", []string{"Action", "Drama"}); err != nil {
		t.Fatalf("TrackInterest failed: %v", err)
	}
	if err := svc.TrackInterest(ctx, "profile-1", []string{"Action"}); err != nil {
		t.Fatalf("TrackInterest failed: %v", err)
	}

	scores, err := svc.GetPreferences(ctx, "profile-1")
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if scores["Action"] != 2 || scores["Drama"] != 1 {
		t.Errorf("unexpected scores: %v", scores)
	}
}

func TestTrackInterest_EmptyGenresIsNoOp(t *testing.T) {
	svc := setupService(t)

	if err := svc.TrackInterest(context.Background(), "profile-1", nil); err != nil {
		t.Fatalf("expected empty genre list to succeed, got: %v", err)
	}

	scores, _ := svc.GetPreferences(context.Background(), "profile-1")
	if scores != nil {
		t.Errorf("expected no scores after no-op, got %v", scores)
	}
}

func TestTrackInterest_MissingProfileIsError(t *testing.T) {
	svc := setupService(t)

	err := svc.TrackInterest(context.Background(), "", []string{"Action"})
	if !errors.Is(err, ErrProfileRequired) {
		t.Errorf("expected ErrProfileRequired, got: %v", err)
	}
}

func TestGetPreferences_NoDataReturnsNil(t *testing.T) {
	svc := setupService(t)

	scores, err := svc.GetPreferences(context.Background(), "fresh-profile")
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if scores != nil {
		t.Errorf("expected nil for untracked profile, got %v", scores)
	}
}

func TestGetPreferences_MissingProfileIsError(t *testing.T) {
	svc := setupService(t)

	if _, err := svc.GetPreferences(context.Background(), ""); !errors.Is(err, ErrProfileRequired) {
		t.Errorf("expected ErrProfileRequired, got: %v", err)
	}
}

func TestTrackInterest_ConcurrentCallsAllLand(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	const calls = 20
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.TrackInterest(ctx, "racer", []string{"Thriller"}); err != nil {
				t.Errorf("TrackInterest failed: %v", err)
			}
		}()
	}
	wg.Wait()

	scores, _ := svc.GetPreferences(ctx, "racer")
	if scores["Thriller"] != calls {
		t.Errorf("expected %d increments, got %d", calls, scores["Thriller"])
	}
}

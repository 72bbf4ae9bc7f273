package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProfileID_HeaderWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/preferences?profileId=query-profile", nil)
	req.Header.Set(ProfileIDHeader, "header-profile")
	if got := ProfileID(req); got != "header-profile" {
		t.Errorf("expected header to win, got %q", got)
	}
}

func TestProfileID_QueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/preferences?profileId=query-profile", nil)
	if got := ProfileID(req); got != "query-profile" {
		t.Errorf("expected query fallback, got %q", got)
	}
}

func TestProfileID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
	if got := ProfileID(req); got != "" {
		t.Errorf("expected empty profile, got %q", got)
	}
}

func maintenanceHandler(secret string) http.Handler {
	mw := MaintenanceSecretMiddleware(func() string { return secret })
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMaintenanceSecret_BearerAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance/sync-metadata", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	maintenanceHandler("s3cret").ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid bearer, got %d", rec.Code)
	}
}

func TestMaintenanceSecret_QueryAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance/sync-metadata?secret=s3cret", nil)
	rec := httptest.NewRecorder()
	maintenanceHandler("s3cret").ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid query secret, got %d", rec.Code)
	}
}

func TestMaintenanceSecret_WrongSecretRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance/sync-metadata", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	maintenanceHandler("s3cret").ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong secret, got %d", rec.Code)
	}
}

func TestMaintenanceSecret_UnconfiguredDisablesEndpoint(t *testing.T) {
	// No secret configured means nobody gets in, not everybody.
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance/sync-metadata", nil)
	rec := httptest.NewRecorder()
	maintenanceHandler("").ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with no configured secret, got %d", rec.Code)
	}
}

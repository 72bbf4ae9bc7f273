package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"cinestream/api"
	recommendationspkg "cinestream/services/recommendations"
)

type recommendationsService interface {
	TrackInterestAsync(profileID string, genres []string)
	GetPreferences(ctx context.Context, profileID string) (map[string]int, error)
}

var _ recommendationsService = (*recommendationspkg.Service)(nil)

type RecommendationsHandler struct {
	Service recommendationsService
}

func NewRecommendationsHandler(svc recommendationsService) *RecommendationsHandler {
	return &RecommendationsHandler{Service: svc}
}

type trackRequest struct {
	Genres []string `json:"genres"`
}

// Track records genre interest for the acting profile. The response is sent
// before the write lands; a dropped signal is invisible to the client by
// design, so 202 is the honest status.
func (h *RecommendationsHandler) Track(w http.ResponseWriter, r *http.Request) {
	profileID := api.ProfileID(r)
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "profile id is required")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.Service.TrackInterestAsync(profileID, req.Genres)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Preferences returns the acting profile's genre scores. A profile with no
// tracked interest gets a null scores field.
func (h *RecommendationsHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	profileID := api.ProfileID(r)
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "profile id is required")
		return
	}

	scores, err := h.Service.GetPreferences(r.Context(), profileID)
	if err != nil {
		log.Printf("[handlers] preferences lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinestream/models"
	"cinestream/services/availability"
	catalogpkg "cinestream/services/catalog"
	"cinestream/services/rotation"
)

type catalogService interface {
	Resolve(ctx context.Context, ct models.ContentType, tmdbID int64) string
	GetByLocalID(ctx context.Context, id string) (*models.CatalogItem, error)
	List(ctx context.Context, ct models.ContentType, limit int) ([]*models.CatalogItem, error)
}

var _ catalogService = (*catalogpkg.Service)(nil)

type availabilityService interface {
	IsAvailable(ctx context.Context, ct models.ContentType, tmdbID int64) availability.Result
}

var _ availabilityService = (*availability.Service)(nil)

type CatalogHandler struct {
	Service catalogService
	Avail   availabilityService
}

func NewCatalogHandler(svc catalogService, avail availabilityService) *CatalogHandler {
	return &CatalogHandler{Service: svc, Avail: avail}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseTypeParam reads and validates the ?type= query parameter.
func parseTypeParam(r *http.Request) (models.ContentType, bool) {
	ct, err := models.ParseContentType(r.URL.Query().Get("type"))
	return ct, err == nil
}

// BrowseResponse carries an ordered browse row plus the seed that ordered
// it, so clients can tell when the rotation window has turned over.
type BrowseResponse struct {
	Items []*models.CatalogItem `json:"items"`
	Seed  int64                 `json:"seed"`
}

// Browse lists stored items of one type in a deterministic order.
// sort=rotate (default) shuffles the whole row per rotation window;
// sort=stable gives each item a window-stable position that survives
// catalog inserts. window is in hours and may be fractional.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseTypeParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid or missing type")
		return
	}

	q := r.URL.Query()
	windowHours := 24.0
	if raw := q.Get("window"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid window")
			return
		}
		windowHours = parsed
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.Service.List(r.Context(), ct, limit)
	if err != nil {
		log.Printf("[handlers] browse list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list catalog")
		return
	}

	seed := rotation.Seed(windowHours, q.Get("salt"))
	switch strings.ToLower(strings.TrimSpace(q.Get("sort"))) {
	case "", "rotate":
		items = rotation.Shuffle(items, seed)
	case "stable":
		items = rotation.StableSort(items, seed, func(it *models.CatalogItem) string { return it.ID })
	default:
		writeError(w, http.StatusBadRequest, "invalid sort")
		return
	}

	if items == nil {
		items = []*models.CatalogItem{}
	}
	writeJSON(w, http.StatusOK, BrowseResponse{Items: items, Seed: seed})
}

// Resolve maps an external identifier onto a local one, syncing the title
// on first sight. Titles that cannot be resolved are a plain 404; the
// cause lives in the logs, not the response.
func (h *CatalogHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseTypeParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid or missing type")
		return
	}
	tmdbID, err := strconv.ParseInt(r.URL.Query().Get("tmdbId"), 10, 64)
	if err != nil || tmdbID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid tmdbId")
		return
	}

	id := h.Service.Resolve(r.Context(), ct, tmdbID)
	if id == "" {
		writeError(w, http.StatusNotFound, "title not resolvable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Item fetches a stored item by its local identifier.
func (h *CatalogHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	item, err := h.Service.GetByLocalID(r.Context(), id)
	if err != nil {
		log.Printf("[handlers] item lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Availability reports the provider playability verdict for one title.
// Always 200: "not available" is an answer, not an error.
func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseTypeParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid or missing type")
		return
	}
	tmdbID, err := strconv.ParseInt(r.URL.Query().Get("tmdbId"), 10, 64)
	if err != nil || tmdbID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid tmdbId")
		return
	}

	writeJSON(w, http.StatusOK, h.Avail.IsAvailable(r.Context(), ct, tmdbID))
}

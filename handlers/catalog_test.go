package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinestream/models"
	"cinestream/services/availability"
)

type fakeCatalog struct {
	items   map[string]*models.CatalogItem
	listed  []*models.CatalogItem
	listErr error
	resolve map[int64]string
}

func (f *fakeCatalog) Resolve(ctx context.Context, ct models.ContentType, tmdbID int64) string {
	return f.resolve[tmdbID]
}

func (f *fakeCatalog) GetByLocalID(ctx context.Context, id string) (*models.CatalogItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items[id], nil
}

func (f *fakeCatalog) List(ctx context.Context, ct models.ContentType, limit int) ([]*models.CatalogItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && limit < len(f.listed) {
		return f.listed[:limit], nil
	}
	return f.listed, nil
}

type fakeAvailability struct {
	result availability.Result
}

func (f *fakeAvailability) IsAvailable(ctx context.Context, ct models.ContentType, tmdbID int64) availability.Result {
	return f.result
}

func browseItems(n int) []*models.CatalogItem {
	items := make([]*models.CatalogItem, n)
	for i := range items {
		items[i] = &models.CatalogItem{ID: string(rune('a' + i)), Type: models.ContentTypeMovie}
	}
	return items
}

func TestBrowse_RotateIsDeterministic(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{listed: browseItems(8)}, &fakeAvailability{})

	do := func() BrowseResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/browse?type=movie&sort=rotate&window=24&salt=trending", nil)
		rec := httptest.NewRecorder()
		h.Browse(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp BrowseResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp
	}

	first := do()
	second := do()
	assert.Equal(t, first.Seed, second.Seed)
	assert.Equal(t, first.Items, second.Items, "same window must give same order")
	assert.Len(t, first.Items, 8)
}

func TestBrowse_SaltsOrderIndependently(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{listed: browseItems(8)}, &fakeAvailability{})

	do := func(salt string) BrowseResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/browse?type=movie&salt="+salt, nil)
		rec := httptest.NewRecorder()
		h.Browse(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp BrowseResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp
	}

	trending := do("trending")
	newest := do("newest")
	assert.NotEqual(t, trending.Seed, newest.Seed)
}

func TestBrowse_StableSortAccepted(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{listed: browseItems(5)}, &fakeAvailability{})

	req := httptest.NewRequest(http.MethodGet, "/api/browse?type=movie&sort=stable", nil)
	rec := httptest.NewRecorder()
	h.Browse(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BrowseResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Items, 5)
}

func TestBrowse_BadInputs(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{listed: browseItems(3)}, &fakeAvailability{})

	cases := map[string]string{
		"missing type":   "/api/browse",
		"unknown type":   "/api/browse?type=podcast",
		"bad sort":       "/api/browse?type=movie&sort=random",
		"zero window":    "/api/browse?type=movie&window=0",
		"negative hours": "/api/browse?type=movie&window=-2",
	}
	for name, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.Browse(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestBrowse_EmptyCatalogIsEmptyArray(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, &fakeAvailability{})

	req := httptest.NewRequest(http.MethodGet, "/api/browse?type=movie", nil)
	rec := httptest.NewRecorder()
	h.Browse(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestBrowse_ListFailureIs500(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{listErr: errors.New("db closed")}, &fakeAvailability{})

	req := httptest.NewRequest(http.MethodGet, "/api/browse?type=movie", nil)
	rec := httptest.NewRecorder()
	h.Browse(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResolve_Found(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{resolve: map[int64]string{603: "local-uuid"}}, &fakeAvailability{})

	req := httptest.NewRequest(http.MethodGet, "/api/resolve?type=movie&tmdbId=603", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "local-uuid", body["id"])
}

func TestResolve_UnresolvableIs404(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{resolve: map[int64]string{}}, &fakeAvailability{})

	req := httptest.NewRequest(http.MethodGet, "/api/resolve?type=movie&tmdbId=999", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolve_BadID(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, &fakeAvailability{})

	for _, target := range []string{
		"/api/resolve?type=movie",
		"/api/resolve?type=movie&tmdbId=abc",
		"/api/resolve?type=movie&tmdbId=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestItem_FoundAndMissing(t *testing.T) {
	stored := &models.CatalogItem{ID: "local-uuid", Title: "The Matrix", Type: models.ContentTypeMovie}
	h := NewCatalogHandler(&fakeCatalog{items: map[string]*models.CatalogItem{"local-uuid": stored}}, &fakeAvailability{})

	router := mux.NewRouter()
	router.HandleFunc("/api/items/{id}", h.Item)

	req := httptest.NewRequest(http.MethodGet, "/api/items/local-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Matrix")

	req = httptest.NewRequest(http.MethodGet, "/api/items/unknown", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailability_VerdictPassesThrough(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, &fakeAvailability{result: availability.Result{Available: true}})

	req := httptest.NewRequest(http.MethodGet, "/api/availability?type=movie&tmdbId=603", nil)
	rec := httptest.NewRecorder()
	h.Availability(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res availability.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.True(t, res.Available)
}

func TestAvailability_UnknownVerdictStill200(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, &fakeAvailability{result: availability.Result{Available: false, Reason: "provider unreachable"}})

	req := httptest.NewRequest(http.MethodGet, "/api/availability?type=movie&tmdbId=603", nil)
	rec := httptest.NewRecorder()
	h.Availability(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res availability.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.False(t, res.Available)
	assert.NotEmpty(t, res.Reason)
}

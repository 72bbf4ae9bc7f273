package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cinestream/models"
)

// Minimal TMDB v3 client (detail endpoints only).

const tmdbBaseURL = "https://api.themoviedb.org/3"

type tmdbClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if language == "" {
		language = "en-US"
	}
	return &tmdbClient{
		apiKey:   apiKey,
		language: language,
		baseURL:  tmdbBaseURL,
		httpc:    httpc,
	}
}

type tmdbDetailResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"` // movies
	Name         string  `json:"name"`  // tv
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`   // movies
	FirstAirDate string  `json:"first_air_date"` // tv
	Status       string  `json:"status"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func (c *tmdbClient) doGET(ctx context.Context, path string, v any) error {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("tmdb: %s not found", path)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("tmdb request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// fetchDetails retrieves the detail record for one title.
func (c *tmdbClient) fetchDetails(ctx context.Context, ct models.ContentType, tmdbID int64) (*models.TitleMetadata, error) {
	var path string
	switch ct {
	case models.ContentTypeMovie:
		path = fmt.Sprintf("/movie/%d", tmdbID)
	case models.ContentTypeSeries:
		path = fmt.Sprintf("/tv/%d", tmdbID)
	default:
		return nil, fmt.Errorf("unknown content type %q", ct)
	}

	var raw tmdbDetailResponse
	if err := c.doGET(ctx, path, &raw); err != nil {
		return nil, err
	}

	meta := &models.TitleMetadata{
		TMDBID:       raw.ID,
		Type:         ct,
		Title:        raw.Title,
		Overview:     raw.Overview,
		PosterPath:   raw.PosterPath,
		BackdropPath: raw.BackdropPath,
		ReleaseDate:  raw.ReleaseDate,
		Status:       raw.Status,
		Rating:       raw.VoteAverage,
	}
	if ct == models.ContentTypeSeries {
		meta.Title = raw.Name
		meta.ReleaseDate = raw.FirstAirDate
	}
	for _, g := range raw.Genres {
		meta.Genres = append(meta.Genres, g.Name)
	}
	return meta, nil
}

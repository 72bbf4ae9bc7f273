package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cinestream/models"
)

// providerClient fetches the full playable-ID list per category from the
// streaming provider. The list endpoint is the only integration point; the
// provider has no per-title lookup worth calling.
type providerClient struct {
	baseURL string
	httpc   *http.Client
}

func newProviderClient(baseURL string, httpc *http.Client) *providerClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &providerClient{baseURL: baseURL, httpc: httpc}
}

// categoryFor maps a content type onto the provider's category names.
func categoryFor(ct models.ContentType) string {
	if ct == models.ContentTypeSeries {
		return "serie"
	}
	return "movie"
}

// fetchIDs retrieves the provider's complete ID list for one category. The
// provider is loose about element types (numbers and strings mixed), so the
// response is normalized into a string set.
func (c *providerClient) fetchIDs(ctx context.Context, ct models.ContentType) (map[string]struct{}, error) {
	q := url.Values{}
	q.Set("category", categoryFor(ct))
	q.Set("type", "tmdb")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/lista?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s list: %w", ct, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider list request failed: %s", resp.Status)
	}

	var raw []any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", ct, err)
	}

	ids := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case string:
			if id != "" {
				ids[id] = struct{}{}
			}
		case float64:
			ids[strconv.FormatInt(int64(id), 10)] = struct{}{}
		}
	}
	return ids, nil
}

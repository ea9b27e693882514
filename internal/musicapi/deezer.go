package musicapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultDeezerBaseURL = "https://api.deezer.com"

// DeezerClient searches the public Deezer catalog. No credentials are needed.
type DeezerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDeezerClient creates a Deezer client. An empty baseURL selects the public API.
func NewDeezerClient(baseURL string, timeout time.Duration) *DeezerClient {
	if baseURL == "" {
		baseURL = defaultDeezerBaseURL
	}
	return &DeezerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeoutOrDefault(timeout),
		},
	}
}

// Deezer API response structures
type deezerSearchResponse struct {
	Data  []deezerTrack `json:"data"`
	Error *deezerError  `json:"error,omitempty"`
}

type deezerTrack struct {
	ID      int64        `json:"id"`
	Title   string       `json:"title"`
	Preview string       `json:"preview"`
	Artist  deezerArtist `json:"artist"`
	Album   deezerAlbum  `json:"album"`
}

type deezerArtist struct {
	Name string `json:"name"`
}

type deezerAlbum struct {
	CoverMedium string `json:"cover_medium"`
}

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Provider reports ProviderDeezer.
func (c *DeezerClient) Provider() MusicProvider {
	return ProviderDeezer
}

// SearchTracks searches for tracks by title or artist
func (c *DeezerClient) SearchTracks(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("deezer", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, unavailable("deezer", fmt.Errorf("%s - %s", resp.Status, string(body)))
	}

	var payload deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, unavailable("deezer", fmt.Errorf("decode response: %w", err))
	}
	if payload.Error != nil {
		return nil, unavailable("deezer", fmt.Errorf("%s (%d): %s", payload.Error.Type, payload.Error.Code, payload.Error.Message))
	}

	results := make([]SearchResult, 0, len(payload.Data))
	for _, item := range payload.Data {
		result := SearchResult{
			ExternalID:          strconv.FormatInt(item.ID, 10),
			Title:               item.Title,
			ArtistOrChannel:     item.Artist.Name,
			CoverOrThumbnailURL: item.Album.CoverMedium,
		}
		if item.Preview != "" {
			preview := item.Preview
			result.PreviewURL = &preview
		}
		results = append(results, result)
	}
	return results, nil
}

package musicapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"
)

const defaultMusixmatchBaseURL = "https://api.musixmatch.com/ws/1.1"

// MusixmatchClient fetches lyrics through matcher.lyrics.get.
type MusixmatchClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewMusixmatchClient creates a Musixmatch client. An empty baseURL selects the public API.
func NewMusixmatchClient(apiKey, baseURL string, timeout time.Duration) *MusixmatchClient {
	if baseURL == "" {
		baseURL = defaultMusixmatchBaseURL
	}
	return &MusixmatchClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeoutOrDefault(timeout),
		},
	}
}

// Enabled reports whether an API key is configured.
func (c *MusixmatchClient) Enabled() bool {
	return c.apiKey != ""
}

// Lyrics returns the lyrics body for a song, or LyricsNotFound when
// Musixmatch has no match.
func (c *MusixmatchClient) Lyrics(ctx context.Context, artist, track string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: MUSIXMATCH_API_KEY is not set", ErrMisconfigured)
	}

	params := url.Values{}
	params.Set("q_artist", artist)
	params.Set("q_track", track)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/matcher.lyrics.get?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable("musixmatch", redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", unavailable("musixmatch", fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("musixmatch", fmt.Errorf("read response: %w", err))
	}

	j, err := gabs.ParseJSON(body)
	if err != nil {
		return "", unavailable("musixmatch", fmt.Errorf("decode response: %w", err))
	}

	status, ok := j.Path("message.header.status_code").Data().(float64)
	if !ok {
		return "", unavailable("musixmatch", fmt.Errorf("response has no status_code"))
	}

	switch int(status) {
	case http.StatusOK:
		lyrics, _ := j.Path("message.body.lyrics.lyrics_body").Data().(string)
		if strings.TrimSpace(lyrics) == "" {
			return LyricsNotFound, nil
		}
		return lyrics, nil
	case http.StatusNotFound:
		return LyricsNotFound, nil
	default:
		return "", unavailable("musixmatch", fmt.Errorf("status_code %d", int(status)))
	}
}

// redact keeps the API key out of transport errors, which embed the request URL.
func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), secret, "REDACTED"))
}

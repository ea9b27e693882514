package musicapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MusicProvider names an external catalog the proxy can search.
type MusicProvider string

const (
	ProviderDeezer  MusicProvider = "deezer"
	ProviderYouTube MusicProvider = "youtube"
)

// LyricsNotFound is returned as a successful lyrics body when the provider has no match.
const LyricsNotFound = "Lyrics not found."

// DefaultRequestTimeout bounds every outbound provider call.
const DefaultRequestTimeout = 10 * time.Second

var (
	// ErrProviderUnavailable covers transport failures, error statuses and undecodable bodies.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMisconfigured indicates a required credential or setting is missing.
	ErrMisconfigured = errors.New("provider misconfigured")
)

// SearchResult is a provider match reshaped into the service schema.
type SearchResult struct {
	ExternalID          string  `json:"external_id"`
	Title               string  `json:"title"`
	ArtistOrChannel     string  `json:"artist_or_channel"`
	PreviewURL          *string `json:"preview_url"`
	CoverOrThumbnailURL string  `json:"cover_or_thumbnail_url"`
}

// TrackSearcher searches one provider's catalog.
type TrackSearcher interface {
	Provider() MusicProvider
	SearchTracks(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// LyricsFinder looks up lyrics for a song.
type LyricsFinder interface {
	Enabled() bool
	Lyrics(ctx context.Context, artist, track string) (string, error)
}

// Config holds configuration for music API clients
type Config struct {
	SearchProvider MusicProvider

	DeezerBaseURL string

	YouTubeAPIKey  string
	YouTubeBaseURL string

	MusixmatchAPIKey  string
	MusixmatchBaseURL string

	RequestTimeout time.Duration
}

// ParseProvider maps a configuration value onto a known provider.
func ParseProvider(value string) (MusicProvider, error) {
	switch MusicProvider(strings.ToLower(strings.TrimSpace(value))) {
	case "", ProviderDeezer:
		return ProviderDeezer, nil
	case ProviderYouTube:
		return ProviderYouTube, nil
	default:
		return "", fmt.Errorf("%w: unknown search provider %q", ErrMisconfigured, value)
	}
}

// NewSearcher builds the client for the configured search provider.
func NewSearcher(cfg Config) (TrackSearcher, error) {
	switch cfg.SearchProvider {
	case "", ProviderDeezer:
		return NewDeezerClient(cfg.DeezerBaseURL, cfg.RequestTimeout), nil
	case ProviderYouTube:
		return NewYouTubeClient(cfg.YouTubeAPIKey, cfg.YouTubeBaseURL, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown search provider %q", ErrMisconfigured, cfg.SearchProvider)
	}
}

// NewLyricsFinder builds the Musixmatch client. A missing key is reported per call.
func NewLyricsFinder(cfg Config) *MusixmatchClient {
	return NewMusixmatchClient(cfg.MusixmatchAPIKey, cfg.MusixmatchBaseURL, cfg.RequestTimeout)
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultRequestTimeout
	}
	return timeout
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, provider, err)
}

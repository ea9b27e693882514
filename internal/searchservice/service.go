package searchservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"mixtape/internal/musicapi"
)

const (
	DefaultLimit          = 10
	MaxLimit              = 50
	DefaultMinQueryLength = 1
)

// ErrInvalidQuery indicates a search or lyrics request failed validation.
var ErrInvalidQuery = errors.New("invalid query")

// Options tunes the proxy.
type Options struct {
	Limit          int
	MinQueryLength int
}

// ProviderInfo describes what the proxy is wired to.
type ProviderInfo struct {
	Search musicapi.MusicProvider `json:"search"`
	Lyrics bool                   `json:"lyrics"`
}

// Service forwards search and lyrics queries to exactly one provider each and
// reshapes their answers. It holds no mutable state.
type Service struct {
	searcher musicapi.TrackSearcher
	lyrics   musicapi.LyricsFinder
	opts     Options
	logger   zerolog.Logger
}

// NewService creates a new search service
func NewService(searcher musicapi.TrackSearcher, lyrics musicapi.LyricsFinder, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		searcher: searcher,
		lyrics:   lyrics,
		opts:     normalizeOptions(opts),
		logger:   logger.With().Str("component", "searchservice").Logger(),
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	return opts
}

// SearchTracks queries the configured provider. Zero matches is an empty
// slice, never an error.
func (s *Service) SearchTracks(ctx context.Context, query string) ([]musicapi.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < s.opts.MinQueryLength {
		return nil, fmt.Errorf("%w: query must be at least %d characters", ErrInvalidQuery, s.opts.MinQueryLength)
	}
	if s.searcher == nil {
		return nil, fmt.Errorf("%w: no search provider configured", musicapi.ErrMisconfigured)
	}

	results, err := s.searcher.SearchTracks(ctx, query, s.opts.Limit)
	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", string(s.searcher.Provider())).
			Str("query", query).
			Msg("search failed")
		return nil, err
	}
	if results == nil {
		results = make([]musicapi.SearchResult, 0)
	}

	s.logger.Debug().
		Str("provider", string(s.searcher.Provider())).
		Str("query", query).
		Int("results", len(results)).
		Msg("search completed")
	return results, nil
}

// Lyrics fetches lyrics for artist and track. An unmatched song yields
// musicapi.LyricsNotFound.
func (s *Service) Lyrics(ctx context.Context, artist, track string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	artist = strings.TrimSpace(artist)
	track = strings.TrimSpace(track)
	var problems []string
	if artist == "" {
		problems = append(problems, "artist is required")
	}
	if track == "" {
		problems = append(problems, "track is required")
	}
	if len(problems) > 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(problems, ", "))
	}
	if s.lyrics == nil {
		return "", fmt.Errorf("%w: no lyrics provider configured", musicapi.ErrMisconfigured)
	}

	lyrics, err := s.lyrics.Lyrics(ctx, artist, track)
	if err != nil {
		s.logger.Error().Err(err).Str("artist", artist).Str("track", track).Msg("lyrics lookup failed")
		return "", err
	}
	return lyrics, nil
}

// Providers reports the configured search provider and whether lyrics are available.
func (s *Service) Providers() ProviderInfo {
	info := ProviderInfo{}
	if s.searcher != nil {
		info.Search = s.searcher.Provider()
	}
	if s.lyrics != nil {
		info.Lyrics = s.lyrics.Enabled()
	}
	return info
}

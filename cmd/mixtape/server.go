package main

import (
	"net/http"
	"slices"

	"github.com/rs/zerolog"

	"mixtape/internal/app/playlists"
	"mixtape/internal/config"
	"mixtape/internal/http/middleware"
	"mixtape/internal/httpapi"
	"mixtape/internal/musicapi"
	"mixtape/internal/searchservice"
	"mixtape/internal/store"
)

func newHTTPHandler(cfg *config.Config, playlistStore store.PlaylistStore, logger zerolog.Logger) (http.Handler, error) {
	playlistSvc := playlists.New(playlistStore, logger)

	searchSvc, err := newSearchService(cfg, logger)
	if err != nil {
		return nil, err
	}

	routes := httpapi.New(playlistSvc, searchSvc).Routes()

	if cfg.IsProduction() && slices.Contains(cfg.CORS.AllowedOrigins, "*") {
		logger.Warn().Msg("CORS_ALLOWED_ORIGINS allows any origin in production")
	}

	// Outermost first: request id and logging, then panic recovery, then CORS.
	handler := middleware.CORS(cfg.CORS.AllowedOrigins)(routes)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler, nil
}

func newSearchService(cfg *config.Config, logger zerolog.Logger) (*searchservice.Service, error) {
	apiCfg := cfg.Providers.MusicAPI()

	searcher, err := musicapi.NewSearcher(apiCfg)
	if err != nil {
		return nil, err
	}
	if searcher.Provider() == musicapi.ProviderYouTube && apiCfg.YouTubeAPIKey == "" {
		logger.Warn().Msg("YOUTUBE_API_KEY not set, /search will answer 500 until it is configured")
	}

	lyrics := musicapi.NewLyricsFinder(apiCfg)
	if !lyrics.Enabled() {
		logger.Warn().Msg("MUSIXMATCH_API_KEY not set, /lyrics is disabled")
	}

	logger.Info().Str("search_provider", string(searcher.Provider())).Bool("lyrics", lyrics.Enabled()).Msg("providers configured")

	return searchservice.NewService(searcher, lyrics, searchservice.Options{
		Limit:          cfg.Providers.SearchLimit,
		MinQueryLength: cfg.Providers.MinQueryLength,
	}, logger), nil
}

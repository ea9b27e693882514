package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"

	"mixtape/internal/logging"
	"mixtape/internal/models"
	"mixtape/internal/musicapi"
	"mixtape/internal/searchservice"
	"mixtape/internal/store"
)

const bannerMessage = "mixtape playlist service is running"

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context) ([]*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	Create(ctx context.Context, name string) (*models.Playlist, error)
	AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error)
	Delete(ctx context.Context, id int64) error
}

// SearchService proxies catalog search and lyrics lookups.
type SearchService interface {
	SearchTracks(ctx context.Context, query string) ([]musicapi.SearchResult, error)
	Lyrics(ctx context.Context, artist, track string) (string, error)
	Providers() searchservice.ProviderInfo
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	playlists PlaylistService
	search    SearchService
}

// New configures a Server with the given services.
func New(playlists PlaylistService, search SearchService) *Server {
	return &Server{
		playlists: playlists,
		search:    search,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// /playlists/add must be registered ahead of /playlists/{id}.
	router.HandleFunc("/playlists/add", s.handleAddTrack).Methods(http.MethodPost)
	router.HandleFunc("/playlists", s.handleListPlaylists).Methods(http.MethodGet)
	router.HandleFunc("/playlists", s.handleCreatePlaylist).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{id}", s.handleGetPlaylist).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{id}", s.handleDeletePlaylist).Methods(http.MethodDelete)

	router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/lyrics", s.handleLyrics).Methods(http.MethodGet)
	router.HandleFunc("/providers", s.handleProviders).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: bannerMessage})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidPlaylist),
		errors.Is(err, store.ErrInvalidTrack),
		errors.Is(err, searchservice.ErrInvalidQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, musicapi.ErrProviderUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, musicapi.ErrMisconfigured):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err, reports server-side failures to Sentry and answers
// with the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.WithContext(r.Context())

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Int("status_code", status).Msg("request failed")
		captureError(r, err)
		if !errors.Is(err, musicapi.ErrMisconfigured) && status == http.StatusInternalServerError {
			message = "internal server error"
		}
	} else {
		logger.Warn().Err(err).Str("path", r.URL.Path).Int("status_code", status).Msg("request rejected")
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func captureError(r *http.Request, err error) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("request_id", logging.RequestID(r.Context()))
		hub.CaptureException(err)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

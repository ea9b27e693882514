package httpapi

import "net/http"

type lyricsResponse struct {
	Lyrics string `json:"lyrics"`
}

// handleSearch proxies a catalog search to the configured provider.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.search.SearchTracks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleLyrics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lyrics, err := s.search.Lyrics(r.Context(), query.Get("artist"), query.Get("track"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lyricsResponse{Lyrics: lyrics})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.search.Providers())
}

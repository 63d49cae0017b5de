package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"melodex/cache"
	"melodex/logger"
	"melodex/model"
)

// Analytics endpoints. Results go through the versioned Redis cache; any
// cache error is treated as a miss and the query hits the store.

func (h *APIHandler) cacheTTL() time.Duration {
	return time.Duration(h.cfg.CacheTTLSeconds) * time.Second
}

// ProlificSingleArtistsHandler serves the top singles producers in a year range.
func (h *APIHandler) ProlificSingleArtistsHandler(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n")
	if !ok {
		return
	}
	from, ok := intParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := intParam(w, r, "to")
	if !ok {
		return
	}

	key := fmt.Sprintf("prolific-single-artists:n=%d:from=%d:to=%d", n, from, to)
	var cached []model.ArtistSingleCount
	if hit := h.tryCache(r, key, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.analytics.MostProlificSingleArtists(r.Context(), n, from, to)
	if err != nil {
		logger.Error("prolific single artists query failed", logger.ErrorField(err))
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}
	h.storeCache(r, key, results)
	writeJSON(w, http.StatusOK, results)
}

// LastSingleYearHandler serves artists whose most recent single was released
// in the given year.
func (h *APIHandler) LastSingleYearHandler(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}

	key := fmt.Sprintf("last-single-year:year=%d", year)
	var cached []string
	if hit := h.tryCache(r, key, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.analytics.ArtistsWithLastSingleIn(r.Context(), year)
	if err != nil {
		logger.Error("last single year query failed", logger.ErrorField(err))
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}
	h.storeCache(r, key, results)
	writeJSON(w, http.StatusOK, results)
}

// TopGenresHandler serves the most represented genres by song count.
func (h *APIHandler) TopGenresHandler(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n")
	if !ok {
		return
	}

	key := fmt.Sprintf("top-genres:n=%d", n)
	var cached []model.GenreSongCount
	if hit := h.tryCache(r, key, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.analytics.TopSongGenres(r.Context(), n)
	if err != nil {
		logger.Error("top genres query failed", logger.ErrorField(err))
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}
	h.storeCache(r, key, results)
	writeJSON(w, http.StatusOK, results)
}

// AlbumAndSingleArtistsHandler serves artists who released both an album and
// a single.
func (h *APIHandler) AlbumAndSingleArtistsHandler(w http.ResponseWriter, r *http.Request) {
	key := "album-and-single-artists"
	var cached []string
	if hit := h.tryCache(r, key, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.analytics.AlbumAndSingleArtists(r.Context())
	if err != nil {
		logger.Error("album-and-single artists query failed", logger.ErrorField(err))
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}
	h.storeCache(r, key, results)
	writeJSON(w, http.StatusOK, results)
}

// MostRatedSongsHandler serves the most rated songs in a year range.
func (h *APIHandler) MostRatedSongsHandler(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n")
	if !ok {
		return
	}
	from, ok := intParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := intParam(w, r, "to")
	if !ok {
		return
	}

	key := fmt.Sprintf("most-rated-songs:n=%d:from=%d:to=%d", n, from, to)
	var cached []model.SongRatingCount
	if hit := h.tryCache(r, key, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.analytics.MostRatedSongs(r.Context(), from, to, n)
	if err != nil {
		logger.Error("most rated songs query failed", logger.ErrorField(err))
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}
	h.storeCache(r, key, results)
	writeJSON(w, http.StatusOK, results)
}

// MostEngagedUsersHandler serves the users with the most ratings in a year range.
func (h *APIHandler) MostEngagedUsersHandler(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n")
	if !ok {
		return
	}
	from, ok := intParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := intParam(w, r, "to")
	if !ok {
		return
	}

	key := fmt.Sprintf("most-engaged-users:n=%d:from=%d:to=%d", n, from, to)
	var cached []model.UserRatingCount
	if hit := h.tryCache(r, key, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.analytics.MostEngagedUsers(r.Context(), from, to, n)
	if err != nil {
		logger.Error("most engaged users query failed", logger.ErrorField(err))
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}
	h.storeCache(r, key, results)
	writeJSON(w, http.StatusOK, results)
}

func (h *APIHandler) tryCache(r *http.Request, key string, dest interface{}) bool {
	hit, err := cache.GetResult(r.Context(), key, dest)
	if err != nil {
		logger.Debug("analytics cache read failed", logger.ErrorField(err))
		return false
	}
	return hit
}

func (h *APIHandler) storeCache(r *http.Request, key string, val interface{}) {
	if err := cache.SetResult(r.Context(), key, val, h.cacheTTL()); err != nil {
		logger.Debug("analytics cache write failed", logger.ErrorField(err))
	}
}

// intParam parses a required integer query parameter, writing a 400 when it
// is missing or malformed.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		http.Error(w, fmt.Sprintf("Missing query parameter %q", name), http.StatusBadRequest)
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid query parameter %q", name), http.StatusBadRequest)
		return 0, false
	}
	return val, true
}

package server

import (
	"encoding/json"
	"net/http"

	"melodex/cache"
	"melodex/config"
	"melodex/core/catalog"
	"melodex/db"
	"melodex/logger"
	"melodex/repository"

	"github.com/google/uuid"
)

// APIHandler holds the handler dependencies.
type APIHandler struct {
	loader    *catalog.Loader
	analytics repository.AnalyticsRepository
	cfg       *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(loader *catalog.Loader, analytics repository.AnalyticsRepository, cfg *config.Config) *APIHandler {
	return &APIHandler{loader: loader, analytics: analytics, cfg: cfg}
}

// loadResponse is the envelope for all ingestion endpoints. A processed
// batch is always 200: rejects are data, not errors.
type loadResponse struct {
	BatchID  string      `json:"batchId"`
	Received int         `json:"received"`
	Loaded   int         `json:"loaded"`
	Rejected interface{} `json:"rejected"`
}

// LoadSinglesHandler ingests a batch of standalone songs.
func (h *APIHandler) LoadSinglesHandler(w http.ResponseWriter, r *http.Request) {
	var batch []catalog.Single
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rejects := h.loader.LoadSingles(r.Context(), batch)
	h.afterIngest(r, len(batch), len(rejects))

	rejected := catalog.SortedSongKeys(rejects)
	writeJSON(w, http.StatusOK, loadResponse{
		BatchID:  uuid.NewString(),
		Received: len(batch),
		Loaded:   len(batch) - len(rejects),
		Rejected: rejected,
	})
}

// LoadAlbumsHandler ingests a batch of albums.
func (h *APIHandler) LoadAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	var batch []catalog.Album
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rejects := h.loader.LoadAlbums(r.Context(), batch)
	h.afterIngest(r, len(batch), len(rejects))

	rejected := catalog.SortedAlbumKeys(rejects)
	writeJSON(w, http.StatusOK, loadResponse{
		BatchID:  uuid.NewString(),
		Received: len(batch),
		Loaded:   len(batch) - len(rejects),
		Rejected: rejected,
	})
}

// LoadUsersHandler ingests a batch of usernames.
func (h *APIHandler) LoadUsersHandler(w http.ResponseWriter, r *http.Request) {
	var batch []string
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rejects := h.loader.LoadUsers(r.Context(), batch)
	h.afterIngest(r, len(batch), len(rejects))

	rejected := catalog.SortedUsernames(rejects)
	writeJSON(w, http.StatusOK, loadResponse{
		BatchID:  uuid.NewString(),
		Received: len(batch),
		Loaded:   len(batch) - len(rejects),
		Rejected: rejected,
	})
}

// LoadRatingsHandler ingests a batch of ratings.
func (h *APIHandler) LoadRatingsHandler(w http.ResponseWriter, r *http.Request) {
	var batch []catalog.Rating
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rejects := h.loader.LoadRatings(r.Context(), batch)
	h.afterIngest(r, len(batch), len(rejects))

	rejected := catalog.SortedRatingKeys(rejects)
	writeJSON(w, http.StatusOK, loadResponse{
		BatchID:  uuid.NewString(),
		Received: len(batch),
		Loaded:   len(batch) - len(rejects),
		Rejected: rejected,
	})
}

// LoadBatchHandler ingests a whole batch document, sections in order.
func (h *APIHandler) LoadBatchHandler(w http.ResponseWriter, r *http.Request) {
	var bf catalog.BatchFile
	if err := json.NewDecoder(r.Body).Decode(&bf); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report := h.loader.ApplyBatchFile(r.Context(), bf)

	loaded := 0
	for _, s := range report.Sections {
		loaded += s.Loaded
	}
	if loaded > 0 {
		h.invalidateCache(r)
	}

	writeJSON(w, http.StatusOK, report)
}

// ResetHandler wipes the catalog. This is the one write endpoint that can
// fail loudly: a partial reset leaves the store inconsistent.
func (h *APIHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if err := db.ResetCatalog(r.Context(), db.DB); err != nil {
		logger.Error("catalog reset failed", logger.ErrorField(err))
		http.Error(w, "Reset failed", http.StatusInternalServerError)
		return
	}
	h.invalidateCache(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// afterIngest invalidates the analytics cache when a batch persisted rows.
func (h *APIHandler) afterIngest(r *http.Request, received, rejected int) {
	if received-rejected > 0 {
		h.invalidateCache(r)
	}
}

func (h *APIHandler) invalidateCache(r *http.Request) {
	if err := cache.Invalidate(r.Context()); err != nil {
		logger.Warn("failed to invalidate analytics cache", logger.ErrorField(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

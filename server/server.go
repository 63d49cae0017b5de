package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melodex/config"
	"melodex/core/catalog"
	"melodex/db"
	"melodex/logger"
	"melodex/repository"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until a shutdown
// signal arrives.
func Start() {
	cfg := config.Load()

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.InitSchema(); err != nil {
		logger.Fatal("Failed to initialize schema", logger.ErrorField(err))
	}

	// The analytics cache is an optimization; the server runs without it.
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, analytics cache disabled", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
	}

	loader := catalog.NewLoader(db.DB)
	analytics := repository.NewMySQLAnalyticsRepository(db.DB)
	apiHandler := NewAPIHandler(loader, analytics, cfg)

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)

	router.HandleFunc("/api/catalog/singles", apiHandler.LoadSinglesHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/catalog/albums", apiHandler.LoadAlbumsHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/catalog/users", apiHandler.LoadUsersHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/catalog/ratings", apiHandler.LoadRatingsHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/catalog/batch", apiHandler.LoadBatchHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/reset", apiHandler.ResetHandler).Methods(http.MethodPost)

	router.HandleFunc("/api/stats/prolific-single-artists", apiHandler.ProlificSingleArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/last-single-year", apiHandler.LastSingleYearHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/top-genres", apiHandler.TopGenresHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/album-and-single-artists", apiHandler.AlbumAndSingleArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/most-rated-songs", apiHandler.MostRatedSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/most-engaged-users", apiHandler.MostEngagedUsersHandler).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("Server exited.")
}

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		logger.Info("request handled",
			logger.String("requestId", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("elapsed", time.Since(start)))
	})
}

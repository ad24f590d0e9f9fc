package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/etros/scorebook/internal/cache"
	"github.com/etros/scorebook/internal/ingest"
	"github.com/etros/scorebook/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. Upload routes require an
// admin bearer token; reads are open.
func NewServer(port string, db *store.Database, redisCache *cache.RedisCache, ingestSvc *ingest.Service, jwtSecret []byte) *Server {
	handler := NewHandler(db, redisCache, ingestSvc)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Matches
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/{matchID}", handler.GetMatch).Methods("GET")
	api.HandleFunc("/matches/{matchID}/boxscore", handler.GetMatchBoxscore).Methods("GET")

	// Players
	api.HandleFunc("/players", handler.GetPlayers).Methods("GET")
	api.HandleFunc("/players/{playerID}", handler.GetPlayer).Methods("GET")
	api.HandleFunc("/players/{playerID}/stats", handler.GetPlayerStats).Methods("GET")

	// Upload workflow (admin only)
	admin := api.NewRoute().Subrouter()
	admin.Use(AuthMiddleware(jwtSecret))
	admin.HandleFunc("/uploads", handler.UploadBoxScore).Methods("POST")
	admin.HandleFunc("/uploads/preview", handler.PreviewBoxScore).Methods("POST")
	admin.HandleFunc("/uploads/confirm", handler.ConfirmBoxScore).Methods("POST")
	admin.HandleFunc("/uploads", handler.GetUploads).Methods("GET")
	admin.HandleFunc("/uploads/{uploadID}/status", handler.GetUploadStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

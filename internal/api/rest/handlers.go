package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/etros/scorebook/internal/cache"
	"github.com/etros/scorebook/internal/ingest"
	"github.com/etros/scorebook/internal/store"
	"github.com/etros/scorebook/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db      *store.Database
	cache   *cache.RedisCache
	ingest  *ingest.Service
	players *repository.PlayerRepository
	matches *repository.MatchRepository
	stats   *repository.StatRepository
	uploads *repository.UploadRepository
}

// NewHandler creates a new handler. cache may be nil.
func NewHandler(db *store.Database, redisCache *cache.RedisCache, ingestSvc *ingest.Service) *Handler {
	return &Handler{
		db:      db,
		cache:   redisCache,
		ingest:  ingestSvc,
		players: repository.NewPlayerRepository(db),
		matches: repository.NewMatchRepository(db),
		stats:   repository.NewStatRepository(db),
		uploads: repository.NewUploadRepository(db),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "scorebook",
		"version": "1.0.0",
	})
}

// GetMatches returns recent matches, newest first
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 20, 100)

	matches, err := h.matches.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetMatch returns a specific match by ID
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}

	match, err := h.matches.GetByID(r.Context(), matchID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Match not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch match", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"match": match})
}

// matchBoxscore is the composed read model for one match.
type matchBoxscore struct {
	Match       *store.Match        `json:"match"`
	PlayerStats []boxscoreStatEntry `json:"player_stats"`
}

type boxscoreStatEntry struct {
	PlayerName string `json:"player_name"`
	Number     string `json:"number"`
	*store.PlayerStatLine
}

// GetMatchBoxscore returns a match with its per-player stat lines.
// Served from cache when possible; ingested match data is immutable so
// short-TTL caching is safe.
func (h *Handler) GetMatchBoxscore(w http.ResponseWriter, r *http.Request) {
	matchID, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}

	key := cache.BoxscoreKey(matchID)
	if h.cache != nil {
		var cached matchBoxscore
		if err := h.cache.GetJSON(r.Context(), key, &cached); err == nil {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	match, err := h.matches.GetByID(r.Context(), matchID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Match not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch match", err)
		return
	}

	lines, err := h.stats.GetByMatch(r.Context(), matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stat lines", err)
		return
	}

	roster, err := h.players.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}
	byID := make(map[int64]*store.Player, len(roster))
	for _, p := range roster {
		byID[p.PlayerID] = p
	}

	box := &matchBoxscore{Match: match, PlayerStats: make([]boxscoreStatEntry, 0, len(lines))}
	for _, line := range lines {
		entry := boxscoreStatEntry{PlayerStatLine: line}
		if p := byID[line.PlayerID]; p != nil {
			entry.PlayerName = p.Name
			entry.Number = p.Number
		}
		box.PlayerStats = append(box.PlayerStats, entry)
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), key, box, cache.BoxscoreTTL); err != nil {
			log.Printf("⚠️  Failed to cache box score for match %d: %v", matchID, err)
		}
	}

	respondJSON(w, http.StatusOK, box)
}

// GetPlayers returns the full roster
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

// GetPlayer returns a player by ID
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}

	player, err := h.players.GetByID(r.Context(), playerID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Player not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"player": player})
}

// GetPlayerStats returns a player's stat lines across matches
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}

	stats, err := h.stats.GetByPlayer(r.Context(), playerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player stats", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
		"count": len(stats),
	})
}

// GetUploads returns recent upload records
func (h *Handler) GetUploads(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 20, 100)

	uploads, err := h.uploads.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch uploads", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"uploads": uploads,
		"count":   len(uploads),
	})
}

// pathID parses an int64 path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= max {
			limit = l
		}
	}
	return limit
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}

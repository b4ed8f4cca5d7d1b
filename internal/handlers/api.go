package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/mem"

	"medialog/internal/auth"
	"medialog/internal/clients/metadata"
	"medialog/internal/config"
	"medialog/internal/core"
	"medialog/internal/database/models"
	"medialog/internal/utils"
)

type APIHandler struct {
	config    *config.Config
	catalog   *core.Catalog
	lists     *core.ListCatalog
	users     *models.UserRepository
	watched   *models.WatchedRepository
	shows     *models.ShowRepository
	watchlist *models.WatchlistRepository
	jwt       *auth.JWTManager
	logger    *utils.Logger
	startedAt time.Time
}

func NewAPIHandler(cfg *config.Config, catalog *core.Catalog, lists *core.ListCatalog,
	users *models.UserRepository, watched *models.WatchedRepository,
	shows *models.ShowRepository, watchlist *models.WatchlistRepository,
	jwtManager *auth.JWTManager, logger *utils.Logger) *APIHandler {
	return &APIHandler{
		config:    cfg,
		catalog:   catalog,
		lists:     lists,
		users:     users,
		watched:   watched,
		shows:     shows,
		watchlist: watchlist,
		jwt:       jwtManager,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// A helper function to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to respond with a JSON error
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// respondMetadataError maps the provider error taxonomy onto HTTP
// statuses. Not-found carries the provider's own message through.
func (h *APIHandler) respondMetadataError(w http.ResponseWriter, err error) {
	var notFound *metadata.NotFoundError
	var providerErr *metadata.ProviderError

	switch {
	case errors.Is(err, metadata.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, "Metadata provider is not configured")
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, notFound.Message)
	case errors.As(err, &providerErr):
		if providerErr.StatusCode == http.StatusUnauthorized {
			respondError(w, http.StatusBadGateway, "Metadata provider rejected the configured credentials")
			return
		}
		respondError(w, http.StatusBadGateway, "Metadata provider is unavailable")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func refFromVars(r *http.Request) (metadata.ContentRef, bool) {
	vars := mux.Vars(r)
	provider := metadata.Provider(vars["provider"])
	if provider != metadata.ProviderOMDb && provider != metadata.ProviderTMDB {
		return metadata.ContentRef{}, false
	}
	return metadata.ContentRef{Provider: provider, ID: vars["id"]}, true
}

func contentTypeFromQuery(r *http.Request) metadata.ContentType {
	if r.URL.Query().Get("type") == string(metadata.ContentTypeTV) {
		return metadata.ContentTypeTV
	}
	return metadata.ContentTypeMovie
}

// --- Auth ---

func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "Username and a password of at least 8 characters are required")
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("User lookup failed:", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Username is already taken")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Password hashing failed:", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user, err := h.users.Create(req.Username, hash)
	if err != nil {
		h.logger.Error("User creation failed:", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.logger.Info("Registered new user:", user.Username)
	respondJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("User lookup failed:", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		h.logger.Error("Token generation failed:", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// --- Metadata ---

func (h *APIHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	results, err := h.catalog.SearchAll(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, results)
}

func (h *APIHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	ref, ok := refFromVars(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown metadata provider")
		return
	}

	details, err := h.catalog.GetDetails(r.Context(), ref, contentTypeFromQuery(r))
	if err != nil {
		h.respondMetadataError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, details)
}

func (h *APIHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ref, ok := refFromVars(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown metadata provider")
		return
	}

	series, err := h.catalog.GetSeriesStructure(r.Context(), ref)
	if err != nil {
		h.respondMetadataError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, series)
}

func (h *APIHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	items, err := h.lists.Trending(r.Context(), contentTypeFromQuery(r))
	if err != nil {
		h.respondMetadataError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *APIHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	items, err := h.lists.Popular(r.Context(), contentTypeFromQuery(r))
	if err != nil {
		h.respondMetadataError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// --- Watched movies ---

func (h *APIHandler) GetWatched(w http.ResponseWriter, r *http.Request) {
	movies, err := h.watched.ListByUser(h.userID(r))
	if err != nil {
		h.logger.Error("Failed to list watched movies:", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch watched movies")
		return
	}
	respondJSON(w, http.StatusOK, movies)
}

func (h *APIHandler) AddWatched(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider  string  `json:"provider"`
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		Year      int     `json:"year"`
		PosterURL *string `json:"poster_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Provider == "" || req.ID == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "Provider, id and title are required")
		return
	}

	movie := &models.WatchedMovie{
		UserID:    h.userID(r),
		Provider:  req.Provider,
		ContentID: req.ID,
		Title:     req.Title,
		Year:      req.Year,
		PosterURL: req.PosterURL,
	}
	if err := h.watched.Add(movie); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			respondError(w, http.StatusConflict, "Movie is already marked as watched")
			return
		}
		h.logger.Error("Failed to add watched movie:", err)
		respondError(w, http.StatusInternalServerError, "Failed to add watched movie")
		return
	}

	respondJSON(w, http.StatusCreated, movie)
}

func (h *APIHandler) RemoveWatched(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.watched.Remove(h.userID(r), id); err != nil {
		h.logger.Error("Failed to remove watched movie:", err)
		respondError(w, http.StatusInternalServerError, "Failed to remove watched movie")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tracked shows ---

func (h *APIHandler) GetShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.shows.ListByUser(h.userID(r))
	if err != nil {
		h.logger.Error("Failed to list tracked shows:", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch tracked shows")
		return
	}
	respondJSON(w, http.StatusOK, shows)
}

func (h *APIHandler) TrackShow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider     string  `json:"provider"`
		ID           string  `json:"id"`
		Title        string  `json:"title"`
		PosterURL    *string `json:"poster_url"`
		TotalSeasons int     `json:"total_seasons"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Provider == "" || req.ID == "" {
		respondError(w, http.StatusBadRequest, "Provider and id are required")
		return
	}

	// Fill missing display fields from the aggregation facade so the
	// client only has to send an identifier.
	if req.Title == "" {
		ref := metadata.ContentRef{Provider: metadata.Provider(req.Provider), ID: req.ID}
		details, err := h.catalog.GetDetails(r.Context(), ref, metadata.ContentTypeTV)
		if err != nil {
			h.respondMetadataError(w, err)
			return
		}
		req.Title = details.Title
		if req.PosterURL == nil {
			req.PosterURL = details.PosterURL
		}
	}

	show := &models.TrackedShow{
		UserID:       h.userID(r),
		Provider:     req.Provider,
		ContentID:    req.ID,
		Title:        req.Title,
		PosterURL:    req.PosterURL,
		TotalSeasons: req.TotalSeasons,
	}
	if err := h.shows.Track(show); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			respondError(w, http.StatusConflict, "Show is already tracked")
			return
		}
		h.logger.Error("Failed to track show:", err)
		respondError(w, http.StatusInternalServerError, "Failed to track show")
		return
	}

	respondJSON(w, http.StatusCreated, show)
}

func (h *APIHandler) UntrackShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid show id")
		return
	}

	if err := h.shows.Untrack(h.userID(r), id); err != nil {
		h.logger.Error("Failed to untrack show:", err)
		respondError(w, http.StatusInternalServerError, "Failed to untrack show")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) MarkEpisode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	showID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid show id")
		return
	}
	episodeID := vars["episodeID"]

	var req struct {
		SeasonNumber  int  `json:"season_number"`
		EpisodeNumber int  `json:"episode_number"`
		Watched       bool `json:"watched"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	show, err := h.shows.GetByID(h.userID(r), showID)
	if err != nil {
		h.logger.Error("Show lookup failed:", err)
		respondError(w, http.StatusInternalServerError, "Failed to update episode")
		return
	}
	if show == nil {
		respondError(w, http.StatusNotFound, "Show is not tracked")
		return
	}

	episode := models.WatchedEpisode{
		EpisodeID:     episodeID,
		SeasonNumber:  req.SeasonNumber,
		EpisodeNumber: req.EpisodeNumber,
	}
	if err := h.shows.MarkEpisode(showID, episode, req.Watched); err != nil {
		h.logger.Error("Failed to update episode:", err)
		respondError(w, http.StatusInternalServerError, "Failed to update episode")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// --- Watchlist ---

func (h *APIHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlist.ListByUser(h.userID(r))
	if err != nil {
		h.logger.Error("Failed to list watchlist:", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch watchlist")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *APIHandler) AddWatchlistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider    string  `json:"provider"`
		ID          string  `json:"id"`
		ContentType string  `json:"content_type"`
		Title       string  `json:"title"`
		Year        int     `json:"year"`
		PosterURL   *string `json:"poster_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Provider == "" || req.ID == "" || req.Title == "" || req.ContentType == "" {
		respondError(w, http.StatusBadRequest, "Provider, id, content_type and title are required")
		return
	}

	item := &models.WatchlistItem{
		UserID:      h.userID(r),
		Provider:    req.Provider,
		ContentID:   req.ID,
		ContentType: req.ContentType,
		Title:       req.Title,
		Year:        req.Year,
		PosterURL:   req.PosterURL,
	}
	if err := h.watchlist.Add(item); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			respondError(w, http.StatusConflict, "Title is already on the watchlist")
			return
		}
		h.logger.Error("Failed to add watchlist item:", err)
		respondError(w, http.StatusInternalServerError, "Failed to add watchlist item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

func (h *APIHandler) RemoveWatchlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.watchlist.Remove(h.userID(r), id); err != nil {
		h.logger.Error("Failed to remove watchlist item:", err)
		respondError(w, http.StatusInternalServerError, "Failed to remove watchlist item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- System status ---

func (h *APIHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"providers": map[string]bool{
			"omdb": h.config.Metadata.OMDb.APIKey != "",
			"tmdb": h.config.Metadata.TMDB.AccessToken != "",
		},
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_used_percent"] = vm.UsedPercent
	}

	respondJSON(w, http.StatusOK, status)
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"medialog/internal/config"
	"medialog/internal/utils"
)

type Server struct {
	config     *config.Config
	logger     *utils.Logger
	httpServer *http.Server
	apiHandler *APIHandler
}

func NewServer(cfg *config.Config, apiHandler *APIHandler, logger *utils.Logger) *Server {
	return &Server{
		config:     cfg,
		logger:     logger,
		apiHandler: apiHandler,
	}
}

// Router builds the full route table, public and protected.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", s.apiHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", s.apiHandler.Login).Methods("POST")

	// Everything else requires a valid session token.
	protected := api.PathPrefix("").Subrouter()
	protected.Use(s.apiHandler.AuthMiddleware)

	protected.HandleFunc("/search", s.apiHandler.Search).Methods("GET")
	protected.HandleFunc("/details/{provider}/{id}", s.apiHandler.GetDetails).Methods("GET")
	protected.HandleFunc("/series/{provider}/{id}", s.apiHandler.GetSeries).Methods("GET")
	protected.HandleFunc("/lists/trending", s.apiHandler.GetTrending).Methods("GET")
	protected.HandleFunc("/lists/popular", s.apiHandler.GetPopular).Methods("GET")

	protected.HandleFunc("/watched", s.apiHandler.GetWatched).Methods("GET")
	protected.HandleFunc("/watched", s.apiHandler.AddWatched).Methods("POST")
	protected.HandleFunc("/watched/{id}", s.apiHandler.RemoveWatched).Methods("DELETE")

	protected.HandleFunc("/shows", s.apiHandler.GetShows).Methods("GET")
	protected.HandleFunc("/shows", s.apiHandler.TrackShow).Methods("POST")
	protected.HandleFunc("/shows/{id}", s.apiHandler.UntrackShow).Methods("DELETE")
	protected.HandleFunc("/shows/{id}/episodes/{episodeID}", s.apiHandler.MarkEpisode).Methods("PUT")

	protected.HandleFunc("/watchlist", s.apiHandler.GetWatchlist).Methods("GET")
	protected.HandleFunc("/watchlist", s.apiHandler.AddWatchlistItem).Methods("POST")
	protected.HandleFunc("/watchlist/{id}", s.apiHandler.RemoveWatchlistItem).Methods("DELETE")

	protected.HandleFunc("/status", s.apiHandler.GetSystemStatus).Methods("GET")

	return router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.App.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Starting server on port", s.config.App.Port)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

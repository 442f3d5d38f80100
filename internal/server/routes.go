package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	limit := rateLimitMiddleware(s.app.Config.Server.ImportRatePerMinute, s.logger)
	api.Handle("/import", limit(http.HandlerFunc(s.handleImport))).Methods(http.MethodPost)

	api.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/summary", s.handlePortfolioSummary).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/report", s.handlePortfolioReport).Methods(http.MethodGet)
}

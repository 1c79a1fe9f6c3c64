package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/prompt-general/melodex/internal/config"
	"github.com/prompt-general/melodex/internal/health"
	"github.com/prompt-general/melodex/internal/ingest"
)

// QuestionPipeline answers one question within a session.
type QuestionPipeline interface {
	Run(ctx context.Context, question, sessionID string) (answer, resolvedSessionID string)
}

// SessionManager exposes the session operations served directly over HTTP.
type SessionManager interface {
	GetOrCreate(id string) (string, bool)
	HistoryText(token string) string
	Clear(token string)
	Delete(token string)
}

// ArticleReader serves the fixed latest-articles listing.
type ArticleReader interface {
	LatestArticles(ctx context.Context, limit int) ([]map[string]any, error)
}

// IngestRunner triggers the article ingestion batch job.
type IngestRunner interface {
	Run(ctx context.Context) ingest.Result
}

// Gateway is the HTTP surface over the question pipeline and its
// collaborators.
type Gateway struct {
	server   *http.Server
	router   *mux.Router
	pipeline QuestionPipeline
	sessions SessionManager
	articles ArticleReader
	ingestor IngestRunner
	checker  *health.Checker
	config   config.APIConfig
}

// NewGateway creates a new API gateway
func NewGateway(cfg config.APIConfig, pipeline QuestionPipeline, sessions SessionManager, articles ArticleReader, ingestor IngestRunner, checker *health.Checker) *Gateway {
	router := mux.NewRouter()

	gateway := &Gateway{
		router:   router,
		pipeline: pipeline,
		sessions: sessions,
		articles: articles,
		ingestor: ingestor,
		checker:  checker,
		config:   cfg,
	}

	gateway.setupRoutes()

	var handler http.Handler = router
	if cfg.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		})
		handler = c.Handler(router)
	}

	gateway.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return gateway
}

// setupRoutes configures all API routes
func (g *Gateway) setupRoutes() {
	api := g.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/ask", g.handleAsk).Methods("POST")

	sessions := api.PathPrefix("/session").Subrouter()
	sessions.HandleFunc("/new", g.handleNewSession).Methods("POST")
	sessions.HandleFunc("/clear", g.handleClearSession).Methods("POST")
	sessions.HandleFunc("/delete", g.handleDeleteSession).Methods("POST")
	sessions.HandleFunc("/{id}/history", g.handleSessionHistory).Methods("GET")

	api.HandleFunc("/latest-articles", g.handleLatestArticles).Methods("GET")
	api.HandleFunc("/run-pipeline", g.handleRunPipeline).Methods("POST")
	api.HandleFunc("/health", g.handleHealth).Methods("GET")
}

// Start starts the API gateway
func (g *Gateway) Start() error {
	log.Printf("Starting API gateway on %s", g.server.Addr)
	return g.server.ListenAndServe()
}

// Stop stops the API gateway
func (g *Gateway) Stop(ctx context.Context) error {
	log.Printf("Stopping API gateway")
	return g.server.Shutdown(ctx)
}

// Handler exposes the configured router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Response types

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Helper functions

func writeJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

func writeSuccessResponse(w http.ResponseWriter, data interface{}) {
	writeJSONResponse(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// requestContext bounds a handler's work with the configured request
// timeout.
func (g *Gateway) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := g.config.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}

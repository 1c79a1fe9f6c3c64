package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type AskRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type AskResponse struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// handleAsk answers a question with conversation memory support.
func (g *Gateway) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Query == "" {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "query is required")
		return
	}

	ctx, cancel := g.requestContext(r)
	defer cancel()

	answer, sessionID := g.pipeline.Run(ctx, req.Query, req.SessionID)

	writeSuccessResponse(w, AskResponse{
		Query:     req.Query,
		Response:  answer,
		SessionID: sessionID,
	})
}

func (g *Gateway) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := g.sessions.GetOrCreate("")
	writeSuccessResponse(w, map[string]string{"session_id": sessionID})
}

func (g *Gateway) handleClearSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := parseRequestBody(r, &req); err != nil || req.SessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "session_id is required")
		return
	}

	g.sessions.Clear(req.SessionID)
	writeSuccessResponse(w, map[string]string{
		"message": fmt.Sprintf("Session %s cleared successfully", req.SessionID),
	})
}

func (g *Gateway) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := parseRequestBody(r, &req); err != nil || req.SessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "session_id is required")
		return
	}

	g.sessions.Delete(req.SessionID)
	writeSuccessResponse(w, map[string]string{
		"message": fmt.Sprintf("Session %s deleted successfully", req.SessionID),
	})
}

func (g *Gateway) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	history := g.sessions.HistoryText(sessionID)
	if history == "" {
		history = "No conversation history found"
	}

	writeSuccessResponse(w, map[string]string{
		"session_id": sessionID,
		"history":    history,
	})
}

// handleLatestArticles returns the most recent articles with their source
// URLs and authors.
func (g *Gateway) handleLatestArticles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := g.requestContext(r)
	defer cancel()

	rows, err := g.articles.LatestArticles(ctx, 10)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "GRAPH_ERROR",
			fmt.Sprintf("Failed to fetch articles: %v", err))
		return
	}

	articles := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, map[string]any{
			"title":            stringOr(row["title"], "Unknown"),
			"description":      stringOr(row["description"], "No description available"),
			"author":           stringOr(row["author"], "Unknown"),
			"publication_date": stringOr(row["publication_date"], "Unknown"),
			"source_url":       stringOr(row["source_url"], ""),
		})
	}

	writeSuccessResponse(w, map[string]any{
		"articles": articles,
		"count":    len(articles),
	})
}

func (g *Gateway) handleRunPipeline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := g.requestContext(r)
	defer cancel()

	result := g.ingestor.Run(ctx)
	writeSuccessResponse(w, result)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := g.requestContext(r)
	defer cancel()

	results := g.checker.Check(ctx)
	status := g.checker.Overall(results)

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, httpStatus, APIResponse{
		Success: status == "healthy",
		Data: map[string]any{
			"status": status,
			"checks": results,
		},
	})
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

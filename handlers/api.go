// Package handlers exposes the orchestrator, retriever and journal
// service over a thin JSON HTTP surface.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/journal"
	"github.com/mentalbloom/mentalbloom/models"
	"github.com/mentalbloom/mentalbloom/rag"
	"github.com/mentalbloom/mentalbloom/retriever"
)

const requestTimeout = 90 * time.Second

type API struct {
	orchestrator *rag.Orchestrator
	retriever    *retriever.Retriever
	journal      *journal.Service
	logger       *zap.Logger
}

func NewAPI(orchestrator *rag.Orchestrator, r *retriever.Retriever, j *journal.Service, logger *zap.Logger) *API {
	return &API{orchestrator: orchestrator, retriever: r, journal: j, logger: logger}
}

// Register mounts every route on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", a.handleAnalyze)
	mux.HandleFunc("POST /analyze/batch", a.handleAnalyzeBatch)
	mux.HandleFunc("POST /chat", a.handleChat)
	mux.HandleFunc("POST /ingest", a.handleIngest)
	mux.HandleFunc("POST /journal", a.handleCreateJournal)
	mux.HandleFunc("GET /journal/{userID}", a.handleListJournals)
	mux.HandleFunc("GET /journal/{userID}/{entryID}", a.handleGetJournal)
	mux.HandleFunc("PUT /journal/{userID}/{entryID}", a.handleUpdateJournal)
	mux.HandleFunc("DELETE /journal/{userID}/{entryID}", a.handleDeleteJournal)
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var sample models.TextSample
	if !a.decode(w, r, &sample) {
		return
	}

	result, err := a.orchestrator.AnalyzeText(ctx, sample)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

func (a *API) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req struct {
		Samples []models.TextSample `json:"samples"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	a.writeJSON(w, http.StatusOK, a.orchestrator.AnalyzeBatch(ctx, req.Samples))
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req models.ChatRequest
	if !a.decode(w, r, &req) {
		return
	}

	resp, err := a.orchestrator.ChatTurn(ctx, req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req struct {
		Title    string                 `json:"title"`
		Content  string                 `json:"content"`
		URL      string                 `json:"url,omitempty"`
		Metadata map[string]interface{} `json:"metadata,omitempty"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		a.writeError(w, models.ErrEmptyText)
		return
	}

	documentID, chunkCount, err := a.retriever.Ingest(ctx, req.Title, req.Content, req.URL, req.Metadata)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID,
		"chunk_count": chunkCount,
	})
}

func (a *API) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var entry models.JournalEntry
	if !a.decode(w, r, &entry) {
		return
	}

	created, err := a.journal.Create(ctx, entry)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := a.journal.Get(r.Context(), r.PathValue("userID"), r.PathValue("entryID"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !ok {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "journal entry not found"})
		return
	}
	a.writeJSON(w, http.StatusOK, entry)
}

func (a *API) handleListJournals(w http.ResponseWriter, r *http.Request) {
	entries, err := a.journal.List(r.Context(), r.PathValue("userID"),
		r.URL.Query().Get("tag"), r.URL.Query().Get("mood"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

func (a *API) handleUpdateJournal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var updates models.JournalEntry
	if !a.decode(w, r, &updates) {
		return
	}

	entry, ok, err := a.journal.Update(ctx, r.PathValue("userID"), r.PathValue("entryID"), updates)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !ok {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "journal entry not found"})
		return
	}
	a.writeJSON(w, http.StatusOK, entry)
}

func (a *API) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	ok, err := a.journal.Delete(r.Context(), r.PathValue("userID"), r.PathValue("entryID"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !ok {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "journal entry not found"})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// writeError maps caller errors to 400 and everything else to 500.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, models.ErrEmptyText) || errors.Is(err, rag.ErrNoUserMessage) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", zap.Error(err))
	}
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to encode response", zap.Error(err))
	}
}

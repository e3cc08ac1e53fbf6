// Package server exposes the ingestion and query paths over HTTP.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/alexphommasathit/policyqa"
	"github.com/alexphommasathit/policyqa/core/extract"
	"github.com/alexphommasathit/policyqa/database"
	"github.com/alexphommasathit/policyqa/model"
)

// Server wires the HTTP handlers to a PolicyQA instance. Queries require a
// Bearer token when one is configured.
type Server struct {
	qa       *policyqa.PolicyQA
	apiToken string
	logger   *slog.Logger
}

// NewServer creates a Server. An empty apiToken disables query authentication.
func NewServer(qa *policyqa.PolicyQA, apiToken string, logger *slog.Logger) *Server {
	return &Server{
		qa:       qa,
		apiToken: apiToken,
		logger:   logger,
	}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents", s.createDocumentHandler)
	mux.HandleFunc("GET /documents", s.listDocumentsHandler)
	mux.HandleFunc("POST /documents/process", s.processDocumentHandler)
	mux.HandleFunc("POST /query", s.queryHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	response := errorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	s.writeJSON(w, status, response)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createDocumentRequest struct {
	Title    string `json:"title"`
	Status   string `json:"status,omitempty"`
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
}

func (s *Server) createDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var request createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if request.Title == "" || request.FilePath == "" || request.FileType == "" {
		s.writeError(w, http.StatusBadRequest, "title, file_path and file_type are required", nil)
		return
	}

	doc := &model.Document{
		Title:    request.Title,
		Status:   model.DocumentStatus(request.Status),
		FilePath: request.FilePath,
		FileType: model.FileType(request.FileType),
	}
	if err := s.qa.Documents.InsertDocument(doc); err != nil {
		s.logger.Error("Failed to insert document", slog.String("title", request.Title), slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "failed to create document", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := s.qa.Documents.SelectAllDocuments()
	if err != nil {
		s.logger.Error("Failed to list documents", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "failed to list documents", err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

type processDocumentRequest struct {
	DocumentID string `json:"document_id"`
}

type processDocumentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) processDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var request processDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	documentID, err := uuid.Parse(request.DocumentID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "document_id must be a valid UUID", err)
		return
	}

	count, err := s.qa.ProcessDocument(r.Context(), documentID)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrDocumentNotFound):
		s.writeError(w, http.StatusNotFound, "document not found", err)
		return
	case errors.Is(err, extract.ErrUnsupportedFormat):
		s.writeError(w, http.StatusBadRequest, "unsupported document format", err)
		return
	default:
		s.logger.Error("Failed to process document", slog.String("document_id", documentID.String()), slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "failed to process document", err)
		return
	}

	s.writeJSON(w, http.StatusOK, processDocumentResponse{
		Success: true,
		Message: fmt.Sprintf("document processed into %d chunks", count),
	})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.writeError(w, http.StatusUnauthorized, "missing or invalid bearer token", nil)
		return
	}

	var request queryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(request.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required", nil)
		return
	}

	result, err := s.qa.Ask(r.Context(), request.Query)
	if err != nil {
		s.logger.Error("Failed to answer query", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "failed to answer query", err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.apiToken == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) == 1
}

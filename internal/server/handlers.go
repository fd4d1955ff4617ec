package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logCtx := loggerFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "A PDF file must be sent in the 'file' form field."})
		return
	}
	defer file.Close()

	id := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(id), ".pdf") {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Only PDF files are supported."})
		return
	}
	logCtx = logCtx.With("documentId", id)
	logCtx.Info("Upload received.", "size", header.Size)

	// Processing outlives a client that stops waiting for the response.
	outcome, err := s.processor.Process(context.WithoutCancel(r.Context()), logCtx, id, file)
	if err != nil {
		var pe *models.ProcessingError
		if errors.As(err, &pe) {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Detail: pe.Reason})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.NewUploadResponse(outcome))
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, models.StatusResponse{FileID: id, Status: s.store.Get(id).String()})
}

// handleSetStatus overrides a document's stage, e.g. to Stopped.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	raw := r.URL.Query().Get("status")
	stage, err := models.ParseStage(raw)
	if err != nil || raw == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid status %q.", raw)})
		return
	}
	s.store.Update(id, stage)
	loggerFrom(r.Context()).Info("Status set manually.", "documentId", id, "stage", stage.String())
	writeJSON(w, http.StatusOK, models.SetStatusResponse{Message: fmt.Sprintf("Status for %s set to %s", id, stage)})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body."})
		return
	}
	resp, err := s.asker.Ask(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, models.ErrInvalidRequest):
			code = http.StatusBadRequest
		case errors.Is(err, models.ErrNotProcessed):
			code = http.StatusNotFound
		case errors.Is(err, models.ErrBackendUnavailable):
			code = http.StatusServiceUnavailable
		}
		loggerFrom(r.Context()).Warn("Question not answered.", "documentId", req.FileID, "error", err)
		writeJSON(w, code, models.ErrorResponse{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

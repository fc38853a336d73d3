// Package server exposes the translation pipeline over HTTP: file upload
// and lifecycle, unit review, glossary and translation-memory management,
// live progress via server-sent events, and Prometheus metrics.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valpere/transflow/internal"
	"github.com/valpere/transflow/internal/detector"
	"github.com/valpere/transflow/internal/extractor"
	"github.com/valpere/transflow/internal/orchestrator"
	"github.com/valpere/transflow/internal/progress"
	"github.com/valpere/transflow/internal/store"
)

// maxUploadBytes bounds the multipart upload size.
const maxUploadBytes = 32 << 20

type Server struct {
	router chi.Router
	store  *store.Store
	orch   *orchestrator.Orchestrator
	ext    *extractor.Extractor
	det    *detector.Detector
	hub    *progress.Hub
	log    *slog.Logger
}

func New(st *store.Store, orch *orchestrator.Orchestrator, ext *extractor.Extractor, det *detector.Detector, hub *progress.Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		store:  st,
		orch:   orch,
		ext:    ext,
		det:    det,
		hub:    hub,
		log:    log.With("component", "server"),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/files", s.handleUpload)
		r.Get("/files", s.handleListFiles)
		r.Get("/files/{id}", s.handleGetFile)
		r.Delete("/files/{id}", s.handleDeleteFile)
		r.Post("/files/{id}/parse", s.handleParse)
		r.Post("/files/{id}/translate", s.handleTranslate)
		r.Get("/files/{id}/units", s.handleListUnits)

		r.Post("/units/{id}/confirm", s.handleConfirmUnit)

		r.Get("/glossary", s.handleListGlossary)
		r.Post("/glossary", s.handleAddGlossary)
		r.Delete("/glossary/{id}", s.handleDeleteGlossary)

		r.Get("/memory", s.handleListMemory)
		r.Delete("/memory/{id}", s.handleDeleteMemory)

		r.Get("/events", s.handleEvents)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"dur", time.Since(start),
			"remote", r.RemoteAddr)
	})
}

// handleUpload accepts a multipart form with a "file" part plus project_id,
// type, source_lang and target_lang fields. Text is extracted immediately;
// an empty source_lang triggers language detection on the extracted text.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload: %w", err))
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing file part: %w", err))
		return
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	fileType := internal.FileType(r.FormValue("type"))
	if fileType == "" {
		fileType = internal.FileWork
	}
	if fileType != internal.FileWork && fileType != internal.FileReference {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid file type %q", fileType))
		return
	}

	targetLang := r.FormValue("target_lang")
	if fileType == internal.FileWork && targetLang == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("target_lang is required for work files"))
		return
	}

	content, err := s.ext.Extract(r.Context(), header.Filename, data)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("failed to extract text: %w", err))
		return
	}

	sourceLang := r.FormValue("source_lang")
	if sourceLang == "" && s.det != nil {
		if code, ok := s.det.DetectISO(content); ok {
			sourceLang = code
		}
	}
	if sourceLang == "" {
		s.writeError(w, http.StatusUnprocessableEntity, errors.New("could not detect source language, pass source_lang"))
		return
	}

	f := &internal.File{
		ID:               uuid.New().String(),
		ProjectID:        r.FormValue("project_id"),
		Name:             header.Filename,
		Content:          content,
		Type:             fileType,
		SourceLang:       sourceLang,
		TargetLang:       targetLang,
		ProcessingStatus: internal.StatusUploaded,
	}
	if f.ProjectID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("project_id is required"))
		return
	}

	if err := s.store.CreateFile(r.Context(), f); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to store file: %w", err))
		return
	}

	s.log.Info("file uploaded", "file_id", f.ID, "name", f.Name, "source_lang", f.SourceLang)
	s.writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("project_id is required"))
		return
	}
	files, err := s.store.ListFiles(r.Context(), projectID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFile(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orch.StartParse(r.Context(), id); err != nil {
		s.writePipelineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"file_id": id, "status": string(internal.StatusParsing)})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orch.StartTranslate(r.Context(), id); err != nil {
		s.writePipelineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"file_id": id, "status": string(internal.StatusTranslating)})
}

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetFile(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	units, err := s.store.ListUnits(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, units)
}

func (s *Server) handleConfirmUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.orch.ConfirmUnit(r.Context(), id, req.Target); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err)
		case errors.Is(err, orchestrator.ErrInvalidState):
			s.writeError(w, http.StatusUnprocessableEntity, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	u, err := s.store.GetUnit(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleListGlossary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	terms, err := s.store.ListGlossaryTerms(r.Context(), q.Get("source_lang"), q.Get("target_lang"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, terms)
}

func (s *Server) handleAddGlossary(w http.ResponseWriter, r *http.Request) {
	var t internal.GlossaryTerm
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if t.Source == "" || t.Target == "" || t.SourceLang == "" || t.TargetLang == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("source, target, source_lang and target_lang are required"))
		return
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if err := s.store.AddGlossaryTerm(r.Context(), &t); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteGlossary(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGlossaryTerm(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMemory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListMemory(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMemory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams progress events for one file or one project as
// server-sent events. Exactly one of file_id and project_id must be set.
// Events published before the client connected are not replayed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fileID, projectID := q.Get("file_id"), q.Get("project_id")
	if (fileID == "") == (projectID == "") {
		s.writeError(w, http.StatusBadRequest, errors.New("pass exactly one of file_id or project_id"))
		return
	}
	if s.hub == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("event streaming is not enabled"))
		return
	}

	buffer, _ := strconv.Atoi(q.Get("buffer"))
	var (
		ch     <-chan internal.ProgressEvent
		cancel func()
	)
	if fileID != "" {
		ch, cancel = s.hub.SubscribeFile(fileID, buffer)
	} else {
		ch, cancel = s.hub.SubscribeProject(projectID, buffer)
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// ResponseController finds the underlying Flusher through wrapping
	// middleware.
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	ctx := r.Context()
	s.log.Debug("event stream opened", "file_id", fileID, "project_id", projectID, "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("event stream closed", "file_id", fileID, "project_id", projectID)
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Error("failed to serialize progress event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			_ = rc.Flush()
		}
	}
}

// --- response helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "error", err)
	} else {
		s.log.Warn("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, orchestrator.ErrFileBusy):
		s.writeError(w, http.StatusConflict, err)
	case errors.Is(err, orchestrator.ErrInvalidState):
		s.writeError(w, http.StatusConflict, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

// Package api exposes the profiling service over HTTP: submit a table, get
// the report back, list/fetch/delete stored reports.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goprofile/adapters/memtable"
	"goprofile/app"
	"goprofile/domain/core"
	"goprofile/internal"
	"goprofile/internal/errors"
	"goprofile/ports"
)

// Server routes profiling requests to the application service.
type Server struct {
	svc    *app.ProfileService
	log    *internal.Logger
	router chi.Router
}

// NewServer wires routes and middleware.
func NewServer(svc *app.ProfileService) *Server {
	s := &Server{svc: svc, log: internal.DefaultLogger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Post("/profile", s.handleProfile)
	r.Get("/reports", s.handleListReports)
	r.Get("/reports/{id}", s.handleGetReport)
	r.Delete("/reports/{id}", s.handleDeleteReport)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// profileRequest is a JSON-submitted table: parallel column arrays, null
// cells marking missing values.
type profileRequest struct {
	Columns []struct {
		Name   string `json:"name"`
		Values []any  `json:"values"`
	} `json:"columns"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("request body is not a valid table"))
		return
	}
	columns := make([]*memtable.Column, 0, len(req.Columns))
	for _, col := range req.Columns {
		columns = append(columns, memtable.AnyColumn(col.Name, col.Values))
	}
	tbl, err := memtable.New(columns...)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.svc.ProfileAndSave(r.Context(), tbl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.ListReports(r.Context(), 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []ports.ReportSummary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	report, err := s.svc.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	if err := s.svc.DeleteReport(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch {
	case core.IsNotFoundError(err), code == errors.CodeNotFound:
		status = http.StatusNotFound
	case core.IsInputError(err), core.IsConfigError(err):
		status = http.StatusBadRequest
	case code == errors.CodeInvalidInput, code == errors.CodeInvalidSort,
		code == errors.CodeUnknownEngine, code == errors.CodeConfigInvalid,
		code == errors.CodeUnsupportedInput:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}

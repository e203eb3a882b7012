package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/mealplan/internal/core"
	"github.com/JonMunkholm/mealplan/internal/logging"
)

// maxRecordBody bounds one record payload.
const maxRecordBody = 1 << 20

type recordsResponse struct {
	Collection core.CollectionKey `json:"collection"`
	Records    []core.Record      `json:"records"`
}

type idResponse struct {
	ID string `json:"id"`
}

// handleListRecords serves GET /api/collections/{collection}.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	key := collectionParam(r)

	records, err := s.service.ListRecords(r.Context(), callerOf(r), key)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if records == nil {
		records = []core.Record{}
	}

	writeJSON(w, r, http.StatusOK, recordsResponse{Collection: key, Records: records})
}

// handleCreateRecord serves POST /api/collections/{collection}.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	id, err := s.service.CreateRecord(r.Context(), callerOf(r), collectionParam(r), fields)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusCreated, idResponse{ID: id})
}

// handleUpdateRecord serves PATCH /api/collections/{collection}/{id}.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.service.UpdateRecord(r.Context(), callerOf(r), collectionParam(r), id, fields); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, idResponse{ID: id})
}

// handleDeleteRecord serves DELETE /api/collections/{collection}/{id}.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteRecord(r.Context(), callerOf(r), collectionParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSummary serves GET /api/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context(), callerOf(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

type healthResponse struct {
	Status  string              `json:"status"`
	Exports *core.LimiterStatus `json:"exports,omitempty"`
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Exports = &st
	}

	if err := s.service.Ping(r.Context()); err != nil {
		resp.Status = "unavailable"
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		writeJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// decodeRecord reads a JSON object of record fields.
func decodeRecord(w http.ResponseWriter, r *http.Request) (core.Record, error) {
	var fields core.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBody))
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: null body", core.ErrInvalidRecord)
	}
	return fields, nil
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/embedding"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/ranking"
	"github.com/hyperjump/senko/internal/segmenter"
	"github.com/hyperjump/senko/internal/storage"
	"github.com/hyperjump/senko/internal/vector"
)

// defaultBatchTopN is the shortlist size when a batch request omits top_n.
const defaultBatchTopN = 10

type analyzeRequest struct {
	ResumeID   string `json:"resume_id,omitempty"`
	JobID      string `json:"job_id,omitempty"`
	ResumeText string `json:"resume_text"`
	JobText    string `json:"job_text"`
}

type batchRequest struct {
	JobText string                `json:"job_text"`
	Resumes []ranking.ResumeInput `json:"resumes"`
	TopN    int                   `json:"top_n,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("analyze request",
		zap.String("resume_id", req.ResumeID), zap.String("job_id", req.JobID))

	result, err := s.engine.AnalyzeSingleID(r.Context(), req.ResumeID, req.ResumeText, req.JobID, req.JobText)
	if err != nil {
		s.logger.Error("analyze failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	s.persist(r, storage.NewSingleRun(result, storage.ModeSingle), result)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TopN == 0 {
		req.TopN = defaultBatchTopN
	}
	s.logger.Debug("batch request",
		zap.Int("resumes", len(req.Resumes)), zap.Int("top_n", req.TopN))

	batch, err := s.engine.AnalyzeBatch(r.Context(), req.Resumes, req.JobText, req.TopN)
	if err != nil {
		s.logger.Error("batch failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	s.persist(r, storage.NewBatchRun(batch), batch.Ranked...)
	s.respondJSON(w, http.StatusOK, batch)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run history not configured")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*storage.Run{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run history not configured")
		return
	}
	id := chi.URLParam(r, "runID")

	run, results, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "run not found")
			return
		}
		s.logger.Error("get run failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"run": run, "results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"version": s.version,
	}
	if s.store != nil {
		runCount, err := s.store.CountRuns(r.Context())
		if err != nil {
			s.logger.Error("status: count runs failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["runs"] = runCount
	}

	configInfo := map[string]interface{}{
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"chunk_max_length":     s.config.Segmenter.ChunkMaxLength,
		"max_parallelism":      s.config.Engine.MaxParallelism,
		"database_path":        s.config.Storage.DatabasePath,
		"index_path":           s.config.Storage.IndexPath,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.IndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

// persist saves a run record with its results. Persistence is best effort;
// failures are logged and never surface to the API client.
func (s *Server) persist(r *http.Request, run *storage.Run, results ...*models.AnalysisResult) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRun(r.Context(), run, results); err != nil {
		s.logger.Warn("run persistence failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// statusFor maps analysis errors onto HTTP status codes. Caller mistakes are
// 400s, a broken embedding backend is a 502, anything else a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, segmenter.ErrEmptyDocument),
		errors.Is(err, vector.ErrEmptyJobDescription),
		errors.Is(err, config.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, embedding.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

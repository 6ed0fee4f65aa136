// Package api exposes the analysis engine over HTTP. Handlers stay
// thin: decode, delegate, map errors onto the shared taxonomy.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/echomind/config"
	"github.com/spacesedan/echomind/internal/agent"
	"github.com/spacesedan/echomind/internal/analytics"
	"github.com/spacesedan/echomind/internal/clients"
	"github.com/spacesedan/echomind/internal/db"
	"github.com/spacesedan/echomind/internal/engine"
	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/export"
	"github.com/spacesedan/echomind/internal/models"
)

const (
	maxUploadBytes      = 25 << 20
	analyticsQueryLimit = 10000
	analyticsCacheTTL   = 30 * time.Second
)

// Cache key per analytics payload. Trend keys are parameterized by the
// day window, so invalidation drops the common windows explicitly.
const (
	cacheKeyStats    = "analytics:stats"
	cacheKeyEmotions = "analytics:emotions"
	cacheKeyWeekly   = "analytics:weekly"
	cacheKeyMonthly  = "analytics:monthly"
	cacheKeyWarnings = "analytics:warnings"
)

var trendCacheDays = []int{7, 30, 90}

type Server struct {
	store  *db.Store
	engine *engine.Engine
	agent  *agent.Agent
	cache  *clients.ValkeyClient
	policy config.Policy
	now    func() time.Time
}

func NewServer(store *db.Store, eng *engine.Engine, chatAgent *agent.Agent,
	cache *clients.ValkeyClient, policy config.Policy,
) *Server {
	return &Server{
		store:  store,
		engine: eng,
		agent:  chatAgent,
		cache:  cache,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /analyze/media", s.handleAnalyzeMedia)
	mux.HandleFunc("POST /summarize", s.handleSummarize)

	mux.HandleFunc("GET /chats", s.handleListChats)
	mux.HandleFunc("GET /chats/filtered", s.handleFilteredChats)
	mux.HandleFunc("GET /chats/count", s.handleCount)
	mux.HandleFunc("DELETE /chats/{id}", s.handleDelete)

	mux.HandleFunc("GET /chats/analytics/stats", s.handleStats)
	mux.HandleFunc("GET /chats/analytics/trends", s.handleTrends)
	mux.HandleFunc("GET /chats/analytics/emotions", s.handleEmotions)
	mux.HandleFunc("GET /chats/reports/weekly", s.handleWeeklyReport)
	mux.HandleFunc("GET /chats/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /chats/warning-signs", s.handleWarnings)
	mux.HandleFunc("GET /chats/export/csv", s.handleExportCSV)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return logRequests(mux)
}

// logRequests tags every request with a correlation id, echoed back in
// the X-Request-ID header and attached to the request log line.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("[API] Request handled",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}

type askRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.ValidationWrap(err, "invalid request body"))
		return
	}

	result, err := s.engine.Chat(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateAnalytics(r)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errs.ValidationWrap(err, "invalid multipart upload"))
		return
	}

	kind := models.MediaKind(r.FormValue("kind"))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errs.ValidationWrap(err, "missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errs.ValidationWrap(err, "failed to read upload"))
		return
	}

	analysis, err := s.engine.AnalyzeMedia(r.Context(), models.MediaUpload{
		Kind:     kind,
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if analysis.Persisted {
		s.invalidateAnalytics(r)
	}
	writeJSON(w, http.StatusOK, analysis)
}

type summarizeResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}

// handleSummarize always answers 200: a failed summary is reported
// inside the payload so clients render it like any other summary text.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Query(r.Context(), db.RecordFilter{
		SortBy: db.SortByTimestamp,
		Limit:  20,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, summarizeResponse{Error: "failed to load conversation history"})
		return
	}

	summary, err := s.agent.Summarize(r.Context(), records)
	if err != nil {
		slog.Warn("[API] Summary generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, summarizeResponse{Error: "summary generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	records, err := s.store.Query(r.Context(), db.RecordFilter{
		SortBy: db.SortByTimestamp,
		Limit:  limit,
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleFilteredChats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := s.store.Query(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func filterFromQuery(r *http.Request) (db.RecordFilter, error) {
	filter := db.RecordFilter{
		SortBy:    db.SortField(r.URL.Query().Get("sort_by")),
		Ascending: r.URL.Query().Get("order") == "asc",
		Offset:    queryInt(r, "offset", 0),
		Limit:     queryInt(r, "limit", 100),
	}

	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errs.ValidationWrap(err, "invalid since timestamp")
		}
		filter.Since = &t
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errs.ValidationWrap(err, "invalid until timestamp")
		}
		filter.Until = &t
	}
	if raw := r.URL.Query().Get("modality"); raw != "" {
		m := models.Modality(raw)
		filter.Modality = &m
	}
	if raw := r.URL.Query().Get("min_sentiment"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errs.ValidationWrap(err, "invalid min_sentiment")
		}
		filter.MinSentiment = &f
	}
	if raw := r.URL.Query().Get("max_sentiment"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errs.ValidationWrap(err, "invalid max_sentiment")
		}
		filter.MaxSentiment = &f
	}
	return filter, nil
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, errs.Validation("invalid record id %q", r.PathValue("id")))
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateAnalytics(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var cached models.Stats
	if s.cache.FetchJSON(r.Context(), cacheKeyStats, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.allRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}

	stats := analytics.ComputeStats(records, s.now())
	s.cache.CacheJSON(r.Context(), cacheKeyStats, stats, analyticsCacheTTL)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days <= 0 {
		writeError(w, errs.Validation("days must be positive"))
		return
	}
	key := fmt.Sprintf("analytics:trends:%d", days)

	var cached []models.TrendPoint
	if s.cache.FetchJSON(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.allRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}

	trends := analytics.ComputeTrends(records, s.now(), days)
	s.cache.CacheJSON(r.Context(), key, trends, analyticsCacheTTL)
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handleEmotions(w http.ResponseWriter, r *http.Request) {
	var cached map[string]int
	if s.cache.FetchJSON(r.Context(), cacheKeyEmotions, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.allRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}

	histogram := analytics.EmotionHistogram(records)
	s.cache.CacheJSON(r.Context(), cacheKeyEmotions, histogram, analyticsCacheTTL)
	writeJSON(w, http.StatusOK, histogram)
}

func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	var cached models.WeeklyReport
	if s.cache.FetchJSON(r.Context(), cacheKeyWeekly, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.allRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report := analytics.ComputeWeeklyReport(records, s.now())
	s.cache.CacheJSON(r.Context(), cacheKeyWeekly, report, analyticsCacheTTL)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	var cached models.MonthlyReport
	if s.cache.FetchJSON(r.Context(), cacheKeyMonthly, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.allRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report := analytics.ComputeMonthlyReport(records, s.now())
	s.cache.CacheJSON(r.Context(), cacheKeyMonthly, report, analyticsCacheTTL)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	var cached models.WarningReport
	if s.cache.FetchJSON(r.Context(), cacheKeyWarnings, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.allRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report := analytics.DetectWarnings(records, s.now(), s.policy)
	s.cache.CacheJSON(r.Context(), cacheKeyWarnings, report, analyticsCacheTTL)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter := db.RecordFilter{
		SortBy:    db.SortByTimestamp,
		Ascending: true,
		Limit:     analyticsQueryLimit,
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, errs.ValidationWrap(err, "invalid since timestamp"))
			return
		}
		filter.Since = &t
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, errs.ValidationWrap(err, "invalid until timestamp"))
			return
		}
		filter.Until = &t
	}

	records, err := s.store.Query(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="echomind_export_%s.csv"`, s.now().Format("2006-01-02")))
	if err := export.WriteRecords(w, records); err != nil {
		slog.Error("[API] CSV export failed", slog.String("error", err.Error()))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Count(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// allRecords loads the analytics working set, newest first. The bounded
// limit keeps a pathological store from buffering unbounded memory.
func (s *Server) allRecords(r *http.Request) ([]models.AnalysisRecord, error) {
	return s.store.Query(r.Context(), db.RecordFilter{
		SortBy: db.SortByTimestamp,
		Limit:  analyticsQueryLimit,
	})
}

func (s *Server) invalidateAnalytics(r *http.Request) {
	keys := []string{cacheKeyStats, cacheKeyEmotions, cacheKeyWeekly, cacheKeyMonthly, cacheKeyWarnings}
	for _, days := range trendCacheDays {
		keys = append(keys, fmt.Sprintf("analytics:trends:%d", days))
	}
	s.cache.InvalidateAnalytics(r.Context(), keys...)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("[API] Failed to encode response", slog.String("error", err.Error()))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errs.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		slog.Error("[API] Internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}


package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trend-collector/internal/collector"
	"trend-collector/internal/models"
	"trend-collector/internal/source"
	"trend-collector/internal/store"
	"trend-collector/pkg/logger"
)

// TrendService is the subset of service.Service the handlers call.
type TrendService interface {
	CollectTrends(ctx context.Context, opts collector.Options) (*models.Snapshot, error)
	GetTrends(ctx context.Context, date string, forceCollect bool) (*models.Snapshot, error)
	GetEconomyReport(ctx context.Context, includeGlobal bool) *models.EconomyReport
	GetWeeklyReport(ctx context.Context, endDate string) (*models.WeeklyReport, error)
	StartBackgroundCollection(intervalHours int) bool
	StopBackgroundCollection() bool
	BackgroundRunning() bool
}

// Server holds dependencies for the HTTP handlers.
type Server struct {
	svc TrendService
	log *logger.Logger
	mux *http.ServeMux
}

func New(svc TrendService, l *logger.Logger) *Server {
	s := &Server{svc: svc, log: l, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler wraps the server with request logging.
func (s *Server) Handler() http.Handler {
	return logRequest(s.log, s)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/trends", s.handleTrends)
	s.mux.HandleFunc("POST /api/collect", s.handleCollect)
	s.mux.HandleFunc("GET /api/economy", s.handleEconomy)
	s.mux.HandleFunc("GET /api/weekly", s.handleWeekly)

	s.mux.HandleFunc("POST /api/background/start", s.handleBackgroundStart)
	s.mux.HandleFunc("POST /api/background/stop", s.handleBackgroundStop)
}

type message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type trendsResponse struct {
	*models.Snapshot
	Date        string   `json:"date"`
	TopKeywords []string `json:"top_keywords"`
}

type categoryResponse struct {
	CollectedAt time.Time `json:"collected_at"`
	Category    string    `json:"category"`
	TopKeywords []string  `json:"top_keywords"`
}

type collectResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	CollectedAt time.Time `json:"collected_at"`
	Sources     []string  `json:"sources"`
	TopKeywords []string  `json:"top_keywords"`
}

type backgroundResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Running bool   `json:"running"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"background": s.svc.BackgroundRunning(),
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date))
			return
		}
	}

	snap, err := s.svc.GetTrends(r.Context(), date, parseBool(q.Get("force"), false))
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	if cat := q.Get("category"); cat != "" && cat != "all" {
		if kws, ok := snap.CategoryKeywords[cat]; ok {
			writeJSON(w, http.StatusOK, categoryResponse{
				CollectedAt: snap.CollectedAt,
				Category:    cat,
				TopKeywords: kws,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, trendsResponse{
		Snapshot:    snap,
		Date:        snap.Date(),
		TopKeywords: snap.TopKeywords(),
	})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var opts collector.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// a client hanging up must not abort the pass
	snap, err := s.svc.CollectTrends(context.WithoutCancel(r.Context()), opts)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collectResponse{
		Success:     true,
		Message:     "collection complete: " + snap.CollectedAt.Format(time.DateTime),
		CollectedAt: snap.CollectedAt,
		Sources:     snap.Sources,
		TopKeywords: snap.TopKeywords(),
	})
}

func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	includeGlobal := parseBool(r.URL.Query().Get("include_global"), true)
	writeJSON(w, http.StatusOK, s.svc.GetEconomyReport(r.Context(), includeGlobal))
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.GetWeeklyReport(r.Context(), r.URL.Query().Get("end_date"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleBackgroundStart(w http.ResponseWriter, r *http.Request) {
	hours := 0
	if v := r.URL.Query().Get("interval_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "interval_hours must be a positive integer")
			return
		}
		hours = n
	}
	if !s.svc.StartBackgroundCollection(hours) {
		writeJSON(w, http.StatusConflict, backgroundResponse{Message: "background collection already running", Running: true})
		return
	}
	s.log.Infof("background collection started via api")
	writeJSON(w, http.StatusOK, backgroundResponse{Success: true, Message: "background collection started", Running: true})
}

func (s *Server) handleBackgroundStop(w http.ResponseWriter, _ *http.Request) {
	msg := "background collection was not running"
	if s.svc.StopBackgroundCollection() {
		msg = "background collection stopped"
	}
	writeJSON(w, http.StatusOK, backgroundResponse{Success: true, Message: msg})
}

// writeFailure maps service errors onto status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		invalid *source.InvalidCategoryError
		parse   *time.ParseError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid), errors.Is(err, collector.ErrUnknownSource), errors.As(err, &parse):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(v) {
	case "true", "1", "on", "yes":
		return true
	case "false", "0", "off", "no":
		return false
	}
	return fallback
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, message{Success: false, Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logRequest(l *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		l.WithField("elapsed", time.Since(start)).Infof("%s %s", r.Method, r.URL.Path)
	})
}


package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trend-collector/internal/api"
	"trend-collector/internal/collector"
	"trend-collector/internal/models"
	"trend-collector/internal/source"
	"trend-collector/internal/store"
	"trend-collector/pkg/logger"
)

type fakeService struct {
	snap       *models.Snapshot
	collectErr error
	gotOpts    collector.Options
	gotCtxErr  error
	gotForce   bool
	gotGlobal  bool
	weeklyErr  error
	running    bool
	gotHours   int
}

func (f *fakeService) CollectTrends(ctx context.Context, opts collector.Options) (*models.Snapshot, error) {
	f.gotOpts = opts
	f.gotCtxErr = ctx.Err()
	if f.collectErr != nil {
		return nil, f.collectErr
	}
	return f.snap, nil
}

func (f *fakeService) GetTrends(_ context.Context, date string, force bool) (*models.Snapshot, error) {
	f.gotForce = force
	if f.snap == nil || (date != "" && date != f.snap.Date()) {
		if date == "" {
			date = "2024-06-10"
		}
		return nil, &store.NotFoundError{Date: date}
	}
	return f.snap, nil
}

func (f *fakeService) GetEconomyReport(_ context.Context, includeGlobal bool) *models.EconomyReport {
	f.gotGlobal = includeGlobal
	return &models.EconomyReport{Date: "2024-06-10", Keywords: []string{"금리"}}
}

func (f *fakeService) GetWeeklyReport(_ context.Context, endDate string) (*models.WeeklyReport, error) {
	if f.weeklyErr != nil {
		return nil, f.weeklyErr
	}
	return &models.WeeklyReport{Period: models.Period{Start: "2024-06-04", End: endDate}, TopKeywords: []string{"금리"}}, nil
}

func (f *fakeService) StartBackgroundCollection(hours int) bool {
	if f.running {
		return false
	}
	f.running, f.gotHours = true, hours
	return true
}

func (f *fakeService) StopBackgroundCollection() bool {
	was := f.running
	f.running = false
	return was
}

func (f *fakeService) BackgroundRunning() bool { return f.running }

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		CollectedAt:     time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC),
		Sources:         []string{"naver", "daum"},
		News:            []models.RawRecord{{Title: "금리 인상", Category: "economy", Source: "naver-news"}},
		OverallKeywords: []string{"금리", "주식", "환율"},
		CategoryKeywords: map[string][]string{
			"economy": {"금리", "환율"},
		},
	}
}

func do(t *testing.T, srv http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := api.New(&fakeService{}, logger.Discard()).Handler()
	rec := do(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "ok" {
		t.Fatalf("unexpected status %v", got)
	}
}

func TestTrends(t *testing.T) {
	fs := &fakeService{snap: testSnapshot()}
	srv := api.New(fs, logger.Discard())

	rec := do(t, srv, http.MethodGet, "/api/trends?force=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !fs.gotForce {
		t.Fatal("force flag not passed through")
	}
	body := decode(t, rec)
	if body["date"] != "2024-06-10" || len(body["top_keywords"].([]any)) != 3 || len(body["news"].([]any)) != 1 {
		t.Fatalf("unexpected body %v", body)
	}

	rec = do(t, srv, http.MethodGet, "/api/trends?category=economy", nil)
	body = decode(t, rec)
	if body["category"] != "economy" || len(body["top_keywords"].([]any)) != 2 {
		t.Fatalf("unexpected category body %v", body)
	}

	// unknown category falls back to the whole snapshot
	rec = do(t, srv, http.MethodGet, "/api/trends?category=weather", nil)
	if _, ok := decode(t, rec)["overall_keywords"]; !ok {
		t.Fatal("want full snapshot for an unknown category")
	}
}

func TestTrendsNotFound(t *testing.T) {
	srv := api.New(&fakeService{snap: testSnapshot()}, logger.Discard())

	rec := do(t, srv, http.MethodGet, "/api/trends?date=2024-06-01", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false || !strings.Contains(body["message"].(string), "2024-06-01") {
		t.Fatalf("message should name the date: %v", body)
	}

	rec = do(t, srv, http.MethodGet, "/api/trends?date=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", rec.Code)
	}
}

func TestCollect(t *testing.T) {
	fs := &fakeService{snap: testSnapshot()}
	srv := api.New(fs, logger.Discard())

	body, _ := json.Marshal(collector.Options{Categories: []string{"economy"}, Sources: []string{"naver"}})
	rec := do(t, srv, http.MethodPost, "/api/collect", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decode(t, rec)
	if out["success"] != true || !strings.Contains(out["message"].(string), "2024-06-10 09:30:00") {
		t.Fatalf("unexpected body %v", out)
	}
	if len(fs.gotOpts.Categories) != 1 || fs.gotOpts.Sources[0] != "naver" {
		t.Fatalf("options not decoded: %+v", fs.gotOpts)
	}

	if rec := do(t, srv, http.MethodPost, "/api/collect", nil); rec.Code != http.StatusOK {
		t.Fatalf("empty body should collect everything, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/collect", []byte("{")); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/collect", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCollectFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid category", &collector.CollectionError{Err: &source.InvalidCategoryError{Source: "collector", Category: "weather"}}, http.StatusBadRequest},
		{"unknown source", &collector.CollectionError{Err: collector.ErrUnknownSource}, http.StatusBadRequest},
		{"disk full", &collector.CollectionError{Err: errors.New("persist: disk full")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := api.New(&fakeService{collectErr: tt.err}, logger.Discard())
			rec := do(t, srv, http.MethodPost, "/api/collect", []byte("{}"))
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			out := decode(t, rec)
			if out["success"] != false || out["message"] != tt.err.Error() {
				t.Fatalf("message should carry the cause: %v", out)
			}
		})
	}
}

func TestEconomy(t *testing.T) {
	fs := &fakeService{}
	srv := api.New(fs, logger.Discard())

	do(t, srv, http.MethodGet, "/api/economy", nil)
	if !fs.gotGlobal {
		t.Fatal("include_global defaults to true")
	}
	rec := do(t, srv, http.MethodGet, "/api/economy?include_global=false", nil)
	if fs.gotGlobal {
		t.Fatal("include_global=false not honoured")
	}
	if decode(t, rec)["economy_keywords"] == nil {
		t.Fatal("missing economy keywords")
	}
}

func TestWeekly(t *testing.T) {
	fs := &fakeService{}
	srv := api.New(fs, logger.Discard())

	rec := do(t, srv, http.MethodGet, "/api/weekly?end_date=2024-06-10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	_, perr := time.Parse(time.DateOnly, "june")
	fs.weeklyErr = perr
	if rec := do(t, srv, http.MethodGet, "/api/weekly?end_date=june", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBackground(t *testing.T) {
	fs := &fakeService{}
	srv := api.New(fs, logger.Discard())

	if rec := do(t, srv, http.MethodPost, "/api/background/start?interval_hours=x", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/background/start?interval_hours=6", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fs.gotHours != 6 {
		t.Fatalf("interval not passed, got %d", fs.gotHours)
	}
	if rec := do(t, srv, http.MethodPost, "/api/background/start", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while running, got %d", rec.Code)
	}

	rec := do(t, srv, http.MethodPost, "/api/background/stop", nil)
	if out := decode(t, rec); out["message"] != "background collection stopped" {
		t.Fatalf("unexpected stop body %v", out)
	}
	rec = do(t, srv, http.MethodPost, "/api/background/stop", nil)
	if out := decode(t, rec); out["success"] != true || out["running"] != false {
		t.Fatalf("stop should be idempotent, got %v", out)
	}
}

func TestCollectSurvivesClientHangup(t *testing.T) {
	fs := &fakeService{snap: testSnapshot()}
	srv := api.New(fs, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/collect", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if fs.gotCtxErr != nil {
		t.Fatalf("collection should not see the request cancellation, got %v", fs.gotCtxErr)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

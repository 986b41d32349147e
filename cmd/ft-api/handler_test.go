package main

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/engine/impl/vpc"
	"Go2FlowTag/internal/engine/manager"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/internal/query"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeQuerier struct {
	runs    []query.RunSummary
	reports map[string]*model.Report
	limit   int
}

func (q *fakeQuerier) ListRuns(_ context.Context, limit int) ([]query.RunSummary, error) {
	q.limit = limit
	return q.runs, nil
}

func (q *fakeQuerier) Report(_ context.Context, runID string) (*model.Report, error) {
	r, ok := q.reports[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", query.ErrRunNotFound, runID)
	}
	return r, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestHandler(t *testing.T, q query.Querier, pipeline config.PipelineConfig) http.Handler {
	t.Helper()
	m, err := manager.New(vpc.New(), nil, nil)
	require.NoError(t, err)
	return newRouter(&APIHandler{runner: m, querier: q, pipeline: pipeline}, prometheus.NewRegistry())
}

func decodeStruct(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var s structpb.Struct
	require.NoError(t, protojson.Unmarshal(body, &s))
	return s.AsMap()
}

func TestAnalyzeHandler(t *testing.T) {
	dir := t.TempDir()
	flowLog := writeFile(t, dir, "flowlogs.txt",
		"2 123456789012 eni-1 10.0.0.1 10.0.0.2 443 25 6 1 1 1 2 ACCEPT OK\n"+
			"2 123456789012 eni-1 10.0.0.1 10.0.0.2 443 9999 17 1 1 1 2 ACCEPT OK\n")
	lookup := writeFile(t, dir, "lookup.txt", "25,tcp,sv_P1\n")
	h := newTestHandler(t, nil, config.PipelineConfig{})

	body := fmt.Sprintf(`{"flow_log_path": %q, "lookup_path": %q}`, flowLog, lookup)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	m := decodeStruct(t, rec.Body.Bytes())
	assert.Equal(t, map[string]interface{}{"sv_p1": 1.0, "untagged": 1.0}, m["tag_counts"])
	assert.Equal(t, "default", m["format"])
}

func TestAnalyzeHandler_ConfiguredDefaults(t *testing.T) {
	dir := t.TempDir()
	pipeline := config.PipelineConfig{
		FlowLogPath: writeFile(t, dir, "flowlogs.txt", "2 1 eni-1 - - - 0 1 - - - 5 NODATA NODATA\n"),
		LookupPath:  writeFile(t, dir, "lookup.txt", "0,icmp,ping\n"),
	}
	h := newTestHandler(t, nil, pipeline)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decodeStruct(t, rec.Body.Bytes())
	assert.Equal(t, map[string]interface{}{"ping": 1.0}, m["tag_counts"])
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	h := newTestHandler(t, nil, config.PipelineConfig{})
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"flow_log_path":`, http.StatusBadRequest},
		{"missing paths", `{}`, http.StatusBadRequest},
		{"unreadable source", fmt.Sprintf(`{"flow_log_path": %q, "lookup_path": %q}`, missing, missing), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRunsHandlers_NoQuerier(t *testing.T) {
	h := newTestHandler(t, nil, config.PipelineConfig{})
	for _, path := range []string{"/api/v1/runs", "/api/v1/runs/abc"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestListRunsHandler(t *testing.T) {
	q := &fakeQuerier{runs: []query.RunSummary{{
		RunID:       "run-1",
		Format:      "default",
		GeneratedAt: time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC),
		Tags:        3,
		TotalCount:  10,
	}}}
	h := newTestHandler(t, q, config.PipelineConfig{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, q.limit)

	runs, ok := decodeStruct(t, rec.Body.Bytes())["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)
	assert.Equal(t, map[string]interface{}{
		"run_id":       "run-1",
		"format":       "default",
		"generated_at": "2024-05-04T12:00:00Z",
		"tags":         3.0,
		"total_count":  10.0,
	}, runs[0])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunHandler(t *testing.T) {
	q := &fakeQuerier{reports: map[string]*model.Report{
		"run-1": {
			RunID:              "run-1",
			TagCounts:          map[string]uint64{"email": 2},
			PortProtocolCounts: map[model.PortProtocolKey]uint64{model.NewPortProtocolKey(25, "tcp"): 2},
		},
	}}
	h := newTestHandler(t, q, config.PipelineConfig{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decodeStruct(t, rec.Body.Bytes())
	assert.Equal(t, "run-1", m["run_id"])
	assert.Equal(t, map[string]interface{}{"email": 2.0}, m["tag_counts"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestHandler(t, nil, config.PipelineConfig{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

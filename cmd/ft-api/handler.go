package main

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/internal/query"
	"Go2FlowTag/internal/report"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// reportRunner runs one analysis and delivers the report to the writers.
type reportRunner interface {
	Run(ctx context.Context, flowLogPath, lookupPath string) (*model.Report, error)
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	runner   reportRunner
	querier  query.Querier // nil when no ClickHouse writer is configured
	pipeline config.PipelineConfig
}

// newRouter wires all routes. gatherer may be nil to disable /metrics.
func newRouter(h *APIHandler, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/analyze", h.analyzeHandler).Methods("POST")
	r.HandleFunc("/api/v1/runs", h.listRunsHandler).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}", h.getRunHandler).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return r
}

// analyzeHandler runs the pipeline on the requested files. Empty paths fall
// back to the configured pipeline paths.
func (h *APIHandler) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	var req structpb.Struct
	if len(body) > 0 {
		if err := protojson.Unmarshal(body, &req); err != nil {
			http.Error(w, fmt.Sprintf("failed to decode request: %v", err), http.StatusBadRequest)
			return
		}
	}

	flowLogPath := stringField(&req, "flow_log_path", h.pipeline.FlowLogPath)
	lookupPath := stringField(&req, "lookup_path", h.pipeline.LookupPath)
	if flowLogPath == "" || lookupPath == "" {
		http.Error(w, "flow_log_path and lookup_path are required", http.StatusBadRequest)
		return
	}

	rep, err := h.runner.Run(r.Context(), flowLogPath, lookupPath)
	switch {
	case errors.Is(err, model.ErrSourceUnreadable):
		http.Error(w, fmt.Sprintf("failed to analyze: %v", err), http.StatusBadRequest)
		return
	case err != nil && rep == nil:
		http.Error(w, fmt.Sprintf("failed to analyze: %v", err), http.StatusInternalServerError)
		return
	case err != nil:
		// The report was built but at least one writer failed.
		log.Printf("Warning: run %s delivered with errors: %v", rep.RunID, err)
	}

	s, err := report.ToStruct(rep)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode report: %v", err), http.StatusInternalServerError)
		return
	}
	writeProto(w, s)
}

// listRunsHandler lists the most recent stored runs.
func (h *APIHandler) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		http.Error(w, "no ClickHouse writer is configured, run history is unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, fmt.Sprintf("invalid limit '%s'", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.querier.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}

	items := make([]interface{}, 0, len(runs))
	for _, run := range runs {
		items = append(items, map[string]interface{}{
			"run_id":       run.RunID,
			"format":       run.Format,
			"generated_at": run.GeneratedAt.UTC().Format(time.RFC3339),
			"tags":         run.Tags,
			"total_count":  run.TotalCount,
		})
	}
	s, err := structpb.NewStruct(map[string]interface{}{"runs": items})
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode runs: %v", err), http.StatusInternalServerError)
		return
	}
	writeProto(w, s)
}

// getRunHandler returns the stored counts of one run.
func (h *APIHandler) getRunHandler(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		http.Error(w, "no ClickHouse writer is configured, run history is unavailable", http.StatusServiceUnavailable)
		return
	}

	runID := mux.Vars(r)["id"]
	rep, err := h.querier.Report(r.Context(), runID)
	if errors.Is(err, query.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query run: %v", err), http.StatusInternalServerError)
		return
	}

	s, err := report.ToStruct(rep)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode report: %v", err), http.StatusInternalServerError)
		return
	}
	writeProto(w, s)
}

func stringField(s *structpb.Struct, name, fallback string) string {
	if v, ok := s.GetFields()[name]; ok && v.GetStringValue() != "" {
		return v.GetStringValue()
	}
	return fallback
}

func writeProto(w http.ResponseWriter, m proto.Message) {
	jsonBytes, err := protojson.Marshal(m)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

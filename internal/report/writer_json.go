package report

import (
	"Go2FlowTag/internal/model"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
)

// JSONWriter writes each report to <rootPath>/<timestamp>/<run id>.json.
// It implements the model.Writer interface.
type JSONWriter struct {
	rootPath string
}

// NewJSONWriter creates a new JSON writer rooted at rootPath.
func NewJSONWriter(rootPath string) *JSONWriter {
	return &JSONWriter{rootPath: rootPath}
}

// Name returns the writer type.
func (w *JSONWriter) Name() string {
	return "json"
}

// Write serializes the report and stores it under a timestamped directory.
func (w *JSONWriter) Write(_ context.Context, r *model.Report) error {
	snapshotDir := filepath.Join(w.rootPath, r.GeneratedAt.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	s, err := ToStruct(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal report to json: %w", err)
	}

	filePath := filepath.Join(snapshotDir, r.RunID+".json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file '%s': %w", filePath, err)
	}

	log.Printf("Wrote JSON report for run %s to %s", r.RunID, filePath)
	return nil
}

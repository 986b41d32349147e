package report

import (
	"Go2FlowTag/internal/model"
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// TextWriter writes the plain-text tag and port/protocol report to a file.
// Writes are serialized and replace the file atomically, so concurrent runs
// never interleave their output. It implements the model.Writer interface.
type TextWriter struct {
	mu         sync.Mutex
	outputPath string
}

// NewTextWriter creates a text writer for the given output file.
func NewTextWriter(outputPath string) *TextWriter {
	return &TextWriter{outputPath: outputPath}
}

// Name returns the writer type.
func (w *TextWriter) Name() string {
	return "text"
}

// Write renders the report into the output file, replacing any previous content.
func (w *TextWriter) Write(_ context.Context, r *model.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.outputPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", w.outputPath, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := Render(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output file '%s': %w", w.outputPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file '%s': %w", w.outputPath, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set mode on output file '%s': %w", w.outputPath, err)
	}
	if err := os.Rename(tmp.Name(), w.outputPath); err != nil {
		return fmt.Errorf("failed to replace output file '%s': %w", w.outputPath, err)
	}

	log.Printf("Wrote %d tags and %d port/protocol combinations to %s", len(r.TagCounts), len(r.PortProtocolCounts), w.outputPath)
	return nil
}

// Render writes the two report sections. Rows are sorted so that identical
// inputs always produce identical output.
func Render(out io.Writer, r *model.Report) error {
	bw := bufio.NewWriter(out)

	fmt.Fprintln(bw, "Tag Counts:")
	fmt.Fprintln(bw, "Tag,Count")
	for _, tag := range r.SortedTags() {
		fmt.Fprintf(bw, "%s,%d\n", tag, r.TagCounts[tag])
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Port/Protocol Combination Counts:")
	fmt.Fprintln(bw, "Port,Protocol,Count")
	for _, key := range r.SortedKeys() {
		fmt.Fprintf(bw, "%d,%s,%d\n", key.Port, key.Protocol, r.PortProtocolCounts[key])
	}

	return bw.Flush()
}

package report

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/model"
	"context"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
)

// NATSWriter publishes each report to a NATS subject as a protobuf Struct.
// It implements the model.Writer interface.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter creates a new NATS publisher.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &NATSWriter{nc: nc, subject: cfg.Subject}, nil
}

// Name returns the writer type.
func (w *NATSWriter) Name() string {
	return "nats"
}

// Write serializes the report to Protobuf and publishes it, waiting for the
// server to acknowledge the flush.
func (w *NATSWriter) Write(ctx context.Context, r *model.Report) error {
	s, err := ToStruct(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := w.nc.Publish(w.subject, data); err != nil {
		return fmt.Errorf("failed to publish report to '%s': %w", w.subject, err)
	}
	if err := w.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}

	log.Printf("Published report for run %s to '%s'", r.RunID, w.subject)
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	if w.nc == nil {
		return nil
	}
	err := w.nc.Drain()
	log.Println("NATS connection drained and closed.")
	return err
}

package report

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/internal/pkg/chclient"
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseWriter inserts the report's two count tables into ClickHouse.
// It implements the model.Writer interface.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the report tables exist.
func NewClickHouseWriter(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := chclient.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := chclient.EnsureSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	log.Println("Successfully connected to ClickHouse and ensured report tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Name returns the writer type.
func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write inserts one row per tag and one row per port/protocol key, tagged with the run ID.
func (w *ClickHouseWriter) Write(ctx context.Context, r *model.Report) error {
	if len(r.TagCounts) > 0 {
		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+chclient.TagCountsTable)
		if err != nil {
			return fmt.Errorf("failed to prepare tag batch: %w", err)
		}
		rows := make([][]interface{}, 0, len(r.TagCounts))
		for _, tag := range r.SortedTags() {
			rows = append(rows, []interface{}{r.GeneratedAt, r.RunID, r.Format, tag, r.TagCounts[tag]})
		}
		if err := sendBatch(batch, "tag", rows); err != nil {
			return err
		}
	}

	if len(r.PortProtocolCounts) > 0 {
		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+chclient.PortProtocolCountsTable)
		if err != nil {
			return fmt.Errorf("failed to prepare port/protocol batch: %w", err)
		}
		keys := r.SortedKeys()
		rows := make([][]interface{}, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, []interface{}{r.GeneratedAt, r.RunID, r.Format, int32(key.Port), key.Protocol, r.PortProtocolCounts[key]})
		}
		if err := sendBatch(batch, "port/protocol", rows); err != nil {
			return err
		}
	}

	log.Printf("Wrote %d tag rows and %d port/protocol rows to ClickHouse for run %s", len(r.TagCounts), len(r.PortProtocolCounts), r.RunID)
	return nil
}

// rowBatch is the part of driver.Batch used to send one table's rows.
type rowBatch interface {
	Append(v ...any) error
	Abort() error
	Send() error
}

// sendBatch appends all rows and sends the batch. A failed append aborts the
// batch so its connection goes back to the pool.
func sendBatch(batch rowBatch, kind string, rows [][]interface{}) error {
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			if abortErr := batch.Abort(); abortErr != nil {
				log.Printf("Warning: failed to abort %s batch: %v", kind, abortErr)
			}
			return fmt.Errorf("failed to append %s count to batch: %w", kind, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send %s batch: %w", kind, err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

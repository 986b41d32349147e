package report

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/model"
	"context"
	"log"
)

// NewWriters creates all enabled writers from the config. A writer that
// cannot be created is logged and skipped so the remaining ones still run.
func NewWriters(ctx context.Context, defs []config.WriterDef) []model.Writer {
	writers := make([]model.Writer, 0, len(defs))
	for _, writerDef := range defs {
		if !writerDef.Enabled {
			continue
		}

		var writer model.Writer
		switch writerDef.Type {
		case "text":
			writer = NewTextWriter(writerDef.Text.OutputPath)
		case "json":
			writer = NewJSONWriter(writerDef.JSON.RootPath)
		case "clickhouse":
			w, err := NewClickHouseWriter(ctx, writerDef.ClickHouse)
			if err != nil {
				log.Printf("Warning: failed to create writer type '%s': %v, skipping.", writerDef.Type, err)
				continue
			}
			log.Printf("ClickHouse writer created for database %s at %s:%d", writerDef.ClickHouse.Database, writerDef.ClickHouse.Host, writerDef.ClickHouse.Port)
			writer = w
		case "nats":
			w, err := NewNATSWriter(writerDef.NATS)
			if err != nil {
				log.Printf("Warning: failed to create writer type '%s': %v, skipping.", writerDef.Type, err)
				continue
			}
			writer = w
		default:
			log.Printf("Warning: unknown writer type '%s' in config, skipping.", writerDef.Type)
			continue
		}
		writers = append(writers, writer)
	}
	return writers
}

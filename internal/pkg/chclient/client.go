package chclient

import (
	"Go2FlowTag/internal/config"
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Table names shared by the report writer and the querier.
const (
	TagCountsTable          = "flow_tag_counts"
	PortProtocolCountsTable = "flow_port_protocol_counts"
)

const createTagCountsStatement = `
CREATE TABLE IF NOT EXISTS flow_tag_counts (
    Timestamp DateTime,
    RunID     String,
    Format    String,
    Tag       String,
    Count     UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (RunID, Tag);
`

const createPortProtocolCountsStatement = `
CREATE TABLE IF NOT EXISTS flow_port_protocol_counts (
    Timestamp DateTime,
    RunID     String,
    Format    String,
    Port      Int32,
    Protocol  String,
    Count     UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (RunID, Port, Protocol);
`

// Connect opens and pings a ClickHouse connection.
func Connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// EnsureSchema creates the report tables if they do not exist.
func EnsureSchema(ctx context.Context, conn driver.Conn) error {
	for _, stmt := range []string{createTagCountsStatement, createPortProtocolCountsStatement} {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

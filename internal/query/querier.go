package query

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/internal/pkg/chclient"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ErrRunNotFound is returned when no rows exist for a run ID.
var ErrRunNotFound = errors.New("run not found")

// RunSummary describes one stored analysis run.
type RunSummary struct {
	RunID       string
	Format      string
	GeneratedAt time.Time
	Tags        uint64
	TotalCount  uint64
}

// Querier defines the interface for reading stored reports.
type Querier interface {
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Report(ctx context.Context, runID string) (*model.Report, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(ctx context.Context, cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := chclient.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

// ListRuns returns the most recent runs, newest first.
func (q *clickhouseQuerier) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := q.conn.Query(ctx, `
		SELECT
			RunID,
			any(Format) AS Format,
			max(Timestamp) AS GeneratedAt,
			count() AS Tags,
			sum(Count) AS TotalCount
		FROM flow_tag_counts
		GROUP BY RunID
		ORDER BY GeneratedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.RunID, &run.Format, &run.GeneratedAt, &run.Tags, &run.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Report rebuilds the tag and port/protocol counts stored for one run.
// Line statistics are not stored, so those fields stay zero.
func (q *clickhouseQuerier) Report(ctx context.Context, runID string) (*model.Report, error) {
	report := &model.Report{
		RunID:              runID,
		TagCounts:          make(map[string]uint64),
		PortProtocolCounts: make(map[model.PortProtocolKey]uint64),
	}

	rows, err := q.conn.Query(ctx, `
		SELECT Timestamp, Format, Tag, Count
		FROM flow_tag_counts
		WHERE RunID = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute tag query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tag   string
			count uint64
		)
		if err := rows.Scan(&report.GeneratedAt, &report.Format, &tag, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		report.TagCounts[tag] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ppRows, err := q.conn.Query(ctx, `
		SELECT Port, Protocol, Count
		FROM flow_port_protocol_counts
		WHERE RunID = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute port/protocol query: %w", err)
	}
	defer ppRows.Close()

	for ppRows.Next() {
		var (
			port  int32
			proto string
			count uint64
		)
		if err := ppRows.Scan(&port, &proto, &count); err != nil {
			return nil, fmt.Errorf("failed to scan port/protocol count: %w", err)
		}
		report.PortProtocolCounts[model.NewPortProtocolKey(int(port), proto)] += count
	}
	if err := ppRows.Err(); err != nil {
		return nil, err
	}

	if len(report.TagCounts) == 0 && len(report.PortProtocolCounts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return report, nil
}

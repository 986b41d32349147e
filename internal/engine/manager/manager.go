package manager

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/engine/aggregator"
	_ "Go2FlowTag/internal/engine/impl/vpc" // Registers the default flow-log format
	"Go2FlowTag/internal/engine/tagger"
	"Go2FlowTag/internal/factory"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/internal/report"
	"Go2FlowTag/pkg/linereader"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Manager runs the load-lookup -> parse -> aggregate pipeline and hands the
// resulting report to its writers.
// Each Analyze call uses its own resolver and aggregator, so calls are independent.
type Manager struct {
	parser  model.Parser
	writers []model.Writer
	metrics *pipelineMetrics
}

// NewManager creates a Manager from the config. An unknown log format fails
// here, before any input is read. reg may be nil to disable metrics.
func NewManager(cfg *config.Config, reg prometheus.Registerer) (*Manager, error) {
	parser, err := factory.Create(cfg.Pipeline.Format)
	if err != nil {
		return nil, err
	}

	writers := report.NewWriters(context.Background(), cfg.Writers)
	return New(parser, writers, reg)
}

// New creates a Manager from an explicit parser and writer set. The Manager
// owns the writers; they are closed if construction fails.
func New(parser model.Parser, writers []model.Writer, reg prometheus.Registerer) (*Manager, error) {
	metrics, err := newPipelineMetrics(reg)
	if err != nil {
		closeWriters(writers)
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return &Manager{parser: parser, writers: writers, metrics: metrics}, nil
}

// Run analyzes the two files and delivers the report to every writer.
func (m *Manager) Run(ctx context.Context, flowLogPath, lookupPath string) (*model.Report, error) {
	r, err := m.AnalyzeFiles(flowLogPath, lookupPath)
	if err != nil {
		return nil, err
	}
	if err := m.WriteReport(ctx, r); err != nil {
		return r, err
	}
	return r, nil
}

// AnalyzeFiles opens both sources by path and analyzes them.
// A source that cannot be opened fails with model.ErrSourceUnreadable.
func (m *Manager) AnalyzeFiles(flowLogPath, lookupPath string) (*model.Report, error) {
	lookup, err := linereader.Open(lookupPath)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup table: %w", model.ErrSourceUnreadable, err)
	}
	defer lookup.Close()

	flowLog, err := linereader.Open(flowLogPath)
	if err != nil {
		return nil, fmt.Errorf("%w: flow log: %w", model.ErrSourceUnreadable, err)
	}
	defer flowLog.Close()

	return m.analyze(flowLog, lookup)
}

// Analyze loads the lookup table, then parses and aggregates the flow log.
// Malformed lines in either source are logged and skipped; only a read
// failure aborts the run.
func (m *Manager) Analyze(flowLog, lookup io.Reader) (*model.Report, error) {
	return m.analyze(linereader.New(flowLog, "flow log"), linereader.New(lookup, "lookup table"))
}

func (m *Manager) analyze(flowLog, lookup *linereader.Reader) (*model.Report, error) {
	start := time.Now()
	r, err := m.runPipeline(flowLog, lookup)
	m.metrics.recordRun(err, time.Since(start))
	return r, err
}

func (m *Manager) runPipeline(flowLog, lookup *linereader.Reader) (*model.Report, error) {
	// 1. Load the full lookup table before reading any record.
	resolver := tagger.NewResolver()
	if err := resolver.LoadFrom(lookup); err != nil {
		return nil, err
	}
	m.metrics.setLookupRules(resolver.Rules())

	// 2. Parse every line, skipping the ones that fail.
	var (
		records []model.FlowRecord
		total   int
		skipped int
	)
	err := flowLog.ReadLines(func(lineNo int, line string, lineErr error) {
		total++
		if lineErr != nil {
			skipped++
			log.Printf("Warning: skipping line %d of %s: %v", lineNo, flowLog.Name(), lineErr)
			return
		}
		record, err := m.parser.Parse(line)
		if err != nil {
			skipped++
			log.Printf("Warning: skipping line %d of %s: %v", lineNo, flowLog.Name(), err)
			return
		}
		records = append(records, record)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", model.ErrSourceUnreadable, flowLog.Name(), err)
	}
	m.metrics.recordLines(len(records), skipped)
	log.Printf("Parsed %d of %d lines from %s (%d skipped).", len(records), total, flowLog.Name(), skipped)

	// 3. Aggregate.
	tagCounts, portProtocolCounts := aggregator.Aggregate(records, resolver)

	return &model.Report{
		RunID:              uuid.NewString(),
		Format:             m.parser.Format(),
		GeneratedAt:        time.Now().UTC(),
		TagCounts:          tagCounts,
		PortProtocolCounts: portProtocolCounts,
		TotalLines:         total,
		ParsedLines:        len(records),
		SkippedLines:       skipped,
		LookupRules:        resolver.Rules(),
		SkippedRules:       resolver.Skipped(),
	}, nil
}

// WriteReport delivers the report to all writers concurrently. Every writer
// runs to completion; the first failure is returned.
func (m *Manager) WriteReport(ctx context.Context, r *model.Report) error {
	if len(m.writers) == 0 {
		log.Println("No report writers configured, report not persisted.")
		return nil
	}

	var g errgroup.Group
	for _, writer := range m.writers {
		g.Go(func() error {
			if err := writer.Write(ctx, r); err != nil {
				log.Printf("ERROR: writer '%s' failed for run %s: %v", writer.Name(), r.RunID, err)
				return fmt.Errorf("writer '%s': %w", writer.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close releases writers that hold connections.
func (m *Manager) Close() {
	closeWriters(m.writers)
}

func closeWriters(writers []model.Writer) {
	for _, writer := range writers {
		if c, ok := writer.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("Error closing writer '%s': %v", writer.Name(), err)
			}
		}
	}
}

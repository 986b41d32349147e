package model

import "context"

// Writer defines a generic interface for delivering a finished report to a
// file, database or message bus.
type Writer interface {
	// Write persists or publishes the report. The report must not be modified.
	Write(ctx context.Context, report *Report) error

	// Name returns the writer type, used in log messages.
	Name() string
}

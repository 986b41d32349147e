package model

// Parser decodes one raw flow-log line into a FlowRecord.
// Implementations are selected by format name through the factory package.
type Parser interface {
	Parse(line string) (FlowRecord, error)
	Format() string
}

// TagResolver answers which tags apply to a record.
// The boolean is false when no lookup rule matches, which is distinct
// from a match carrying zero tags.
type TagResolver interface {
	Resolve(record FlowRecord) ([]string, bool)
}

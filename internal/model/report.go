package model

import (
	"sort"
	"time"
)

// Report is the result of one analysis run: the two frequency mappings
// plus bookkeeping about the inputs that produced them.
type Report struct {
	RunID       string
	Format      string
	GeneratedAt time.Time

	TagCounts          map[string]uint64
	PortProtocolCounts map[PortProtocolKey]uint64

	TotalLines   int
	ParsedLines  int
	SkippedLines int
	LookupRules  int
	SkippedRules int
}

// SortedTags returns the tags of TagCounts in lexical order.
func (r *Report) SortedTags() []string {
	tags := make([]string, 0, len(r.TagCounts))
	for tag := range r.TagCounts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SortedKeys returns the keys of PortProtocolCounts ordered by port, then protocol.
func (r *Report) SortedKeys() []PortProtocolKey {
	keys := make([]PortProtocolKey, 0, len(r.PortProtocolCounts))
	for key := range r.PortProtocolCounts {
		keys = append(keys, key)
	}
	SortKeys(keys)
	return keys
}

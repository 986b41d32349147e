package aggregator

import (
	"Go2FlowTag/internal/engine/protocol"
	"Go2FlowTag/internal/model"
)

// UntaggedTag is the bucket for records that match no lookup rule.
const UntaggedTag = "untagged"

// Aggregator counts records per tag and per port/protocol combination.
// It is not safe for concurrent use; each run owns its own instance.
type Aggregator struct {
	resolver           model.TagResolver
	tagCounts          map[string]uint64
	portProtocolCounts map[model.PortProtocolKey]uint64
	records            int
}

// New creates an aggregator that classifies records with resolver.
func New(resolver model.TagResolver) *Aggregator {
	return &Aggregator{
		resolver:           resolver,
		tagCounts:          make(map[string]uint64),
		portProtocolCounts: make(map[model.PortProtocolKey]uint64),
	}
}

// Add folds one record into both counters.
// A record matching N tags adds one to each of them; an unmatched record adds
// one to UntaggedTag. The port/protocol count always grows by one.
func (a *Aggregator) Add(record model.FlowRecord) {
	if tags, ok := a.resolver.Resolve(record); ok {
		for _, tag := range tags {
			a.tagCounts[tag]++
		}
	} else {
		a.tagCounts[UntaggedTag]++
	}

	a.portProtocolCounts[protocol.KeyOf(record)]++
	a.records++
}

// Records returns how many records have been added since the last Reset.
func (a *Aggregator) Records() int {
	return a.records
}

// Snapshot returns copies of the current counters.
func (a *Aggregator) Snapshot() (map[string]uint64, map[model.PortProtocolKey]uint64) {
	tagCounts := make(map[string]uint64, len(a.tagCounts))
	for k, v := range a.tagCounts {
		tagCounts[k] = v
	}
	portProtocolCounts := make(map[model.PortProtocolKey]uint64, len(a.portProtocolCounts))
	for k, v := range a.portProtocolCounts {
		portProtocolCounts[k] = v
	}
	return tagCounts, portProtocolCounts
}

// Reset clears both counters.
func (a *Aggregator) Reset() {
	a.tagCounts = make(map[string]uint64)
	a.portProtocolCounts = make(map[model.PortProtocolKey]uint64)
	a.records = 0
}

// Aggregate counts records in one pass and returns the tag and port/protocol counts.
func Aggregate(records []model.FlowRecord, resolver model.TagResolver) (map[string]uint64, map[model.PortProtocolKey]uint64) {
	a := New(resolver)
	for _, record := range records {
		a.Add(record)
	}
	return a.tagCounts, a.portProtocolCounts
}

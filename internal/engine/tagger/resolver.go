package tagger

import (
	"Go2FlowTag/internal/engine/protocol"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/pkg/linereader"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
)

const lookupFields = 3

// Resolver maps (destination port, protocol) pairs to the tags declared in a
// lookup table. It implements the model.TagResolver interface.
// A Resolver belongs to a single run and is not safe for concurrent loading.
type Resolver struct {
	mapping map[model.PortProtocolKey]map[string]struct{}
	rules   int
	skipped int
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{mapping: make(map[model.PortProtocolKey]map[string]struct{})}
}

// LoadFile loads lookup rules from the file at path.
func (r *Resolver) LoadFile(path string) error {
	reader, err := linereader.Open(path)
	if err != nil {
		return fmt.Errorf("%w: lookup table: %w", model.ErrSourceUnreadable, err)
	}
	defer reader.Close()
	return r.LoadFrom(reader)
}

// Load reads "dstport,protocol,tag" rules, one per line, adding them to the
// mapping. Malformed lines are logged and skipped; only a read failure is
// returned.
func (r *Resolver) Load(src io.Reader) error {
	return r.LoadFrom(linereader.New(src, "lookup table"))
}

// LoadFrom loads rules from an already opened line reader.
func (r *Resolver) LoadFrom(reader *linereader.Reader) error {
	err := reader.ReadLines(func(lineNo int, line string, lineErr error) {
		if lineErr != nil {
			r.skipped++
			log.Printf("Warning: skipping lookup line %d in %s: %v", lineNo, reader.Name(), lineErr)
			return
		}
		if strings.TrimSpace(line) == "" {
			return
		}
		if err := r.addRule(line); err != nil {
			r.skipped++
			log.Printf("Warning: skipping lookup line %d in %s: %v", lineNo, reader.Name(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", model.ErrSourceUnreadable, reader.Name(), err)
	}
	log.Printf("Loaded %d lookup rules (%d keys) from %s, skipped %d lines.", r.rules, len(r.mapping), reader.Name(), r.skipped)
	return nil
}

// addRule parses one lookup line and merges its tag into the mapping.
func (r *Resolver) addRule(line string) error {
	parts := strings.Split(line, ",")
	if len(parts) != lookupFields {
		return &model.LineError{
			Line: line,
			Err:  fmt.Errorf("%w: expected %d but got %d", model.ErrFieldCountMismatch, lookupFields, len(parts)),
		}
	}

	portValue := strings.TrimSpace(parts[0])
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return &model.LineError{Line: line, Err: &model.FieldError{Field: "dstport", Value: portValue, Err: err}}
	}
	proto := strings.ToLower(strings.TrimSpace(parts[1]))
	tag := strings.ToLower(strings.TrimSpace(parts[2]))

	// Unrecognized protocol names are kept; they simply never match a record.
	if !protocol.Known(proto) {
		log.Printf("Warning: lookup rule %q uses protocol '%s' which is not a known protocol name", line, proto)
	}

	key := model.NewPortProtocolKey(port, proto)
	tags, ok := r.mapping[key]
	if !ok {
		tags = make(map[string]struct{})
		r.mapping[key] = tags
	}
	tags[tag] = struct{}{}
	r.rules++
	return nil
}

// Resolve returns the tags for the record's destination port and protocol
// name, sorted. ok is false when no rule matches.
func (r *Resolver) Resolve(record model.FlowRecord) ([]string, bool) {
	return r.Lookup(protocol.KeyOf(record))
}

// Lookup returns the tags registered for key, sorted.
func (r *Resolver) Lookup(key model.PortProtocolKey) ([]string, bool) {
	set, ok := r.mapping[key]
	if !ok {
		return nil, false
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, true
}

// Rules returns the number of lookup lines accepted so far.
func (r *Resolver) Rules() int {
	return r.rules
}

// Skipped returns the number of malformed lookup lines skipped so far.
func (r *Resolver) Skipped() int {
	return r.skipped
}

// Keys returns the number of distinct port/protocol keys with tags.
func (r *Resolver) Keys() int {
	return len(r.mapping)
}

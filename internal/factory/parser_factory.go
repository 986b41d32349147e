package factory

import (
	"Go2FlowTag/internal/model"
	"fmt"
	"sort"
	"strings"
)

// ParserFactory defines a function that creates a parser for one log format.
type ParserFactory func() model.Parser

// registry holds the mapping of format names to their factory functions.
var registry = make(map[string]ParserFactory)

// RegisterFormat registers a new log format with its factory function.
// Format names are case-insensitive.
func RegisterFormat(name string, factory ParserFactory) {
	key := strings.ToLower(name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("log format '%s' already registered", name))
	}
	registry[key] = factory
}

// Create returns a parser for the named format.
// An unknown name fails with model.ErrUnsupportedFormat.
func Create(format string) (model.Parser, error) {
	factory, ok := registry[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", model.ErrUnsupportedFormat, format)
	}
	return factory(), nil
}

// Formats returns the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package model

import (
	"sort"
	"strconv"
	"strings"
)

// PortProtocolKey identifies a (destination port, protocol name) combination.
// It is comparable and used directly as a map key.
type PortProtocolKey struct {
	Port     int
	Protocol string
}

// NewPortProtocolKey builds a key, normalizing the protocol to lowercase.
// Every component that keys on port/protocol goes through this constructor.
func NewPortProtocolKey(port int, protocol string) PortProtocolKey {
	return PortProtocolKey{Port: port, Protocol: strings.ToLower(protocol)}
}

// String renders the key as "port/protocol", e.g., "443/tcp".
func (k PortProtocolKey) String() string {
	return strconv.Itoa(k.Port) + "/" + k.Protocol
}

// Less orders keys by port, then protocol name.
func (k PortProtocolKey) Less(other PortProtocolKey) bool {
	if k.Port != other.Port {
		return k.Port < other.Port
	}
	return k.Protocol < other.Protocol
}

// SortKeys sorts keys in place using Less.
func SortKeys(keys []PortProtocolKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

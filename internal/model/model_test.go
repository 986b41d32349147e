package model

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortProtocolKey_Equality(t *testing.T) {
	a := NewPortProtocolKey(25, "TCP")
	b := NewPortProtocolKey(25, "tcp")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewPortProtocolKey(25, "udp"))
	assert.NotEqual(t, a, NewPortProtocolKey(26, "tcp"))

	counts := map[PortProtocolKey]int{a: 1}
	counts[b]++
	assert.Equal(t, 2, counts[a])
	assert.Equal(t, "25/tcp", a.String())
}

func TestSortKeys(t *testing.T) {
	keys := []PortProtocolKey{
		NewPortProtocolKey(443, "tcp"),
		NewPortProtocolKey(25, "udp"),
		NewPortProtocolKey(25, "tcp"),
	}
	SortKeys(keys)
	assert.Equal(t, []PortProtocolKey{
		{Port: 25, Protocol: "tcp"},
		{Port: 25, Protocol: "udp"},
		{Port: 443, Protocol: "tcp"},
	}, keys)
}

func TestReport_SortedViews(t *testing.T) {
	r := &Report{
		GeneratedAt: time.Now(),
		TagCounts:   map[string]uint64{"sv_p2": 1, "email": 3, "untagged": 2},
		PortProtocolCounts: map[PortProtocolKey]uint64{
			NewPortProtocolKey(110, "tcp"): 1,
			NewPortProtocolKey(23, "tcp"):  1,
		},
	}
	assert.Equal(t, []string{"email", "sv_p2", "untagged"}, r.SortedTags())
	keys := r.SortedKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, 23, keys[0].Port)
}

func TestLineError_Matching(t *testing.T) {
	fieldErr := &FieldError{Field: "version", Value: "3", Err: ErrUnsupportedVersion}
	err := &LineError{Line: "3 123 eni-1", Err: fieldErr}

	assert.True(t, errors.Is(err, ErrInvalidField))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
	assert.False(t, errors.Is(err, ErrFieldCountMismatch))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "version", fe.Field)
	assert.Contains(t, err.Error(), "3 123 eni-1")

	_, convErr := strconv.Atoi("x")
	numErr := &LineError{Line: "l", Err: &FieldError{Field: "dstport", Value: "x", Err: convErr}}
	assert.True(t, errors.Is(numErr, ErrInvalidField))
	assert.False(t, errors.Is(numErr, ErrUnsupportedVersion))
}

func TestFlowRecord_Validity(t *testing.T) {
	r := FlowRecord{Bytes: Sentinel, Start: 10, Packets: 4}
	assert.False(t, r.HasValidBytes())
	assert.True(t, r.HasValidStart())
	assert.True(t, r.HasValidPackets())
}

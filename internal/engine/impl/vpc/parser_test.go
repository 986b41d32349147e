package vpc

import (
	"Go2FlowTag/internal/model"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLine = "2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT OK"

func TestParse_Valid(t *testing.T) {
	rec, err := New().Parse(validLine)
	require.NoError(t, err)

	assert.Equal(t, model.FlowRecord{
		Version:     2,
		AccountID:   123456789012,
		InterfaceID: "eni-0a1b2c3d",
		SrcAddr:     "10.0.1.201",
		DstAddr:     "198.51.100.2",
		SrcPort:     443,
		DstPort:     49153,
		Protocol:    6,
		Packets:     25,
		Bytes:       20000,
		Start:       1620140761,
		End:         1620140821,
		Action:      "ACCEPT",
		LogStatus:   "OK",
	}, rec)
	assert.True(t, rec.HasValidBytes())
	assert.True(t, rec.HasValidStart())
}

func TestParse_SurroundingAndRepeatedWhitespace(t *testing.T) {
	line := "  2   123 eni-1\t10.0.0.1 10.0.0.2 1 25 6 1 1 1 2 ACCEPT OK \r\n"
	rec, err := New().Parse(line)
	require.NoError(t, err)
	assert.Equal(t, 25, rec.DstPort)
	assert.Equal(t, "OK", rec.LogStatus)
}

func TestParse_Sentinels(t *testing.T) {
	line := "2 - eni-1 - - - 25 6 - - - 1620140821 NODATA NODATA"
	rec, err := New().Parse(line)
	require.NoError(t, err)

	assert.Equal(t, int64(model.Sentinel), rec.AccountID)
	assert.Equal(t, model.AddrSentinel, rec.SrcAddr)
	assert.Equal(t, model.AddrSentinel, rec.DstAddr)
	assert.Equal(t, model.Sentinel, rec.SrcPort)
	assert.Equal(t, model.Sentinel, rec.Packets)
	assert.Equal(t, int64(model.Sentinel), rec.Bytes)
	assert.Equal(t, int64(model.Sentinel), rec.Start)
	assert.False(t, rec.HasValidBytes())
	assert.False(t, rec.HasValidStart())
	assert.False(t, rec.HasValidPackets())
}

func TestParse_FieldCountMismatch(t *testing.T) {
	lines := []string{
		"",
		"2 123 eni-1 10.0.0.1 10.0.0.2 1 25 6 1 1",
		validLine + " EXTRA",
	}
	for _, line := range lines {
		_, err := New().Parse(line)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrFieldCountMismatch), "line %q: %v", line, err)
		assert.False(t, errors.Is(err, model.ErrInvalidField))

		var lineErr *model.LineError
		require.True(t, errors.As(err, &lineErr))
		assert.Equal(t, line, lineErr.Line)
	}
}

func TestParse_InvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		index int
		value string
		field string
	}{
		{"version not a number", 0, "x", "version"},
		{"account id not a number", 1, "acct", "account-id"},
		{"srcaddr too few segments", 3, "10.0.1", "srcaddr"},
		{"dstaddr too many segments", 4, "10.0.0.1.5", "dstaddr"},
		{"srcport out of range", 5, "70000", "srcport"},
		{"srcport negative", 5, "-5", "srcport"},
		{"dstport absent", 6, "-", "dstport"},
		{"dstport out of range", 6, "65536", "dstport"},
		{"protocol negative", 7, "-1", "protocol"},
		{"protocol not a number", 7, "tcp", "protocol"},
		{"packets not a number", 8, "many", "packets"},
		{"packets above 32 bits", 8, "3000000000", "packets"},
		{"protocol above 32 bits", 7, "4294967302", "protocol"},
		{"version above 32 bits", 0, "4294967298", "version"},
		{"bytes not a number", 9, "1.5", "bytes"},
		{"start not a number", 10, "now", "start"},
		{"end absent", 11, "-", "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := strings.Fields(validLine)
			fields[tt.index] = tt.value
			line := strings.Join(fields, " ")

			_, err := New().Parse(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidField))

			var fe *model.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.value, fe.Value)
			assert.Contains(t, err.Error(), line)
		})
	}
}

func TestParse_UnsupportedVersion(t *testing.T) {
	line := strings.Replace(validLine, "2 ", "3 ", 1)
	_, err := New().Parse(line)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnsupportedVersion))
	assert.True(t, errors.Is(err, model.ErrInvalidField))
}

func TestParse_PortBounds(t *testing.T) {
	fields := strings.Fields(validLine)
	fields[5], fields[6] = "0", "65535"
	rec, err := New().Parse(strings.Join(fields, " "))
	require.NoError(t, err)
	assert.Equal(t, 0, rec.SrcPort)
	assert.Equal(t, 65535, rec.DstPort)
}

func TestParse_LargeCountersFitInt64(t *testing.T) {
	fields := strings.Fields(validLine)
	fields[8], fields[9] = "2147483647", "3000000000"
	rec, err := New().Parse(strings.Join(fields, " "))
	require.NoError(t, err)
	assert.Equal(t, 2147483647, rec.Packets)
	assert.Equal(t, int64(3000000000), rec.Bytes)
}

func TestParse_OctetsNotRangeChecked(t *testing.T) {
	fields := strings.Fields(validLine)
	fields[3] = "999.1.2.300"
	rec, err := New().Parse(strings.Join(fields, " "))
	require.NoError(t, err)
	assert.Equal(t, "999.1.2.300", rec.SrcAddr)
}

func TestParse_Deterministic(t *testing.T) {
	p := New()
	first, err := p.Parse(validLine)
	require.NoError(t, err)
	second, err := p.Parse(validLine)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, FormatName, p.Format())
}

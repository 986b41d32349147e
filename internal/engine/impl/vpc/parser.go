package vpc

import (
	"Go2FlowTag/internal/factory"
	"Go2FlowTag/internal/model"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// --- Factory Registration ---

func init() {
	factory.RegisterFormat(FormatName, func() model.Parser { return New() })
}

// --- Parser Implementation ---

const (
	// FormatName is the registry name of the version 2 flow-log line format.
	FormatName = "default"

	// SupportedVersion is the only flow-log schema version this parser accepts.
	SupportedVersion = 2

	expectedFields = 14
	absent         = "-"
	maxPort        = 65535
)

var (
	errPortRange    = errors.New("port out of range [0, 65535]")
	errNegative     = errors.New("must not be negative")
	errAddrSegments = errors.New("expected 4 dot-separated segments")
)

// Parser decodes the default space-separated flow-log line:
//
//	version account-id interface-id srcaddr dstaddr srcport dstport protocol packets bytes start end action log-status
//
// It implements the model.Parser interface.
type Parser struct{}

// New creates a parser for the default flow-log format.
func New() *Parser {
	return &Parser{}
}

// Format returns the registry name of the format.
func (p *Parser) Format() string {
	return FormatName
}

// Parse validates every field of the line and returns the decoded record.
// Any failure is returned as a *model.LineError carrying the original line.
func (p *Parser) Parse(line string) (model.FlowRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != expectedFields {
		return model.FlowRecord{}, &model.LineError{
			Line: line,
			Err:  fmt.Errorf("%w: expected %d but got %d", model.ErrFieldCountMismatch, expectedFields, len(fields)),
		}
	}

	record, err := decode(fields)
	if err != nil {
		return model.FlowRecord{}, &model.LineError{Line: line, Err: err}
	}
	return record, nil
}

// decode converts the 14 fields in order, stopping at the first invalid one.
func decode(f []string) (model.FlowRecord, error) {
	var (
		rec model.FlowRecord
		err error
	)

	if rec.Version, err = parseVersion(f[0]); err != nil {
		return model.FlowRecord{}, err
	}
	if f[1] == absent {
		rec.AccountID = model.Sentinel
	} else if rec.AccountID, err = parseInt64("account-id", f[1]); err != nil {
		return model.FlowRecord{}, err
	}
	rec.InterfaceID = f[2]
	if rec.SrcAddr, err = parseAddr("srcaddr", f[3]); err != nil {
		return model.FlowRecord{}, err
	}
	if rec.DstAddr, err = parseAddr("dstaddr", f[4]); err != nil {
		return model.FlowRecord{}, err
	}
	if f[5] == absent {
		rec.SrcPort = model.Sentinel
	} else if rec.SrcPort, err = parsePort("srcport", f[5]); err != nil {
		return model.FlowRecord{}, err
	}
	if rec.DstPort, err = parsePort("dstport", f[6]); err != nil {
		return model.FlowRecord{}, err
	}
	if rec.Protocol, err = parseProtocol(f[7]); err != nil {
		return model.FlowRecord{}, err
	}
	if f[8] == absent {
		rec.Packets = model.Sentinel
	} else if rec.Packets, err = parseInt("packets", f[8]); err != nil {
		return model.FlowRecord{}, err
	}
	if f[9] == absent {
		rec.Bytes = model.Sentinel
	} else if rec.Bytes, err = parseInt64("bytes", f[9]); err != nil {
		return model.FlowRecord{}, err
	}
	if f[10] == absent {
		rec.Start = model.Sentinel
	} else if rec.Start, err = parseInt64("start", f[10]); err != nil {
		return model.FlowRecord{}, err
	}
	// end has no sentinel: "-" fails as a number.
	if rec.End, err = parseInt64("end", f[11]); err != nil {
		return model.FlowRecord{}, err
	}
	rec.Action = f[12]
	rec.LogStatus = f[13]

	return rec, nil
}

func parseVersion(value string) (int, error) {
	version, err := parseInt("version", value)
	if err != nil {
		return 0, err
	}
	if version != SupportedVersion {
		return 0, &model.FieldError{Field: "version", Value: value, Err: model.ErrUnsupportedVersion}
	}
	return version, nil
}

func parseAddr(field, value string) (string, error) {
	if value == absent {
		return model.AddrSentinel, nil
	}
	// Only the segment count is checked, not the octet range.
	if len(strings.Split(value, ".")) != 4 {
		return "", &model.FieldError{Field: field, Value: value, Err: errAddrSegments}
	}
	return value, nil
}

func parsePort(field, value string) (int, error) {
	port, err := parseInt(field, value)
	if err != nil {
		return 0, err
	}
	if port < 0 || port > maxPort {
		return 0, &model.FieldError{Field: field, Value: value, Err: errPortRange}
	}
	return port, nil
}

func parseProtocol(value string) (int, error) {
	proto, err := parseInt("protocol", value)
	if err != nil {
		return 0, err
	}
	if proto < 0 {
		return 0, &model.FieldError{Field: "protocol", Value: value, Err: errNegative}
	}
	return proto, nil
}

// parseInt accepts 32-bit values only; bytes and timestamps use parseInt64.
func parseInt(field, value string) (int, error) {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, &model.FieldError{Field: field, Value: value, Err: err}
	}
	return int(n), nil
}

func parseInt64(field, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &model.FieldError{Field: field, Value: value, Err: err}
	}
	return n, nil
}

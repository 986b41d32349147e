package model

import "fmt"

// Sentinel marks a numeric field that was absent ("-") in the source line.
const Sentinel = -1

// AddrSentinel is the textual form of an absent address.
const AddrSentinel = "-1"

// FlowRecord holds one decoded flow-log line.
// Records are only produced by a Parser after every field has been validated.
type FlowRecord struct {
	Version     int
	AccountID   int64
	InterfaceID string
	SrcAddr     string
	DstAddr     string
	SrcPort     int
	DstPort     int
	Protocol    int // IANA protocol number, e.g., 6 for TCP
	Packets     int
	Bytes       int64
	Start       int64 // Unix seconds
	End         int64 // Unix seconds
	Action      string
	LogStatus   string
}

// HasValidBytes reports whether the byte count was present in the source line.
func (r FlowRecord) HasValidBytes() bool {
	return r.Bytes != Sentinel
}

// HasValidStart reports whether the start time was present in the source line.
func (r FlowRecord) HasValidStart() bool {
	return r.Start != Sentinel
}

// HasValidPackets reports whether the packet count was present in the source line.
func (r FlowRecord) HasValidPackets() bool {
	return r.Packets != Sentinel
}

func (r FlowRecord) String() string {
	return fmt.Sprintf("FlowRecord{version=%d account=%d iface=%s %s:%d -> %s:%d proto=%d packets=%d bytes=%d start=%d end=%d action=%s status=%s}",
		r.Version, r.AccountID, r.InterfaceID, r.SrcAddr, r.SrcPort, r.DstAddr, r.DstPort,
		r.Protocol, r.Packets, r.Bytes, r.Start, r.End, r.Action, r.LogStatus)
}

package protocol

import (
	"Go2FlowTag/internal/model"
	"strconv"

	"github.com/google/gopacket/layers"
)

// names maps IANA protocol numbers to their canonical lowercase names.
// Numbers gopacket has constants for use them; the rest are listed by value.
var names = map[layers.IPProtocol]string{
	layers.IPProtocolIPv6HopByHop: "hopopt",
	layers.IPProtocolICMPv4:       "icmp",
	layers.IPProtocolIGMP:         "igmp",
	3:                             "ggp",
	layers.IPProtocolIPv4:         "ipv4",
	5:                             "st",
	layers.IPProtocolTCP:          "tcp",
	layers.IPProtocolUDP:          "udp",
	18:                            "mux",
	layers.IPProtocolRUDP:         "rdp",
	28:                            "irtp",
	29:                            "iso-tp4",
	30:                            "netblt",
	31:                            "mfe-nsp",
	32:                            "merit-inp",
	33:                            "dccp",
	34:                            "3pc",
	35:                            "idpr",
	36:                            "xtp",
	37:                            "ddp",
	38:                            "idpr-cmtp",
	39:                            "tp++",
	40:                            "il",
	layers.IPProtocolIPv6:         "ipv6",
	42:                            "sdrp",
	layers.IPProtocolIPv6Routing:  "ipv6-route",
	layers.IPProtocolIPv6Fragment: "ipv6-frag",
	45:                            "idrp",
	46:                            "rsvp",
	layers.IPProtocolGRE:          "gre",
	48:                            "dsr",
	49:                            "bna",
	layers.IPProtocolESP:          "esp",
	layers.IPProtocolAH:           "ah",
	88:                            "eigrp",
	layers.IPProtocolOSPF:         "ospf",
	103:                           "pim",
	108:                           "ipcomp",
	layers.IPProtocolVRRP:         "vrrp",
	115:                           "l2tp",
	124:                           "isis",
	layers.IPProtocolSCTP:         "sctp",
	133:                           "fc",
	135:                           "mobility-header",
	layers.IPProtocolUDPLite:      "udplite",
	layers.IPProtocolMPLSInIP:     "mpls-in-ip",
	138:                           "manet",
	139:                           "hip",
	140:                           "shim6",
	141:                           "wesp",
	142:                           "rohc",
}

// known is the reverse view of names, used to flag lookup rules that can never match.
var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, name := range names {
		m[name] = struct{}{}
	}
	return m
}()

// NameOf returns the canonical lowercase name for an IANA protocol number.
// Numbers outside the table come back as their decimal string.
func NameOf(number int) string {
	if number >= 0 && number <= 255 {
		if name, ok := names[layers.IPProtocol(number)]; ok {
			return name
		}
	}
	return strconv.Itoa(number)
}

// Known reports whether name is one of the catalog's canonical names.
func Known(name string) bool {
	_, ok := known[name]
	return ok
}

// KeyOf builds the port/protocol key of a record from its destination port
// and the canonical name of its protocol.
func KeyOf(record model.FlowRecord) model.PortProtocolKey {
	return model.NewPortProtocolKey(record.DstPort, NameOf(record.Protocol))
}

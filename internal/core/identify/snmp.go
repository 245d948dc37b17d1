package identify

import (
	"net"
	"time"

	"github.com/gosnmp/gosnmp"
)

const sysDescrOID = "1.3.6.1.2.1.1.1.0"

// SNMPEnrich issues one unauthenticated SNMP GetRequest for sysDescr
// against port 161, community "public" (spec.md §4.4.2, supplementing
// the base pipeline since SNMP never speaks first and a blind banner
// read always comes back empty). Grounded on the teacher's
// brute/protocol SNMPCracker, repurposed from a credential check into
// a one-shot enrichment probe.
func SNMPEnrich(ip net.IP, port int, timeout time.Duration) []byte {
	if port != 161 {
		return nil
	}
	client := &gosnmp.GoSNMP{
		Target:    ip.String(),
		Port:      uint16(port),
		Community: "public",
		Version:   gosnmp.Version2c,
		Timeout:   timeout,
		Retries:   0,
		Transport: "udp",
	}
	if err := client.Connect(); err != nil {
		return nil
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{sysDescrOID})
	if err != nil || result == nil || result.Error != gosnmp.NoError {
		return nil
	}
	for _, v := range result.Variables {
		if v.Name != "."+sysDescrOID && v.Name != sysDescrOID {
			continue
		}
		if b, ok := v.Value.([]byte); ok {
			return b
		}
	}
	return nil
}

package model

import "fmt"

// TLSCertificate is the subset of an x509 leaf certificate the
// identifier cares about.
type TLSCertificate struct {
	Subject            string   `json:"subject"`
	Issuer             string   `json:"issuer"`
	NotBefore          string   `json:"not_before"`
	NotAfter           string   `json:"not_after"`
	SignatureAlgorithm string   `json:"signature_algorithm"`
	PublicKeyAlgorithm string   `json:"public_key_algorithm"`
	PublicKeyBits      int      `json:"public_key_bits"`
	AlternativeNames   []string `json:"alternative_names,omitempty"`
}

// PortRecord is the per-port aggregate evidence produced by the scan:
// one TCP status per requested technique, an optional UDP status, and
// whatever the service identifier was able to attach once the port
// was seen open.
type PortRecord struct {
	Port int `json:"port"`

	TCPStates map[Technique]PortStatus `json:"tcp_states,omitempty"`
	UDPStatus *PortStatus              `json:"udp_status,omitempty"`

	FilterDescription string `json:"filter_description,omitempty"`

	Banner  []byte          `json:"banner,omitempty"`
	Cert    *TLSCertificate `json:"cert_info,omitempty"`
	Service string          `json:"service,omitempty"`
	Version string          `json:"version,omitempty"`

	ServiceDetails map[string]string `json:"service_details,omitempty"`
	Anomalies      []string          `json:"anomalies,omitempty"`
	VulnHints      []string          `json:"vuln_hints,omitempty"`

	Timing *TimingAnalysis `json:"timing,omitempty"`
}

// TimingAnalysis records the spread of probe round-trip times observed
// for a port, used only to flag unusually slow/jittery responders as
// an anomaly signal — it is not a latency SLA feature.
type TimingAnalysis struct {
	SampleCount int     `json:"sample_count"`
	MinRTTMs    float64 `json:"min_rtt_ms"`
	MaxRTTMs    float64 `json:"max_rtt_ms"`
	AvgRTTMs    float64 `json:"avg_rtt_ms"`
}

func newPortRecord(port int) *PortRecord {
	return &PortRecord{
		Port:      port,
		TCPStates: make(map[Technique]PortStatus),
	}
}

// IsOpen implements the invariant of spec.md §3: a port counts as open
// iff some technique reached Open, or the UDP status is Open.
func (p *PortRecord) IsOpen() bool {
	for _, st := range p.TCPStates {
		if st == StatusOpen {
			return true
		}
	}
	return p.UDPStatus != nil && *p.UDPStatus == StatusOpen
}

// IsOpenOrOpenFiltered reports whether the service identifier should
// run on this port at all (spec.md §4.4: "runs only on ports
// classified Open or OpenFiltered").
func (p *PortRecord) IsOpenOrOpenFiltered() bool {
	if p.IsOpen() {
		return true
	}
	for _, st := range p.TCPStates {
		if st == StatusOpenFiltered {
			return true
		}
	}
	return p.UDPStatus != nil && *p.UDPStatus == StatusOpenFiltered
}

func (p *PortRecord) addAnomaly(text string) {
	for _, a := range p.Anomalies {
		if a == text {
			return
		}
	}
	p.Anomalies = append(p.Anomalies, text)
}

func (p *PortRecord) String() string {
	return fmt.Sprintf("port=%d service=%s version=%s open=%v", p.Port, p.Service, p.Version, p.IsOpen())
}

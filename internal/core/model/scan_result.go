package model

import (
	"sort"
	"sync"
	"time"
)

// ScanResult is the aggregate record of one orchestrator run: the
// requested target, every technique exercised, one PortRecord per
// port that produced evidence, and run-wide counters.
//
// All mutation goes through the Merge*/Attach*/AddAnomaly methods,
// which are idempotent with respect to identical inputs (spec.md
// §4.6) and safe to call concurrently — in practice only the
// orchestrator's single aggregator goroutine calls them, but the
// lock makes that an implementation choice, not a correctness
// requirement.
type ScanResult struct {
	mu sync.Mutex

	Target    string    `json:"target"`
	IP        string    `json:"ip"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	Techniques []Technique `json:"techniques"`

	Ports      map[int]*PortRecord `json:"ports"`
	OpenPorts  []int               `json:"open_ports"`

	PacketsSent     int64 `json:"packets_sent"`
	SuccessfulScans int64 `json:"successful_scans"`

	OSSummary       string              `json:"os_summary,omitempty"`
	RiskSummary     map[string]int      `json:"risk_summary,omitempty"`
	ServiceCategory map[string][]int    `json:"service_category,omitempty"`

	// FatalError records a CaptureLost (or similar) abort; ScanResult
	// is still emitted, partial, per spec.md §7.
	FatalError string `json:"fatal_error,omitempty"`
}

// NewScanResult creates the single ScanResult for a run.
func NewScanResult(target, ip string, techniques []Technique, start time.Time) *ScanResult {
	return &ScanResult{
		Target:     target,
		IP:         ip,
		StartedAt:  start,
		Techniques: techniques,
		Ports:      make(map[int]*PortRecord),
	}
}

func (r *ScanResult) port(n int) *PortRecord {
	pr, ok := r.Ports[n]
	if !ok {
		pr = newPortRecord(n)
		r.Ports[n] = pr
	}
	return pr
}

// MergeTCP folds a technique's classification for port into the
// record using status Precedence (spec.md §3/§8: total order, merge
// order independent).
func (r *ScanResult) MergeTCP(port int, tech Technique, status PortStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pr := r.port(port)
	pr.TCPStates[tech] = Merge(pr.TCPStates[tech], status)
	r.refreshOpenPortsLocked()
}

// MergeUDP folds a UDP classification for port.
func (r *ScanResult) MergeUDP(port int, status PortStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pr := r.port(port)
	if pr.UDPStatus == nil {
		pr.UDPStatus = &status
	} else {
		merged := Merge(*pr.UDPStatus, status)
		pr.UDPStatus = &merged
	}
	r.refreshOpenPortsLocked()
}

// AttachBanner records raw banner bytes for a port. Invariant (spec.md
// §3): only meaningful once some technique has reached Open or
// OpenFiltered; callers are expected to have checked that already, but
// an empty banner is simply ignored here to stay idempotent.
func (r *ScanResult) AttachBanner(port int, banner []byte) {
	if len(banner) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pr := r.port(port)
	if pr.Banner == nil {
		pr.Banner = append([]byte(nil), banner...)
	}
}

// AttachCert records the TLS leaf certificate seen on a port.
func (r *ScanResult) AttachCert(port int, cert *TLSCertificate) {
	if cert == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.port(port).Cert = cert
}

// AttachService records the service identifier's best guess for a port.
func (r *ScanResult) AttachService(port int, name, version string, details map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr := r.port(port)
	if name != "" {
		pr.Service = name
	}
	if version != "" {
		pr.Version = version
	}
	if len(details) > 0 {
		if pr.ServiceDetails == nil {
			pr.ServiceDetails = make(map[string]string, len(details))
		}
		for k, v := range details {
			pr.ServiceDetails[k] = v
		}
	}
}

// AddAnomaly appends a deduplicated anomaly note to a port's record.
func (r *ScanResult) AddAnomaly(port int, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.port(port).addAnomaly(text)
}

// IncrPacketsSent increments the dispatched-probe counter.
func (r *ScanResult) IncrPacketsSent() {
	r.mu.Lock()
	r.PacketsSent++
	r.mu.Unlock()
}

// IncrSuccessfulScans increments the terminal-classification counter.
func (r *ScanResult) IncrSuccessfulScans() {
	r.mu.Lock()
	r.SuccessfulScans++
	r.mu.Unlock()
}

// SetFilterDescription records a human-readable note on why a port
// was classified Filtered (e.g. which ICMP code was seen).
func (r *ScanResult) SetFilterDescription(port int, desc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.port(port).FilterDescription = desc
}

func (r *ScanResult) refreshOpenPortsLocked() {
	open := make([]int, 0, len(r.OpenPorts))
	for port, pr := range r.Ports {
		if pr.IsOpen() {
			open = append(open, port)
		}
	}
	sort.Ints(open)
	r.OpenPorts = open
}

// Finish stamps the end time and derives RiskSummary/ServiceCategory
// from the accumulated port records.
func (r *ScanResult) Finish(end time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndedAt = end
	r.RiskSummary = make(map[string]int)
	r.ServiceCategory = make(map[string][]int)

	for port, pr := range r.Ports {
		for range pr.Anomalies {
			r.RiskSummary["anomaly"]++
		}
		if pr.Service != "" {
			cat := serviceCategory(pr.Service)
			r.ServiceCategory[cat] = append(r.ServiceCategory[cat], port)
		}
	}
	for _, ports := range r.ServiceCategory {
		sort.Ints(ports)
	}
}

// Port returns a snapshot of the record for a single port, or nil.
func (r *ScanResult) Port(n int) *PortRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Ports[n]
}

func serviceCategory(service string) string {
	switch service {
	case "mysql", "postgresql", "mssql", "oracle", "mongodb", "redis", "clickhouse":
		return "database"
	case "ssh", "telnet", "rdp", "vnc":
		return "remote-access"
	case "http", "https", "http-proxy":
		return "web"
	case "smtp", "pop3", "imap":
		return "mail"
	case "dns":
		return "infrastructure"
	default:
		return "other"
	}
}

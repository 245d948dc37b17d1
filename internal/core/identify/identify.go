package identify

import (
	"context"
	"crypto/x509"
	"time"

	"netrecon/internal/core/model"
)

// Outcome is everything the identifier learned about one port, ready
// to be folded into a ScanResult through its Attach*/AddAnomaly
// primitives. The orchestrator owns the ScanResult; this package never
// touches it directly.
type Outcome struct {
	Banner     []byte
	Cert       *model.TLSCertificate
	Service    string
	Version    string
	Details    map[string]string
	Anomalies  []string
	OSFamily   string
}

// Deps bundles the identifier's configuration: the signature table, an
// optional ML classifier, and the timing budget.
type Deps struct {
	Signatures     []Signature
	Classifier     Classifier
	TimeoutConnect time.Duration
	TimeoutBanner  time.Duration
	ExpectedHost   string // for TLS CN/SNI mismatch checking
}

// Identify runs the five-stage pipeline of spec.md §4.4 against a
// port already classified Open or OpenFiltered. udpSeed carries the
// raw bytes a UDP probe's reply already captured, if any — the banner
// stage reuses that instead of reconnecting (there is no "connection"
// to redial for UDP).
func Identify(ctx context.Context, d *Deps, endpoint model.Endpoint, port int, udpSeed []byte, leaf *x509.Certificate) Outcome {
	out := Outcome{Details: make(map[string]string)}

	// Stage 3: TLS inspection, if a probe already captured a leaf cert
	// (SSL/TLS-ECHO). Runs ahead of banner grab since it needs no
	// extra round trip.
	if leaf != nil {
		out.Cert = InspectCert(leaf)
		out.Anomalies = append(out.Anomalies, CertAnomalies(leaf, d.ExpectedHost, time.Now())...)
		if len(leaf.DNSNames) > 0 {
			out.Details["sni_candidate"] = leaf.DNSNames[0]
		}
	}

	// Stage 1: banner grab.
	banner := udpSeed
	if len(banner) == 0 {
		banner = GrabBanner(ctx, endpoint.IP, port, d.TimeoutConnect, d.TimeoutBanner)
	}
	if len(banner) == 0 && port == 161 {
		banner = SNMPEnrich(endpoint.IP, port, d.TimeoutBanner)
	}
	out.Banner = banner

	// Stage 2: signature match, ranked by confidence (highest first;
	// the built-in/loaded table is already in that order).
	var sigConfidence float64
	if len(banner) > 0 {
		text := string(banner)
		for i := range d.Signatures {
			sig := &d.Signatures[i]
			groups, ok := sig.Match(text)
			if !ok {
				continue
			}
			out.Service = sig.Service
			out.Version = sig.Version(groups)
			sigConfidence = sig.Confidence
			break
		}
	}

	// Stage 4: minimal heuristics, only when nothing else fired.
	if out.Service == "" {
		if svc, ok := portDefault(port); ok {
			out.Service = svc
			sigConfidence = heuristicConfidence
		}
	}

	// Stage 5: ML disambiguation, only when confidence is still weak
	// and a banner exists to feed it.
	if d.Classifier != nil && len(banner) > 0 && sigConfidence < 0.6 {
		if label, conf := d.Classifier(banner, port); label != "" && conf > sigConfidence {
			out.Service = label
			sigConfidence = conf
		}
	}

	if msg, ok := ServiceMismatch(port, out.Service); ok {
		out.Anomalies = append(out.Anomalies, msg)
	}

	return out
}

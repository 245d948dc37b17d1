// Package identify implements the Service Identifier: banner grab,
// regex signature match, TLS inspection, port-default heuristics and
// pluggable ML disambiguation, adapted from the teacher's
// scanner/port_service/nmap_service engine and generalized to the
// five-stage pipeline. Every stage may short-circuit.
package identify

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// Signature is one ranked regex rule a banner can match against.
// Grounded on the teacher's nmap_service.Match, flattened to a single
// self-contained entry (no probe grouping) since identification here
// always runs against a banner already captured by the orchestrator,
// not against a live probe/response cycle.
type Signature struct {
	Service         string   `json:"service"`
	Pattern         string   `json:"pattern"`
	VersionTemplate string   `json:"version_template,omitempty"`
	Confidence      float64  `json:"confidence"`
	Tags            []string `json:"tags,omitempty"`

	compiled *regexp2.Regexp
}

func (s *Signature) compile() error {
	re, err := regexp2.Compile(s.Pattern, regexp2.RE2)
	if err != nil {
		return fmt.Errorf("identify: compile signature %q: %w", s.Service, err)
	}
	s.compiled = re
	return nil
}

// Match reports whether banner matches this signature, returning the
// submatch groups used to expand VersionTemplate.
func (s *Signature) Match(banner string) (groups []string, ok bool) {
	if s.compiled == nil {
		return nil, false
	}
	m, err := s.compiled.FindStringMatch(banner)
	if err != nil || m == nil {
		return nil, false
	}
	for _, g := range m.Groups() {
		groups = append(groups, g.String())
	}
	return groups, true
}

// Version expands VersionTemplate's $1, $2, ... placeholders against
// the captured groups, Nmap-template style.
func (s *Signature) Version(groups []string) string {
	v := s.VersionTemplate
	if v == "" {
		return ""
	}
	for i, g := range groups {
		v = strings.ReplaceAll(v, fmt.Sprintf("$%d", i), g)
	}
	return strings.TrimSpace(v)
}

// builtinSignatures is a compact, hand-maintained table covering the
// handful of services a banner-only scan sees most often. It is
// deliberately small: LoadSignatures lets an operator swap in a much
// larger ranked table of the same shape without a core code change.
var builtinSignatures = []Signature{
	{Service: "ssh", Pattern: `^SSH-(\d\.\d)-([\w.\-]+)`, VersionTemplate: "$2", Confidence: 0.9, Tags: []string{"remote-access"}},
	{Service: "http", Pattern: `^HTTP/(\d\.\d) \d{3}`, VersionTemplate: "$1", Confidence: 0.85, Tags: []string{"web"}},
	{Service: "ftp", Pattern: `^220[ \-].*FTP`, Confidence: 0.7, Tags: []string{"file-transfer"}},
	{Service: "smtp", Pattern: `^220[ \-].*(SMTP|ESMTP)`, Confidence: 0.8, Tags: []string{"mail"}},
	{Service: "pop3", Pattern: `^\+OK`, Confidence: 0.6, Tags: []string{"mail"}},
	{Service: "imap", Pattern: `^\* OK`, Confidence: 0.6, Tags: []string{"mail"}},
	{Service: "mysql", Pattern: `^.\x00\x00\x00\x0a([\d.]+)`, VersionTemplate: "$1", Confidence: 0.75, Tags: []string{"database"}},
	{Service: "redis", Pattern: `^-ERR|^\+PONG|^\$-1`, Confidence: 0.5, Tags: []string{"database"}},
	{Service: "rdp", Pattern: `^\x03\x00\x00`, Confidence: 0.4, Tags: []string{"remote-access"}},
	{Service: "dns", Pattern: `^\x00\x00\x81`, Confidence: 0.3, Tags: []string{"infrastructure"}},
}

// DefaultSignatures returns a fresh, compiled copy of the built-in
// table, ranked highest-confidence first.
func DefaultSignatures() ([]Signature, error) {
	out := make([]Signature, len(builtinSignatures))
	copy(out, builtinSignatures)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	for i := range out {
		if err := out[i].compile(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LoadSignatures reads a JSON array of the same shape as
// builtinSignatures from path, compiling each entry. This is the
// pluggable surface spec.md §4.4 leaves open: "a ranked table of
// regex-style signatures" with no mandated source.
func LoadSignatures(path string) ([]Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identify: read signature table: %w", err)
	}
	var sigs []Signature
	if err := json.Unmarshal(data, &sigs); err != nil {
		return nil, fmt.Errorf("identify: parse signature table: %w", err)
	}
	for i := range sigs {
		if err := sigs[i].compile(); err != nil {
			return nil, err
		}
	}
	return sigs, nil
}

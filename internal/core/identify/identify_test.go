package identify

import (
	"context"
	"net"
	"testing"
	"time"

	"netrecon/internal/core/model"
)

func testDeps(t *testing.T) *Deps {
	t.Helper()
	sigs, err := DefaultSignatures()
	if err != nil {
		t.Fatalf("DefaultSignatures: %v", err)
	}
	return &Deps{
		Signatures:     sigs,
		Classifier:     HeuristicClassifier,
		TimeoutConnect: 50 * time.Millisecond,
		TimeoutBanner:  50 * time.Millisecond,
	}
}

func TestIdentify_SignatureMatchFromUDPSeed(t *testing.T) {
	d := testDeps(t)
	endpoint := model.Endpoint{Target: "192.0.2.1", IP: net.ParseIP("192.0.2.1")}

	out := Identify(context.Background(), d, endpoint, 22, []byte("SSH-2.0-OpenSSH_9.6\r\n"), nil)
	if out.Service != "ssh" {
		t.Fatalf("expected ssh, got %q", out.Service)
	}
	if out.Version != "OpenSSH_9.6" {
		t.Fatalf("expected version OpenSSH_9.6, got %q", out.Version)
	}
}

func TestIdentify_FallsBackToPortHeuristic(t *testing.T) {
	d := testDeps(t)
	endpoint := model.Endpoint{Target: "192.0.2.1", IP: net.ParseIP("192.0.2.1")}

	out := Identify(context.Background(), d, endpoint, 3306, nil, nil)
	if out.Service != "mysql" {
		t.Fatalf("expected mysql heuristic fallback, got %q", out.Service)
	}
}

func TestServiceMismatch_FlagsUnexpectedService(t *testing.T) {
	msg, ok := ServiceMismatch(22, "http")
	if !ok {
		t.Fatalf("expected a mismatch between port 22 and http")
	}
	if msg == "" {
		t.Fatalf("expected a non-empty anomaly message")
	}
}

func TestServiceMismatch_NoFalsePositiveForCanonicalService(t *testing.T) {
	if _, ok := ServiceMismatch(22, "ssh"); ok {
		t.Fatalf("did not expect a mismatch for the canonical service")
	}
}

func TestGuessOSFamily(t *testing.T) {
	cases := []struct {
		ttl    int
		family string
	}{
		{64, "Unix/Linux"},
		{128, "Windows"},
		{255, "Network device (Solaris/Cisco)"},
		{0, ""},
	}
	for _, c := range cases {
		family, _ := GuessOSFamily(c.ttl)
		if family != c.family {
			t.Fatalf("ttl=%d: got %q, want %q", c.ttl, family, c.family)
		}
	}
}

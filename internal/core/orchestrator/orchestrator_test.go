package orchestrator

import (
	"context"
	"math/rand"
	"net"
	"testing"
	"time"

	"netrecon/internal/core/model"
)

func TestRun_RejectsNilRand(t *testing.T) {
	endpoints := []model.Endpoint{{Target: "127.0.0.1", IP: net.ParseIP("127.0.0.1")}}
	_, err := Run(context.Background(), endpoints, []int{1}, []model.Technique{model.TechSSL}, Config{}, &Deps{})
	if err == nil {
		t.Fatalf("expected an error when Config.Rand is nil")
	}
}

func TestRun_RejectsNoEndpoints(t *testing.T) {
	cfg := Config{Rand: rand.New(rand.NewSource(1))}
	_, err := Run(context.Background(), nil, []int{1}, []model.Technique{model.TechSSL}, cfg, &Deps{})
	if err == nil {
		t.Fatalf("expected an error when no endpoints are supplied")
	}
}

// TestRun_SSLOnlyClosedPort drives a real Run over the SSL technique
// only, against a closed local port: SSL needs no raw socket and no
// Listener, so this exercises work-item generation, admission control
// and the aggregator's merge path without any crafted-packet I/O.
func TestRun_SSLOnlyClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve a port: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close() // nothing listens now; port should read Closed

	port := 0
	for _, c := range portStr {
		port = port*10 + int(c-'0')
	}

	endpoints := []model.Endpoint{{Target: "127.0.0.1", IP: net.ParseIP("127.0.0.1")}}
	cfg := Config{
		Rand:           rand.New(rand.NewSource(1)),
		Concurrency:    4,
		Rate:           1000,
		Timeout:        500 * time.Millisecond,
		TimeoutConnect: 200 * time.Millisecond,
		TimeoutBanner:  200 * time.Millisecond,
	}

	results, err := Run(context.Background(), endpoints, []int{port}, []model.Technique{model.TechSSL}, cfg, &Deps{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result for one endpoint, got %d", len(results))
	}
	result := results[0]
	pr := result.Port(port)
	if pr == nil {
		t.Fatalf("expected a port record for %d", port)
	}
	if pr.TCPStates[model.TechSSL] != model.StatusClosed {
		t.Fatalf("expected Closed, got %v", pr.TCPStates[model.TechSSL])
	}
	if result.EndedAt.IsZero() {
		t.Fatalf("expected Finish to stamp EndedAt")
	}
	if result.PacketsSent == 0 {
		t.Fatalf("expected at least one dispatched probe to be counted")
	}
}

// TestRun_EvasionShufflesWithoutDroppingPorts checks that turning on
// Evasion still probes every requested port exactly once, just in a
// different order (spec.md §4.5: shuffle, never drop or duplicate).
func TestRun_EvasionShufflesWithoutDroppingPorts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve a port: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()
	port := 0
	for _, c := range portStr {
		port = port*10 + int(c-'0')
	}
	ports := []int{port, port + 1, port + 2}

	endpoints := []model.Endpoint{{Target: "127.0.0.1", IP: net.ParseIP("127.0.0.1")}}
	cfg := Config{
		Rand:           rand.New(rand.NewSource(7)),
		Concurrency:    4,
		Rate:           1000,
		Timeout:        300 * time.Millisecond,
		TimeoutConnect: 100 * time.Millisecond,
		TimeoutBanner:  100 * time.Millisecond,
		Evasion:        true,
	}

	results, err := Run(context.Background(), endpoints, ports, []model.Technique{model.TechSSL}, cfg, &Deps{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result for one endpoint, got %d", len(results))
	}
	result := results[0]
	for _, p := range ports {
		if result.Port(p) == nil {
			t.Fatalf("expected a port record for %d under evasion", p)
		}
	}
}

// TestRun_MultipleEndpointsEachGetAResult drives Run over two distinct
// endpoints and checks each gets its own ScanResult, in endpoint
// order, with the probed port classified in both.
func TestRun_MultipleEndpointsEachGetAResult(t *testing.T) {
	var closedPorts []int
	for i := 0; i < 2; i++ {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("reserve a port: %v", err)
		}
		_, portStr, _ := net.SplitHostPort(ln.Addr().String())
		ln.Close()
		port := 0
		for _, c := range portStr {
			port = port*10 + int(c-'0')
		}
		closedPorts = append(closedPorts, port)
	}

	endpoints := []model.Endpoint{
		{Target: "127.0.0.1", IP: net.ParseIP("127.0.0.1")},
		{Target: "127.0.0.2", IP: net.ParseIP("127.0.0.2")},
	}
	cfg := Config{
		Rand:           rand.New(rand.NewSource(2)),
		Concurrency:    4,
		Rate:           1000,
		Timeout:        500 * time.Millisecond,
		TimeoutConnect: 200 * time.Millisecond,
		TimeoutBanner:  200 * time.Millisecond,
	}

	results, err := Run(context.Background(), endpoints, closedPorts, []model.Technique{model.TechSSL}, cfg, &Deps{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(endpoints) {
		t.Fatalf("expected %d results, got %d", len(endpoints), len(results))
	}
	for i, endpoint := range endpoints {
		if results[i].Target != endpoint.Target {
			t.Fatalf("result %d: expected target %s, got %s", i, endpoint.Target, results[i].Target)
		}
		for _, p := range closedPorts {
			if results[i].Port(p) == nil {
				t.Fatalf("result %d: expected a port record for %d", i, p)
			}
		}
	}
}

func TestShuffledPorts_PreservesSetMembership(t *testing.T) {
	ports := []int{10, 20, 30, 40, 50}
	rng := rand.New(rand.NewSource(3))
	shuffled := shuffledPorts(ports, rng)
	if len(shuffled) != len(ports) {
		t.Fatalf("length changed: got %d, want %d", len(shuffled), len(ports))
	}
	seen := make(map[int]bool, len(ports))
	for _, p := range shuffled {
		seen[p] = true
	}
	for _, p := range ports {
		if !seen[p] {
			t.Fatalf("port %d missing from shuffled output", p)
		}
	}
}

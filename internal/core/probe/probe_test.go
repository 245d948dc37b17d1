package probe

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"netrecon/internal/core/model"
)

func TestDispatch_CoversEveryTechnique(t *testing.T) {
	d := &Deps{RNG: rand.New(rand.NewSource(1))}
	for _, tech := range model.AllTechniques {
		if Dispatch(tech, d) == nil {
			t.Fatalf("no strategy registered for technique %q", tech)
		}
	}
}

func TestPackEnvelope_RoundTripsPortAndNonce(t *testing.T) {
	envelope, err := packEnvelope(8080, 0xDEADBEEF)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(envelope) != 6 {
		t.Fatalf("expected a 6-byte (uint16+uint32) envelope, got %d", len(envelope))
	}
	if port := binary.BigEndian.Uint16(envelope[0:2]); port != 8080 {
		t.Fatalf("expected port 8080 back from the envelope, got %d", port)
	}
	if nonce := binary.BigEndian.Uint32(envelope[2:6]); nonce != 0xDEADBEEF {
		t.Fatalf("expected nonce 0xDEADBEEF back from the envelope, got %#x", nonce)
	}
}

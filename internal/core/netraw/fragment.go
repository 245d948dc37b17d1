package netraw

import (
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Fragment splits an already-built IPv4 packet (header + payload) into
// an ordered list of IP fragments, per spec.md §4.1's contract:
//
//   - fragments cover the original payload exactly once
//   - every fragment except the last has MF=1
//   - offsets are multiples of 8
//   - the first fragment is at least firstMinSize bytes of payload
//   - if twoFragsOnly, the result has exactly 2 fragments
//   - sizes between the other fragments are uniformly sampled in
//     [minSize, maxSize]
//
// rng is the caller's single injected random source.
func Fragment(ipPacket []byte, minSize, maxSize, firstMinSize int, twoFragsOnly bool, rng *rand.Rand) ([][]byte, error) {
	if len(ipPacket) < 20 {
		return nil, fmt.Errorf("netraw: packet too small to fragment")
	}
	headerLen := int(ipPacket[0]&0x0F) * 4
	if headerLen < 20 || headerLen > len(ipPacket) {
		return nil, fmt.Errorf("netraw: invalid ip header length %d", headerLen)
	}
	header := ipPacket[:headerLen]
	payload := ipPacket[headerLen:]

	sizes, err := planFragmentSizes(len(payload), minSize, maxSize, firstMinSize, twoFragsOnly, rng)
	if err != nil {
		return nil, err
	}

	frags := make([][]byte, 0, len(sizes))
	offsetBytes := 0
	for i, size := range sizes {
		chunk := payload[offsetBytes : offsetBytes+size]
		more := i != len(sizes)-1
		frag := buildFragment(header, chunk, offsetBytes/8, more)
		frags = append(frags, frag)
		offsetBytes += size
	}
	return frags, nil
}

// planFragmentSizes computes the byte length of each fragment's
// payload slice. The first size is firstMinSize rounded up to a
// multiple of 8 (cut back when the payload is too short for it);
// every other size but the last is rounded down to a multiple of 8
// (so the resulting byte offset is always a multiple of 8); the last
// fragment absorbs whatever remains.
func planFragmentSizes(total, minSize, maxSize, firstMinSize int, twoFragsOnly bool, rng *rand.Rand) ([]int, error) {
	if total <= 0 {
		return nil, fmt.Errorf("netraw: nothing to fragment")
	}
	if minSize < 8 {
		minSize = 8
	}
	if maxSize < minSize {
		maxSize = minSize
	}

	roundTo8 := func(n int) int {
		n -= n % 8
		if n < 8 {
			n = 8
		}
		return n
	}
	roundUp8 := func(n int) int {
		n += (8 - n%8) % 8
		if n < 8 {
			n = 8
		}
		return n
	}

	if twoFragsOnly {
		first := roundUp8(firstMinSize)
		if first >= total {
			first = roundTo8(total / 2)
		}
		if first <= 0 || first >= total {
			return nil, fmt.Errorf("netraw: payload too small for two-fragment split")
		}
		return []int{first, total - first}, nil
	}

	var sizes []int
	remaining := total
	first := roundUp8(firstMinSize)
	if first > remaining {
		first = roundTo8(remaining)
	}
	sizes = append(sizes, first)
	remaining -= first

	for remaining > maxSize {
		size := minSize
		if maxSize > minSize {
			size = minSize + rng.Intn(maxSize-minSize+1)
		}
		size = roundTo8(size)
		if size > remaining {
			size = remaining
		}
		sizes = append(sizes, size)
		remaining -= size
	}
	if remaining > 0 {
		sizes = append(sizes, remaining)
	}
	return sizes, nil
}

// buildFragment clones the original IP header for one fragment,
// patching total length, the MF flag, fragment offset and checksum.
func buildFragment(origHeader, chunk []byte, offsetUnits int, moreFragments bool) []byte {
	header := append([]byte(nil), origHeader...)
	totalLen := len(header) + len(chunk)
	binary.BigEndian.PutUint16(header[2:4], uint16(totalLen))

	flagsAndOffset := uint16(offsetUnits & 0x1FFF)
	if moreFragments {
		flagsAndOffset |= 0x2000
	}
	binary.BigEndian.PutUint16(header[6:8], flagsAndOffset)

	header[10] = 0
	header[11] = 0
	checksum := Checksum(header)
	binary.BigEndian.PutUint16(header[10:12], checksum)

	return append(header, chunk...)
}

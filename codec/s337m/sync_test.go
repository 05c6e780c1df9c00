/*
NAME
  sync_test.go

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package s337m

import "testing"

// TestScan24UnalignedOffset is §8 scenario 2: a 24-bit marker
// unaligned at byte offset 7 of a 24-byte zero prefix.
func TestScan24UnalignedOffset(t *testing.T) {
	buf := make([]byte, 24)
	marker := []byte{0x72, 0xF8, 0x96, 0x1F, 0x4E, 0xA5}
	copy(buf[7:], marker)

	var s Scanner
	got := s.Scan(buf, TwentyFour)
	if got != 7 {
		t.Errorf("Scan matched at %d, want 7", got)
	}
}

// TestScan20Mask is §8 scenario 3: the M20 marker must match under
// its mask, and a mask-violating variant must not.
func TestScan20Mask(t *testing.T) {
	good := []byte{0x20, 0x87, 0x6F, 0xF0, 0xE1, 0x54}
	bad := []byte{0x20, 0x87, 0x6F, 0x00, 0xE1, 0x54}

	var s Scanner
	if got := s.Scan(good, TwentyFour); got != 0 {
		t.Errorf("Scan(good) = %d, want 0", got)
	}

	s.Reset()
	if got := s.Scan(bad, TwentyFour); got != EndNotFound {
		t.Errorf("Scan(bad) = %d, want EndNotFound", got)
	}
}

func TestScan16(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf[10:], []byte{0x72, 0xF8, 0x1F, 0x4E})

	var s Scanner
	if got := s.Scan(buf, Sixteen); got != 10 {
		t.Errorf("Scan matched at %d, want 10", got)
	}
}

func TestScanNoMatch(t *testing.T) {
	buf := make([]byte, 32)
	var s Scanner
	if got := s.Scan(buf, Sixteen); got != EndNotFound {
		t.Errorf("Scan(all-zero) = %d, want EndNotFound", got)
	}
}

// TestScanAcrossCalls checks the scanner can find a marker split
// across two Scan calls via its carried 64+64 bit state.
func TestScanAcrossCalls(t *testing.T) {
	marker := []byte{0x72, 0xF8, 0x1F, 0x4E}
	var s Scanner
	if got := s.Scan(marker[:2], Sixteen); got != EndNotFound {
		t.Fatalf("Scan(first half) = %d, want EndNotFound", got)
	}
	got := s.Scan(marker[2:], Sixteen)
	if got != -2 {
		t.Errorf("Scan(second half) = %d, want -2 (marker started 2 bytes before this buffer)", got)
	}
}

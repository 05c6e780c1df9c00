/*
NAME
  sync.go

DESCRIPTION
  sync.go implements the S337M extended sync scanner (§4.B): a sliding
  64-bit (plus 64-bit extension) state machine that finds the sync
  pattern in a byte stream without requiring sample alignment.

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

// EndNotFound is returned by (*Scanner).Scan when buf is exhausted
// without a sync match; the scanner's state is preserved across the
// call so the search resumes on the next buffer. It is chosen well
// outside the range of any real match offset (a match can be at most
// 5 bytes negative, for a marker that started before the start of
// buf) so it can never be confused with one.
const EndNotFound = -1 << 30

// Scanner is a byte-oriented S337M sync-pattern state machine. It is a
// pure function of its accumulated state and the bytes it has been
// fed: ownership of a Scanner value belongs to whichever subsystem
// (framing parser or decode pipeline) is scanning, per the design note
// in spec §9 preferring a scanner that is a function of (state, bytes,
// carrier width) over one that owns its caller's buffer.
//
// The zero value is a Scanner ready to scan from stream start.
type Scanner struct {
	state64 uint64
	stateExt uint64
}

// Reset returns the scanner to its initial (stream-start) state.
func (s *Scanner) Reset() { *s = Scanner{} }

// Scan searches buf for the extended sync pattern appropriate to
// carrier width w. It returns the byte offset of the first sync byte
// on a match, or EndNotFound if buf was exhausted first, in which case
// the scanner retains its state so the next call can continue the
// search across the buffer boundary.
//
// The window is 128 bits (64 + 64-bit extension holding the 8 bytes
// that precede it) wide, deliberately wider
// than the 96/144-bit window SMPTE Annex A recommends: the extra zero
// bytes required ahead of the marker make false positives strictly
// harder to hit, not easier (§4.B rationale).
func (s *Scanner) Scan(buf []byte, w CarrierWidth) int {
	state := s.state64
	stateExt := s.stateExt
	for i, b := range buf {
		stateExt = (stateExt >> 8) | (state & 0xFF00000000000000)
		state = (state << 8) | uint64(b)

		if stateExt != 0 {
			continue
		}

		switch w {
		case Sixteen:
			if state&mask16le != marker16le {
				continue
			}
			state = ^uint64(0)
			s.state64, s.stateExt = state, stateExt
			return i - 3
		case TwentyFour:
			if state&mask24le != marker24le && state&mask20le != marker20le {
				continue
			}
			state = ^uint64(0)
			s.state64, s.stateExt = state, stateExt
			return i - 5
		}
	}
	s.state64, s.stateExt = state, stateExt
	return EndNotFound
}

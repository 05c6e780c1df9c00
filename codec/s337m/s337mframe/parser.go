/*
NAME
  parser.go

DESCRIPTION
  parser.go implements the S337M framing parser (§4.D): it accumulates
  bytes from successive input buffers into whole bursts, tracking
  carrier-sample offsets so it can report a duration per packet that
  reflects guard-band phase and inter-burst jitter.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package s337mframe provides the S337M framing parser and probe:
// turning a stream of arbitrarily-chunked PCM carrier bytes into
// whole bursts, and scoring a candidate buffer for format detection.
package s337mframe

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/s337m/codec/s337m"
)

// Parser accumulates PCM carrier bytes across successive Parse calls
// and emits one complete S337M burst per call once enough bytes have
// arrived, along with a duration (in carrier samples, one sample per
// carrier word - see Result.Duration) for the bytes that call's burst
// spans.
//
// Unlike the original this is derived from, Parser never hands a
// caller the guard band itself as a pseudo-burst: a Burst is always
// exactly header_bytes+payload_bytes (§3), and guard-band/inter-burst
// gap bytes are folded only into the Duration of the burst that
// follows them - except for the very first gap of the stream, which
// is "phase", not jitter, and is dropped from Duration entirely (see
// AesInitialOffset). This matches the literal worked example in
// spec §8 scenario 1 and is documented as a deliberate simplification
// in DESIGN.md.
//
// A Parser is not safe for concurrent use; it is owned by one caller
// at a time, matching spec §5's sequential per-stream model.
type Parser struct {
	width s337m.CarrierWidth
	log   logging.Logger

	scan s337m.Scanner

	inited          bool
	warnedGuardband bool

	// aesInitialOffset is the byte offset of the very first sync found
	// in the stream, from stream start. It is recorded once and never
	// updated again; it is exposed for callers that want to account
	// for stream-start phase explicitly (see spec §4.F.3, which the
	// decode pipeline consults for the same purpose).
	aesInitialOffset int

	gap         int    // bytes seen since the last completed burst, not yet attributed to one.
	preBurstGap int    // gap folded into the burst currently being assembled, frozen when its sync was found.
	carry       []byte // unscanned leftover bytes from the end of a buffer that completed a burst mid-call.

	assembling bool
	haveHeader bool
	header     s337m.BurstHeader
	pending    []byte
}

// NewParser returns a Parser for a carrier of width w. l receives the
// one-shot "corrupted guard band" log line (§7); it may be nil, in
// which case that event is simply not logged.
func NewParser(w s337m.CarrierWidth, l logging.Logger) *Parser {
	return &Parser{width: w, log: l}
}

// AesInitialOffset returns the byte offset, from stream start, of the
// first sync marker this Parser ever found. It is zero until the
// first burst is located.
func (p *Parser) AesInitialOffset() int { return p.aesInitialOffset }

// Result is the output of one Parse call.
type Result struct {
	// Burst holds the complete burst bytes (header + payload) when
	// Complete is true; it is nil otherwise. Burst aliases the input
	// buffer (or the parser's internal accumulation buffer) and is
	// only valid until the next call to Parse.
	Burst []byte
	// Complete reports whether Burst holds a fully assembled burst.
	Complete bool
	// Duration is the number of carrier samples (one per carrier
	// word, i.e. per channel, not per stereo frame) this burst and
	// any inter-burst gap preceding it represents. It is only
	// meaningful when Complete is true.
	Duration int
}

// Parse feeds the next chunk of carrier bytes into the parser. An
// empty buf signals end of stream. If bytes carried over from a burst
// that completed mid-buffer are still pending, they are processed
// first, as if passed in buf, and may complete a further burst; only
// once nothing is carried over does an empty buf flush any burst still
// being assembled, using whatever bytes have arrived so far (§4.D
// "Special EOF handling").
//
// completeFrames, when true, means the caller promises buf already
// holds exactly one whole burst (no sync search is needed); this
// mirrors PARSER_FLAG_COMPLETE_FRAMES in the original.
func (p *Parser) Parse(buf []byte, completeFrames bool) (Result, error) {
	if completeFrames {
		return Result{Burst: buf, Complete: true, Duration: s337m.Duration(len(buf), p.width)}, nil
	}

	if len(p.carry) > 0 {
		buf = append(append([]byte(nil), p.carry...), buf...)
		p.carry = nil
	}

	if len(buf) == 0 {
		return p.flush(), nil
	}

	if !p.assembling {
		var ok bool
		buf, ok = p.findSync(buf)
		if !ok {
			return Result{}, nil
		}
	}

	return p.assemble(buf)
}

// flush emits whatever partial burst has been accumulated so far as
// the final Result; it is a no-op (returns a zero Result) if nothing
// is pending.
func (p *Parser) flush() Result {
	if !p.assembling {
		return Result{}
	}
	burst := p.pending
	dur := s337m.Duration(p.preBurstGap+len(burst), p.width)
	p.assembling = false
	p.haveHeader = false
	p.pending = nil
	return Result{Burst: burst, Complete: true, Duration: dur}
}

// findSync locates the next burst's sync marker in buf, handling the
// one-shot guard-band corruption check and starting assembly of a new
// burst. It returns the remaining bytes from the sync marker onward,
// and whether a sync was actually found (if not, buf has been fully
// consumed into the gap count and there is nothing further to do this
// call).
func (p *Parser) findSync(buf []byte) ([]byte, bool) {
	next := p.scan.Scan(buf, p.width)

	if !p.inited {
		end := next
		if end == s337m.EndNotFound {
			end = len(buf)
		}
		if end < 0 {
			end = 0
		}
		if hasNonZero(buf[:end]) {
			if !p.warnedGuardband {
				if p.log != nil {
					p.log.Warning("s337m: unexpected non-null bytes in guard band - they will be ignored")
				}
				p.warnedGuardband = true
			}
		}
	}

	if next == s337m.EndNotFound {
		p.gap += len(buf)
		return nil, false
	}
	if next < 0 {
		next = 0
	}

	gapHere := p.gap + next
	p.gap = 0
	if !p.inited {
		p.inited = true
		p.aesInitialOffset = gapHere
		p.preBurstGap = 0
	} else {
		p.preBurstGap = gapHere
	}

	p.assembling = true
	p.haveHeader = false
	p.pending = p.pending[:0]
	return buf[next:], true
}

// assemble appends buf to the burst currently being accumulated,
// decoding its header once enough bytes have arrived and completing
// it once its full length (header+payload) has been reached.
func (p *Parser) assemble(buf []byte) (Result, error) {
	p.pending = append(p.pending, buf...)

	if !p.haveHeader {
		lead := int(p.width) >> 1 // 8 bytes for a 16-bit carrier, 12 for 24-bit.
		if len(p.pending) < lead {
			return Result{}, nil
		}
		h, ok, err := s337m.DecodeHeader(p.pending, p.width, false)
		if err != nil {
			p.assembling = false
			p.pending = nil
			return Result{}, err
		}
		if !ok {
			// The matched sync was followed by null type/size words:
			// not a real burst. Resume searching for the next sync,
			// counting everything seen so far as gap.
			p.assembling = false
			p.gap = len(p.pending)
			p.pending = nil
			return Result{}, nil
		}
		p.header = h
		p.haveHeader = true
	}

	total := p.header.BurstBytes()
	if len(p.pending) < total {
		return Result{}, nil
	}

	burst := p.pending[:total]
	if leftover := p.pending[total:]; len(leftover) > 0 {
		p.carry = append([]byte(nil), leftover...)
	}
	dur := s337m.Duration(p.preBurstGap+total, p.width)

	p.assembling = false
	p.haveHeader = false
	p.pending = nil

	return Result{Burst: burst, Complete: true, Duration: dur}, nil
}

// hasNonZero reports whether any byte in b is non-zero.
func hasNonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}

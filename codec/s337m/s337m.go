/*
NAME
  s337m.go

DESCRIPTION
  s337m.go defines the data model shared by the S337M sync scanner,
  burst header decoder, framing parser and decode pipeline: carrier
  widths, sync markers, and the permitted pairings between them.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package s337m implements SMPTE ST 337 ("S337M") framing: locating
// non-PCM bursts (in practice, Dolby E frames) that have been packed
// into a stereo PCM stream, and decoding their headers.
package s337m

import "fmt"

// CarrierWidth is the bit width of the PCM carrier's samples.
type CarrierWidth int

const (
	Sixteen    CarrierWidth = 16
	TwentyFour CarrierWidth = 24
)

// Bytes returns the number of bytes a single carrier word occupies.
func (w CarrierWidth) Bytes() int {
	switch w {
	case Sixteen:
		return 2
	case TwentyFour:
		return 3
	default:
		return 0
	}
}

// Valid reports whether w is a carrier width this package understands.
func (w CarrierWidth) Valid() bool {
	return w == Sixteen || w == TwentyFour
}

func (w CarrierWidth) String() string {
	switch w {
	case Sixteen:
		return "16-bit"
	case TwentyFour:
		return "24-bit"
	default:
		return fmt.Sprintf("CarrierWidth(%d)", int(w))
	}
}

// SyncMarker identifies which of the three SMPTE ST 337 extended sync
// patterns a burst's header carries. The payload word width it implies
// (16, 20 or 24 bits) determines the header layout and, combined with
// the carrier width, whether the burst is structurally valid (see
// validPairs).
type SyncMarker int

const (
	NoMarker SyncMarker = iota
	M16                 // 16-bit payload words, wire pattern 0x72F81F4E.
	M20                 // 20-bit payload words, wire pattern 0x20876FF0E154 masked 0xF0FFFFF0FFFF.
	M24                 // 24-bit payload words, wire pattern 0x72F8961F4EA5.
)

// Wire patterns for the three markers (§6), big-endian as they appear
// on the wire. M20's pattern must be compared under mask20le; the other
// two are exact matches at their bit width.
const (
	marker16le uint64 = 0x72F81F4E
	marker20le uint64 = 0x20876FF0E154
	marker24le uint64 = 0x72F8961F4EA5

	mask16le uint64 = 0xFFFFFFFF
	mask20le uint64 = 0xF0FFFFF0FFFF
	mask24le uint64 = 0xFFFFFFFFFFFF
)

// wordBits is the payload word width implied by a marker.
func (m SyncMarker) wordBits() int {
	switch m {
	case M16:
		return 16
	case M20:
		return 20
	case M24:
		return 24
	default:
		return 0
	}
}

// headerBytes is the number of bytes occupied by the marker plus the
// type/size words that follow it: 4 sync bytes + 2 words (type, size)
// for M16, 6 sync bytes + 2 words for M20/M24.
func (m SyncMarker) headerBytes() int {
	switch m {
	case M16:
		return 8
	case M20, M24:
		return 12
	default:
		return 0
	}
}

func (m SyncMarker) String() string {
	switch m {
	case M16:
		return "M16"
	case M20:
		return "M20"
	case M24:
		return "M24"
	default:
		return "no marker"
	}
}

// validPairs enumerates the only (carrier, payload word width)
// combinations SMPTE ST 337 permits: a 16-bit carrier only ever carries
// 16-bit payload words, and a 24-bit carrier carries either 20-bit or
// 24-bit payload words.
var validPairs = map[CarrierWidth]map[int]bool{
	Sixteen:    {16: true},
	TwentyFour: {20: true, 24: true},
}

// validPair reports whether marker m is legal on a carrier of width w.
func validPair(w CarrierWidth, m SyncMarker) bool {
	return validPairs[w][m.wordBits()]
}

// DataType identifies the payload family carried by a burst, the low 5
// bits of the header's data_type field (§3).
type DataType byte

// DolbyE is the only payload family this package decodes (data_type &
// 0x1F == 0x1C); every other value is reported Unsupported.
const DolbyE DataType = 0x1C

// BurstHeader is the decoded header of one S337M burst (§3).
type BurstHeader struct {
	Marker       SyncMarker
	DataType     DataType
	PayloadBytes int

	// HeaderBytes is the number of header bytes (marker + type/size
	// words) preceding PayloadBytes worth of payload.
	HeaderBytes int
}

// BurstBytes is the total length, header plus payload, of the burst
// described by h.
func (h BurstHeader) BurstBytes() int {
	return h.HeaderBytes + h.PayloadBytes
}

// Duration converts a byte count on a carrier of width w to a carrier
// sample count (§4.D step 6): `(bytes << 2) / (carrierWordBits >> 1)`,
// which works out to bytes/2 for a 16-bit carrier and bytes/3 for a
// 24-bit one - the form spec.md gives directly, kept as a shift-and-
// divide so one expression handles both widths.
func Duration(bytes int, w CarrierWidth) int {
	return (bytes << 2) / (int(w) >> 1)
}

// Stream carries the demuxer-surface metadata a caller needs to present
// an S337M carrier to something like an AVStream equivalent: the
// parameters libavformat/s337m.c's read_header derives from the raw
// codec ID once a carrier width is known, rather than anything framing
// or decoding need internally.
type Stream struct {
	SampleRate         int
	TimeBase           [2]int // numerator, denominator; always 1/SampleRate here.
	BitsPerCodedSample int
	RawCodecID         CarrierWidth
}

// NewStream builds the Stream metadata for a carrier of width w sampled
// at sampleRate, mirroring read_header's avpriv_set_pts_info(st, 64, 1,
// sample_rate) timebase and its bits_per_coded_sample assignment from
// the raw codec id.
func NewStream(w CarrierWidth, sampleRate int) Stream {
	return Stream{
		SampleRate:         sampleRate,
		TimeBase:           [2]int{1, sampleRate},
		BitsPerCodedSample: int(w),
		RawCodecID:         w,
	}
}

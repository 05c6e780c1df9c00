/*
NAME
  header.go

DESCRIPTION
  header.go decodes a S337M burst header once the sync scanner has
  located its first byte (§4.C).

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

import "encoding/binary"

// DecodeHeader decodes the S337M burst header at the start of buf,
// which must begin at the first sync byte of a carrier of width w.
//
// If buf's sync-marker bytes (the first 4 bytes for a 16-bit carrier,
// the first 6 for a 24-bit one) are all zero (a burst has not actually
// started here, just an empty/guard word pair),
// DecodeHeader returns a zero BurstHeader, false, nil: the caller
// should keep accumulating rather than treat this as an error.
//
// probing selects the behaviour on an unsupported data type: with
// probing true (no real decode context — see the Probe component),
// an unsupported type is reported as InvalidData; with probing false,
// it is reported as Unsupported, matching avpriv_s337m_parse_header's
// distinction between a probe caller (dectx == NULL) and a decode
// caller.
func DecodeHeader(buf []byte, w CarrierWidth, probing bool) (h BurstHeader, ok bool, err error) {
	next := int(w) >> 1 // carrierWordBits/2 bytes: 8 for a 16-bit carrier, 12 for 24-bit.
	if len(buf) < next {
		return BurstHeader{}, false, wrap(BufferTooSmall, "short header read")
	}

	var state uint64
	var dataType, dataSize int
	switch w {
	case Sixteen:
		state = uint64(binary.BigEndian.Uint32(buf[0:4]))
		dataType = int(binary.LittleEndian.Uint16(buf[4:6]))
		dataSize = int(binary.LittleEndian.Uint16(buf[6:8]))
	case TwentyFour:
		state = be48(buf[0:6])
		dataType = int(le24(buf[6:9]))
		dataSize = int(le24(buf[9:12]))
	default:
		return BurstHeader{}, false, wrapf(InvalidData, "unsupported carrier width %v", w)
	}

	if state == 0 {
		return BurstHeader{}, false, nil
	}

	var marker SyncMarker
	var wordBits int
	switch {
	case state&mask16le == marker16le:
		marker, wordBits = M16, 16
	case state&mask20le == marker20le:
		marker, wordBits = M20, 20
		dataType >>= 8
		dataSize >>= 4
	case state&mask24le == marker24le:
		marker, wordBits = M24, 24
		dataType >>= 8
	default:
		return BurstHeader{}, false, wrap(InvalidData, "no recognised sync marker in header")
	}

	if !validPair(w, marker) {
		return BurstHeader{}, false, wrapf(InvalidData,
			"unexpected %d-bit payload in %v container", wordBits, w)
	}

	if DataType(dataType&0x1F) != DolbyE {
		if probing {
			return BurstHeader{}, false, wrapf(InvalidData, "data type %#x unsupported", dataType&0x1F)
		}
		return BurstHeader{}, false, wrapf(Unsupported, "data type %#x in SMPTE 337M", dataType&0x1F)
	}

	payloadBytes := ((wordBits + 7) / 8) * dataSize / wordBits
	return BurstHeader{
		Marker:       marker,
		DataType:     DolbyE,
		PayloadBytes: payloadBytes,
		HeaderBytes:  marker.headerBytes(),
	}, true, nil
}

func be48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func le24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

/*
NAME
  probe.go

DESCRIPTION
  probe.go implements S337M format detection (§4.E): scoring a
  candidate PCM buffer by counting how many genuine Dolby E burst
  headers it can find within a minimum sample window.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package s337mframe

import "github.com/ausocean/s337m/codec/s337m"

const (
	// probeMinFrames is the minimum number of distinct Dolby E headers
	// that must be found for a buffer to be recognised as S337M.
	probeMinFrames = 2

	// aesDefaultRate is the carrier sample rate assumed when no better
	// information is available, matching the AES3 default of 48kHz.
	aesDefaultRate = 48000

	// maxFrameRate bounds the slowest plausible Dolby E frame rate
	// (frames per second), used to size the minimum probe window.
	maxFrameRate = 30

	// ScoreExtension is the confidence score returned for a buffer
	// whose container extension already suggested this format - the
	// analogue of AVPROBE_SCORE_EXTENSION. Probe returns one more than
	// this when it independently confirms the format from content.
	ScoreExtension = 50
)

// probeMinSamples is the smallest buffer, in carrier samples (one per
// stereo frame), Probe requires before it will even attempt to score
// a buffer: enough to span probeMinFrames Dolby E frames at the
// slowest plausible frame rate.
const probeMinSamples = probeMinFrames * aesDefaultRate / maxFrameRate

// Probe scores buf as a candidate S337M stream carried on a carrier of
// width w. It returns a positive score (ScoreExtension+1) once it has
// found at least probeMinFrames distinct Dolby E burst headers, and 0
// otherwise - including when buf is too short to reach the minimum
// sample window at all.
func Probe(buf []byte, w s337m.CarrierWidth) int {
	frameBytes := int(w) >> 2 // bytes per stereo frame: 4 for 16-bit, 6 for 24-bit.
	if frameBytes == 0 || len(buf)/frameBytes < probeMinSamples {
		return 0
	}

	var scan s337m.Scanner
	var found int
	rest := buf
	for {
		next := scan.Scan(rest, w)
		if next == s337m.EndNotFound {
			break
		}
		if next < 0 {
			next = 0
		}
		rest = rest[next:]

		lead := int(w) >> 1
		if len(rest) < lead {
			break
		}
		if _, ok, err := s337m.DecodeHeader(rest, w, true); err == nil && ok {
			found++
			if found >= probeMinFrames {
				return ScoreExtension + 1
			}
		}

		// Advance past this header's lead-in bytes so Scan doesn't
		// immediately re-match the same marker position.
		rest = rest[lead:]
	}
	return 0
}

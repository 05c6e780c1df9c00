/*
NAME
  pcm_test.go

DESCRIPTION
  pcm_test.go tests the StereoToMono downmix against an inline
  synthetic stereo buffer rather than fixture files.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcm

import (
	"bytes"
	"testing"
)

// TestStereoToMono checks that only the left channel's bytes survive
// the downmix, interleaved stereo S16_LE in, mono S16_LE out.
func TestStereoToMono(t *testing.T) {
	// Three stereo frames: left=0x0201, right=0x0403, etc. (little-endian).
	in := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x05, 0x06, 0x07, 0x08,
		0x09, 0x0A, 0x0B, 0x0C,
	}
	buf := Buffer{
		Format: BufferFormat{Channels: 2, Rate: 44100, SFormat: S16_LE},
		Data:   in,
	}

	mono, err := StereoToMono(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mono.Format.Channels != 1 {
		t.Errorf("Channels = %d, want 1", mono.Format.Channels)
	}
	want := []byte{0x01, 0x02, 0x05, 0x06, 0x09, 0x0A}
	if !bytes.Equal(mono.Data, want) {
		t.Errorf("Data = %v, want %v", mono.Data, want)
	}
}

// TestStereoToMonoAlreadyMono checks the pass-through case.
func TestStereoToMonoAlreadyMono(t *testing.T) {
	buf := Buffer{Format: BufferFormat{Channels: 1, Rate: 44100, SFormat: S16_LE}, Data: []byte{0x01, 0x02}}
	mono, err := StereoToMono(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(mono.Data, buf.Data) {
		t.Errorf("Data = %v, want unchanged %v", mono.Data, buf.Data)
	}
}

// TestStereoToMonoBadChannels checks that a channel count other than
// 1 or 2 is rejected.
func TestStereoToMonoBadChannels(t *testing.T) {
	buf := Buffer{Format: BufferFormat{Channels: 4, Rate: 44100, SFormat: S16_LE}, Data: make([]byte, 16)}
	if _, err := StereoToMono(buf); err == nil {
		t.Error("expected an error for a 4-channel buffer")
	}
}

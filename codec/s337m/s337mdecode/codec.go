/*
NAME
  codec.go

DESCRIPTION
  codec.go defines the inner-codec and resampler contracts the decode
  pipeline (§4.F, §6 "Inner codec contract" / "Resampler contract")
  is built against. Both are represented with github.com/go-audio/audio
  types, the same shape exp/flac/decode.go uses for a decoded frame.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package s337mdecode implements the S337M decode pipeline (§4.F):
// pass-through mode, one-frame-delay steady-state decode through a
// pluggable inner codec, and drift/sync-loss correction through a
// pluggable resampler.
package s337mdecode

import "github.com/go-audio/audio"

// InnerCodec is the payload decoder the pipeline submits deswizzled
// burst payloads to - in practice a Dolby E decoder, but the pipeline
// itself is agnostic to the payload family it wraps, matching the
// "send-packet / receive-frame push API" of spec §6.
type InnerCodec interface {
	// SendPacket submits one burst's deswizzled payload for decoding.
	SendPacket(payload []byte) error

	// ReceiveFrame returns the frame decoded from the most recent
	// SendPacket call. Its Format.NumChannels, Format.SampleRate and
	// SourceBitDepth describe the codec's native output; Data holds
	// interleaved samples.
	ReceiveFrame() (*audio.IntBuffer, error)

	// Close releases any resources held by the codec.
	Close() error
}

// ResamplerConfig carries the fixed parameters a Resampler is
// configured with exactly once, on the first successful inner decode
// (§4.F.3). Async/MinComp/MaxSoftComp/MinHardComp together are the
// "whole drift/sync-loss strategy" spec §9 calls load-bearing: any
// substitute resampler must honour all three thresholds or the
// timeline guarantees this pipeline promises break.
type ResamplerConfig struct {
	NumChannels    int
	SourceBitDepth int
	InSampleRate   int
	OutSampleRate  int

	// Async enables jitter/drift correction at all; with it false a
	// resampler may simply pass samples through uncorrected.
	Async bool
	// MinComp is the smallest drift, in seconds, worth correcting -
	// below this a resampler should do nothing (one sample at 48kHz:
	// 1/48000).
	MinComp float64
	// MaxSoftComp is the largest per-call sample-rate adjustment, as a
	// fraction of the nominal rate, that may be used to close drift
	// gradually (0.0001 = 0.01%).
	MaxSoftComp float64
	// MinHardComp is the drift, in seconds, at or above which a
	// resampler should insert or drop whole samples of silence/audio
	// in one go rather than nudge gradually (0.02 = 20ms).
	MinHardComp float64
}

// Resampler is the pluggable drift/sync-loss correction stage between
// the inner codec's native sample rate and the carrier's declared
// sample rate.
type Resampler interface {
	// Init (re)configures the resampler; called exactly once.
	Init(cfg ResamplerConfig) error

	// NextPTS declares the next expected output PTS, in units of
	// 1/(InSampleRate*OutSampleRate) seconds: the pipeline passes a
	// carrier sample count multiplied by InSampleRate.
	NextPTS(pts int64)

	// Convert resamples in into out, producing outSamples frames (or,
	// when out is nil, merely buffers in without producing output -
	// used to seed the resampler with the first decoded frame). A nil
	// in with out non-nil requests a pure flush. It returns the number
	// of frames actually written to out.
	Convert(out *audio.IntBuffer, outSamples int, in *audio.IntBuffer) (int, error)

	// Close releases any resources held by the resampler.
	Close() error
}

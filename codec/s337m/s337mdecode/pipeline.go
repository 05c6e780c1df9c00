/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go implements the S337M decode pipeline (§4.F): pass-through
  mode, the one-frame-delay normal decode path, first-frame resampler
  initialization, and steady-state frame production.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package s337mdecode

import (
	"github.com/go-audio/audio"
	"github.com/pkg/errors"

	"github.com/ausocean/s337m/codec/s337m"
)

// aesDefaultRate is the carrier sample rate a Pipeline assumes when
// none is configured explicitly, matching the AES3 standard rate.
const aesDefaultRate = 48000

// resampler tuning constants latched at first-frame initialization
// (§4.F.3). These are not configurable: spec §9 treats the whole
// three-threshold drift policy as load-bearing, not a tunable knob.
const (
	resamplerAsync       = true
	resamplerMinComp     = 1.0 / 48000
	resamplerMaxSoftComp = 0.0001
	resamplerMinHardComp = 0.02
)

// Pipeline implements the S337M decode pipeline (§4.F) for one
// carrier width. It is not safe for concurrent use.
type Pipeline struct {
	width             s337m.CarrierWidth
	passthrough       bool
	carrierSampleRate int

	inner     InnerCodec
	resampler Resampler

	inited  bool
	flushed bool

	aesStartPosition int
	prevAesSamples   int

	outNumChannels         int
	outBitDepth            int
	codecInitialSampleRate int
	nextPTS                int64

	ptInited bool
}

// NewPipeline returns a Pipeline for a carrier of width w, decoding
// through inner and drift-correcting through resampler. Either may be
// nil only if opts selects Passthrough(true), which uses neither.
func NewPipeline(w s337m.CarrierWidth, inner InnerCodec, resampler Resampler, opts ...func(*Pipeline) error) (*Pipeline, error) {
	p := &Pipeline{
		width:             w,
		carrierSampleRate: aesDefaultRate,
		inner:             inner,
		resampler:         resampler,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if !p.passthrough && p.inner == nil {
		return nil, errors.New("s337mdecode: inner codec required unless Passthrough is set")
	}
	if !p.passthrough && p.resampler == nil {
		return nil, errors.New("s337mdecode: resampler required unless Passthrough is set")
	}
	return p, nil
}

// Close releases the inner codec and resampler, if set. It is safe to
// call at any point, including after a failed Decode.
func (p *Pipeline) Close() error {
	var errs []error
	if p.inner != nil {
		if err := p.inner.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.resampler != nil {
		if err := p.resampler.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// aesWordSpan is carrier_word_bits/8: the number of
// carrier bytes one aes sample spans (2 for a 16-bit carrier, 3 for a
// 24-bit one).
func (p *Pipeline) aesWordSpan() int {
	return int(p.width) >> 3
}

// Decode submits one packet of carrier bytes (or an empty packet to
// flush) and returns the frame it produces, if any. A nil frame with
// a nil error means the call was absorbed internally (guard band
// accumulation, resampler seeding) and produced no output yet - this
// is expected and not an error condition.
func (p *Pipeline) Decode(packet []byte) (*audio.IntBuffer, error) {
	if p.passthrough {
		return p.decodePassthrough(packet)
	}

	prevAesSamples := p.prevAesSamples
	if len(packet) > 0 {
		p.prevAesSamples = len(packet) / p.aesWordSpan()
	}

	if len(packet) == 0 {
		return p.flush(prevAesSamples)
	}

	h, ok, err := s337m.DecodeHeader(packet, p.width, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.aesStartPosition += len(packet)
		return nil, nil
	}

	payload := packet[h.HeaderBytes:]
	if len(payload) < h.PayloadBytes {
		return nil, errors.Wrap(s337m.BufferTooSmall, "short burst payload")
	}
	payload = payload[:h.PayloadBytes]

	switch p.width {
	case s337m.Sixteen:
		s337m.Swap16(payload, payload, len(payload)/2)
	case s337m.TwentyFour:
		s337m.Swap24(payload)
	}

	if err := p.inner.SendPacket(payload); err != nil {
		return nil, err
	}
	innerFrame, err := p.inner.ReceiveFrame()
	if err != nil {
		return nil, err
	}

	if !p.inited {
		return p.firstFrame(innerFrame, h.PayloadBytes)
	}
	return p.steadyState(innerFrame, prevAesSamples)
}

// firstFrame latches the outer format from innerFrame, initializes
// the resampler with the fixed drift-correction policy (§4.F.3), seeds
// its PTS according to how much guard band preceded this burst, and
// buffers innerFrame without producing output yet. payloadBytes is the
// triggering burst's payload span (excluding its header), matching the
// original's dectx->frame_size used for the same guard-band-vs-drift
// comparison below.
func (p *Pipeline) firstFrame(innerFrame *audio.IntBuffer, payloadBytes int) (*audio.IntBuffer, error) {
	p.outNumChannels = innerFrame.Format.NumChannels
	p.outBitDepth = innerFrame.SourceBitDepth
	p.codecInitialSampleRate = innerFrame.Format.SampleRate

	err := p.resampler.Init(ResamplerConfig{
		NumChannels:    p.outNumChannels,
		SourceBitDepth: p.outBitDepth,
		InSampleRate:   p.codecInitialSampleRate,
		OutSampleRate:  p.carrierSampleRate,
		Async:          resamplerAsync,
		MinComp:        resamplerMinComp,
		MaxSoftComp:    resamplerMaxSoftComp,
		MinHardComp:    resamplerMinHardComp,
	})
	if err != nil {
		return nil, err
	}

	var seedPTS int64
	if p.aesStartPosition >= payloadBytes {
		seedPTS = int64(p.codecInitialSampleRate) * int64(p.aesStartPosition) / int64(p.aesWordSpan())
	}
	p.resampler.NextPTS(seedPTS)
	p.nextPTS = seedPTS

	if _, err := p.resampler.Convert(nil, 0, innerFrame); err != nil {
		return nil, err
	}

	p.inited = true
	return nil, nil
}

// steadyState advances the pipeline's PTS and resamples innerFrame
// into a frame sized to the previous call's burst (§4.F.4).
func (p *Pipeline) steadyState(innerFrame *audio.IntBuffer, prevAesSamples int) (*audio.IntBuffer, error) {
	if innerFrame.Format.NumChannels != p.outNumChannels ||
		innerFrame.SourceBitDepth != p.outBitDepth ||
		innerFrame.Format.SampleRate != p.codecInitialSampleRate {
		return nil, s337m.InputChanged
	}

	p.nextPTS += int64(p.codecInitialSampleRate) * int64(prevAesSamples)
	p.resampler.NextPTS(p.nextPTS)

	out := newIntBuffer(p.outNumChannels, p.outBitDepth, prevAesSamples)
	n, err := p.resampler.Convert(out, prevAesSamples, innerFrame)
	if err != nil {
		return nil, err
	}
	if n != prevAesSamples {
		return nil, errors.Wrapf(s337m.InternalBug, "resampler produced %d samples, want %d", n, prevAesSamples)
	}
	return out, nil
}

// flush drains the resampler at end of stream (§4.D "Special EOF
// handling" / §5 "Close").
func (p *Pipeline) flush(prevAesSamples int) (*audio.IntBuffer, error) {
	if !p.inited || p.flushed {
		return nil, nil
	}
	p.flushed = true

	out := newIntBuffer(p.outNumChannels, p.outBitDepth, prevAesSamples)
	n, err := p.resampler.Convert(out, prevAesSamples, nil)
	if err != nil {
		return nil, err
	}
	out.Data = out.Data[:n*p.outNumChannels]
	return out, nil
}

// decodePassthrough implements §4.F.1: no inner codec, no resampler,
// a straight re-encode of the carrier bytes into S16 or S32 PCM.
func (p *Pipeline) decodePassthrough(packet []byte) (*audio.IntBuffer, error) {
	if len(packet) == 0 {
		return nil, nil
	}
	if !p.ptInited {
		p.outNumChannels = 2
		if p.width == s337m.Sixteen {
			p.outBitDepth = 16
		} else {
			p.outBitDepth = 32
		}
		p.ptInited = true
	}

	switch p.width {
	case s337m.Sixteen:
		n := len(packet) / 2
		out := newIntBuffer(p.outNumChannels, p.outBitDepth, n/p.outNumChannels)
		for i := 0; i < n; i++ {
			v := int16(packet[i*2]) | int16(packet[i*2+1])<<8
			out.Data[i] = int(v)
		}
		return out, nil
	case s337m.TwentyFour:
		n := len(packet) / 3
		out := newIntBuffer(p.outNumChannels, p.outBitDepth, n/p.outNumChannels)
		for i := 0; i < n; i++ {
			b := packet[i*3 : i*3+3]
			sample := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			// Left-justify the 24-bit sample into a 32-bit word
			// (§4.F.1's "sample << 8" repack); the original MSB lands
			// on bit 31, giving a correctly-signed S32 value.
			out.Data[i] = int(sample << 8)
		}
		return out, nil
	default:
		return nil, errors.Errorf("s337mdecode: unsupported carrier width %v", p.width)
	}
}

func newIntBuffer(numChannels, bitDepth, numFrames int) *audio.IntBuffer {
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  0,
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, numFrames*numChannels),
	}
}

/*
NAME
  resampler.go

DESCRIPTION
  resampler.go implements DefaultResampler, a pure Go stand-in for the
  libswresample-backed resampler the original decode pipeline drives
  (§4.F.3, §9 "resampler policy is load-bearing"). No library in the
  example corpus provides the three-threshold drift-correction model
  the pipeline needs (soft compression below MinHardComp, hard
  insert/drop at or above it, no-op below MinComp), so this is built
  directly on the standard library; see DESIGN.md for the justification.

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
)

// DefaultResampler implements Resampler using linear interpolation for
// rate conversion and the same three-threshold drift policy the
// original pipeline configures its resampler with: drift below
// MinComp is ignored, positive drift at or above MinHardComp is
// corrected by dropping whole frames (negative drift is not corrected:
// no silence is inserted), and drift in between is left to
// accumulate across calls (soft compression is, in this pure Go
// substitute, approximated by doing nothing until it either resolves
// itself or crosses into hard-compensation territory - a deliberate
// simplification recorded in DESIGN.md).
type DefaultResampler struct {
	cfg     ResamplerConfig
	nextPTS int64
	have    int64 // running count of input frames consumed.
	want    int64 // running count of output frames that should have been produced by now.

	// pending holds the most recently submitted input frame, not yet
	// drained to an output buffer. Convert always drains the frame
	// from the call before last, one call behind whatever it was just
	// handed - this is what lets the pipeline's one-frame delay
	// (§4.F.4) end in a real tail frame at flush, instead of flush
	// having nothing left to emit.
	pending       *audio.IntBuffer
	pendingFrames int
}

// NewDefaultResampler returns an uninitialised DefaultResampler; Init
// must be called before Convert.
func NewDefaultResampler() *DefaultResampler {
	return &DefaultResampler{}
}

func (r *DefaultResampler) Init(cfg ResamplerConfig) error {
	if cfg.InSampleRate <= 0 || cfg.OutSampleRate <= 0 {
		return errors.New("s337mdecode: resampler requires positive sample rates")
	}
	r.cfg = cfg
	r.have = 0
	r.want = 0
	return nil
}

func (r *DefaultResampler) NextPTS(pts int64) {
	r.nextPTS = pts
	r.have = pts
	r.want = pts
}

// Convert drains the frame buffered from the previous call into out,
// then latches in as the new pending frame for the call after this
// one (in is nil only at end of stream, once the caller has no more
// carrier data to offer - pending is left untouched so the final
// Convert(out, n, nil) still has something to drain). With the in and
// out rates equal (the common case for this pipeline, since the
// carrier and inner codec typically agree on 48kHz) draining reduces
// to a straight copy with drift accounting only; a differing rate
// falls back to linear interpolation across channel frames.
func (r *DefaultResampler) Convert(out *audio.IntBuffer, outSamples int, in *audio.IntBuffer) (int, error) {
	prev, prevFrames := r.pending, r.pendingFrames
	r.pending, r.pendingFrames = nil, 0

	if in != nil {
		inFrames := len(in.Data) / r.cfg.NumChannels
		r.have += int64(inFrames)
		r.pending, r.pendingFrames = in, inFrames
	}

	if out == nil {
		// Buffering-only call (pipeline's first-frame seed): nothing
		// to drain yet, just latch in as pending.
		return 0, nil
	}

	if prev == nil {
		// Nothing was ever buffered: a flush with no preceding frame.
		out.Data = out.Data[:0]
		return 0, nil
	}

	inFrames := prevFrames
	drift := r.have - r.want - int64(outSamples)
	switch {
	case drift <= int64(float64(r.cfg.InSampleRate)*r.cfg.MinComp):
		// Drift too small to act on.
	case drift >= int64(float64(r.cfg.InSampleRate)*r.cfg.MinHardComp):
		// Hard correction: drop whole frames (positive drift only) by
		// reducing how many we copy below.
		if drift > 0 && drift < int64(inFrames) {
			inFrames -= int(drift)
		}
	default:
		// Soft compensation territory: left to resolve across
		// subsequent calls rather than corrected in one step.
	}

	if r.cfg.OutSampleRate == r.cfg.InSampleRate || inFrames == 0 {
		n := inFrames
		if n > outSamples {
			n = outSamples
		}
		copyFrames(out, prev, n, r.cfg.NumChannels)
		r.want += int64(n)
		return n, nil
	}

	n := linearResample(out, prev, outSamples, inFrames, r.cfg.NumChannels, r.cfg.InSampleRate, r.cfg.OutSampleRate)
	r.want += int64(n)
	return n, nil
}

func (r *DefaultResampler) Close() error { return nil }

// copyFrames copies the first n channel-frames of in into out,
// growing out.Data as needed.
func copyFrames(out, in *audio.IntBuffer, n, numChannels int) {
	need := n * numChannels
	if cap(out.Data) < need {
		out.Data = make([]int, need)
	} else {
		out.Data = out.Data[:need]
	}
	copy(out.Data, in.Data[:need])
}

// linearResample produces up to outSamples channel-frames of out from
// the first inFrames channel-frames of in, via linear interpolation
// between neighbouring input frames. This pipeline
// only reaches this path when the inner codec and the carrier
// genuinely disagree on sample rate, which does not occur for Dolby E
// in practice; it exists so ResamplerConfig's rates are honoured
// rather than silently ignored.
func linearResample(out, in *audio.IntBuffer, outSamples, inFrames, numChannels, inRate, outRate int) int {
	if inFrames == 0 || outSamples == 0 {
		out.Data = out.Data[:0]
		return 0
	}
	need := outSamples * numChannels
	if cap(out.Data) < need {
		out.Data = make([]int, need)
	} else {
		out.Data = out.Data[:need]
	}
	for i := 0; i < outSamples; i++ {
		srcPos := float64(i) * float64(inRate) / float64(outRate)
		idx := int(srcPos)
		if idx >= inFrames-1 {
			idx = inFrames - 1
		}
		next := idx + 1
		if next > inFrames-1 {
			next = inFrames - 1
		}
		frac := srcPos - float64(idx)
		for c := 0; c < numChannels; c++ {
			a := in.Data[idx*numChannels+c]
			b := in.Data[next*numChannels+c]
			out.Data[i*numChannels+c] = a + int(frac*float64(b-a))
		}
	}
	return outSamples
}

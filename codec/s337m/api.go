/*
NAME
  api.go

DESCRIPTION
  api.go provides the package's public entry points (§4.G): one
  parser, one prober and one pipeline constructor per carrier width,
  differing only in the CarrierWidth each binds at construction.

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

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/s337m/codec/s337m/s337mdecode"
	"github.com/ausocean/s337m/codec/s337m/s337mframe"
)

// NewParser16 returns a framing parser for a 16-bit PCM carrier.
func NewParser16(l logging.Logger) *s337mframe.Parser {
	return s337mframe.NewParser(Sixteen, l)
}

// NewParser24 returns a framing parser for a 24-bit PCM carrier.
func NewParser24(l logging.Logger) *s337mframe.Parser {
	return s337mframe.NewParser(TwentyFour, l)
}

// Probe16 scores buf as a candidate S337M stream on a 16-bit carrier.
func Probe16(buf []byte) int { return s337mframe.Probe(buf, Sixteen) }

// Probe24 scores buf as a candidate S337M stream on a 24-bit carrier.
func Probe24(buf []byte) int { return s337mframe.Probe(buf, TwentyFour) }

// NewDecoder16 returns a decode pipeline for a 16-bit PCM carrier.
// inner and resampler may both be nil when opts selects
// s337mdecode.Passthrough(true).
func NewDecoder16(inner s337mdecode.InnerCodec, resampler s337mdecode.Resampler, opts ...func(*s337mdecode.Pipeline) error) (*s337mdecode.Pipeline, error) {
	return s337mdecode.NewPipeline(Sixteen, inner, resampler, opts...)
}

// NewDecoder24 returns a decode pipeline for a 24-bit PCM carrier.
// inner and resampler may both be nil when opts selects
// s337mdecode.Passthrough(true).
func NewDecoder24(inner s337mdecode.InnerCodec, resampler s337mdecode.Resampler, opts ...func(*s337mdecode.Pipeline) error) (*s337mdecode.Pipeline, error) {
	return s337mdecode.NewPipeline(TwentyFour, inner, resampler, opts...)
}

// StreamInfo16 builds the demuxer-surface Stream metadata for a 16-bit
// PCM carrier sampled at sampleRate.
func StreamInfo16(sampleRate int) Stream { return NewStream(Sixteen, sampleRate) }

// StreamInfo24 builds the demuxer-surface Stream metadata for a 24-bit
// PCM carrier sampled at sampleRate.
func StreamInfo24(sampleRate int) Stream { return NewStream(TwentyFour, sampleRate) }

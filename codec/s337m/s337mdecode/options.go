/*
NAME
  options.go

DESCRIPTION
  options.go provides Pipeline option functions, in the style of
  protocol/rtmp/options.go: each option is a closure over *Pipeline
  returned by a constructor function, applied by NewPipeline.

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

import "errors"

// Option parameter errors.
var ErrCarrierSampleRate = errors.New("bad carrier sample rate")

// Passthrough selects pass-through mode (§4.F.1): each packet's carrier
// bytes are repacked as stereo S16 samples (16-bit carrier) or
// left-justified S32 samples (24-bit carrier) and handed back, with no
// S337M deswizzling, inner codec or resampler involved. The default is
// false (normal decode).
func Passthrough(v bool) func(*Pipeline) error {
	return func(p *Pipeline) error {
		p.passthrough = v
		return nil
	}
}

// CarrierSampleRate changes the carrier sample rate a Pipeline assumes
// when none can be inferred from the container, used to seed the
// resampler's output rate. The default is aesDefaultRate (48000), the
// AES3 standard rate the original hard-codes.
func CarrierSampleRate(hz int) func(*Pipeline) error {
	return func(p *Pipeline) error {
		if hz <= 0 {
			return ErrCarrierSampleRate
		}
		p.carrierSampleRate = hz
		return nil
	}
}

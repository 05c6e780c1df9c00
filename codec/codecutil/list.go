/*
NAME
  list.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package codecutil

// All available codecs for reference in any application.
// When adding or removing a codec from this list, the IsValid function below must be updated.
const (
	PCM    = "pcm"    // Carrier PCM, no S337M wrapping.
	S337M  = "s337m"  // Non-PCM audio wrapped in PCM per SMPTE ST 337.
	DolbyE = "dolbye" // Dolby E, the only payload type S337M decodes.
)

// IsValid checks if a string is a known and valid codec in the right format.
func IsValid(s string) bool {
	switch s {
	case PCM, S337M, DolbyE:
		return true
	default:
		return false
	}
}

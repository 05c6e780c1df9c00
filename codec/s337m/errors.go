/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the error taxonomy shared by the sync scanner,
  header decoder, framing parser and decode pipeline (§6, §7).

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

import "github.com/pkg/errors"

// Kind classifies an error returned by this package and its
// sub-packages, mirroring the AVERROR_* family the spec is derived
// from (§6). Callers distinguish kinds with errors.Is against the
// sentinel Kind values below, e.g. errors.Is(err, s337m.InputChanged).
type Kind string

func (k Kind) Error() string { return string(k) }

// The error kinds §6/§7 require every caller-visible failure to map
// onto.
const (
	// InputChanged is returned when the inner codec's channel layout,
	// sample format or sample rate changes after the decode pipeline
	// has latched them. There is no recovery path; the caller must
	// restart the decoder.
	InputChanged Kind = "s337m: input changed"

	// InvalidData is returned for a malformed burst: a marker/carrier
	// combination outside the three permitted pairs, or a header that
	// otherwise fails to parse.
	InvalidData Kind = "s337m: invalid data"

	// BufferTooSmall is returned when fewer than carrierWordBits/2
	// bytes are available to read a header.
	BufferTooSmall Kind = "s337m: buffer too small"

	// Unsupported is returned when a burst's data type is not Dolby E.
	Unsupported Kind = "s337m: unsupported data type"

	// OutOfMemory is returned when a scratch buffer, frame or context
	// allocation fails.
	OutOfMemory Kind = "s337m: out of memory"

	// InternalBug is returned when an invariant the package itself is
	// responsible for maintaining is violated (e.g. an unresolvable
	// registered codec id).
	InternalBug Kind = "s337m: internal error"
)

// wrap annotates err with msg while preserving errors.Is/As matching
// against the Kind sentinel, following the github.com/pkg/errors
// convention the teacher codebase uses at package boundaries (see
// codec/wav and exp/flac).
func wrap(k Kind, msg string) error {
	return errors.Wrap(k, msg)
}

func wrapf(k Kind, format string, args ...interface{}) error {
	return errors.Wrapf(k, format, args...)
}

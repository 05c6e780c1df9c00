/*
NAME
  bitops.go

DESCRIPTION
  bitops.go provides the byte-swap primitives S337M payload deswizzling
  needs: a 16-bit word swap and a 24-bit byte-triplet reversal (§4.A).

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

// Swap16 reverses the two bytes of each 16-bit little-endian word in
// src, writing w words into dst. dst and src may be the same slice
// (in-place); they may not otherwise overlap. Any trailing bytes in
// src beyond w*2 are ignored.
func Swap16(dst, src []byte, w int) {
	for i := 0; i < w; i++ {
		j := i * 2
		dst[j], dst[j+1] = src[j+1], src[j]
	}
}

// Swap24 reverses the first and last byte of each 3-byte triplet in
// buf, in place. Trailing bytes (len(buf) mod 3) are left untouched.
func Swap24(buf []byte) {
	n := len(buf) / 3 * 3
	for i := 0; i < n; i += 3 {
		buf[i], buf[i+2] = buf[i+2], buf[i]
	}
}

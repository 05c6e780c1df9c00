/*
NAME
  pipeline_test.go

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
	"testing"

	"github.com/go-audio/audio"

	"github.com/ausocean/s337m/codec/s337m"
)

// dolbyEBurst16 is the §8 scenario 1 literal burst: a 16-bit-carrier
// Dolby E header (data_size=1792=0x0700 little-endian, 224-byte
// payload) followed by 224 bytes of payload data, 232 bytes total.
func dolbyEBurst16() []byte {
	header := []byte{0x72, 0xF8, 0x1F, 0x4E, 0x1C, 0x00, 0x00, 0x07}
	payload := make([]byte, 224)
	for i := range payload {
		payload[i] = byte(i)
	}
	return append(header, payload...)
}

// fakeInnerCodec returns a fixed-format frame of fixed length on every
// ReceiveFrame call, except where overridden by rateAt, which lets a
// test inject a sample-rate change on a specific call (1-indexed) to
// exercise InputChanged.
type fakeInnerCodec struct {
	numChannels int
	bitDepth    int
	rate        int
	frameLen    int // frames (per channel) per ReceiveFrame call.

	rateAt map[int]int // call index -> overriding rate.

	calls   int
	closed  bool
	lastPkt []byte
}

func (c *fakeInnerCodec) SendPacket(payload []byte) error {
	c.lastPkt = payload
	return nil
}

func (c *fakeInnerCodec) ReceiveFrame() (*audio.IntBuffer, error) {
	c.calls++
	rate := c.rate
	if r, ok := c.rateAt[c.calls]; ok {
		rate = r
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: c.numChannels, SampleRate: rate},
		SourceBitDepth: c.bitDepth,
		Data:           make([]int, c.frameLen*c.numChannels),
	}, nil
}

func (c *fakeInnerCodec) Close() error { c.closed = true; return nil }

func newTestPipeline(t *testing.T, inner *fakeInnerCodec) *Pipeline {
	t.Helper()
	p, err := NewPipeline(s337m.Sixteen, inner, NewDefaultResampler())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

// TestPipelineOneFrameDelay is the §8 "One-frame delay" invariant:
// call N for N >= 2 emits exactly the number of carrier samples that
// arrived in call N-1 (232 bytes / aesWordSpan(2) = 116 samples here).
func TestPipelineOneFrameDelay(t *testing.T) {
	inner := &fakeInnerCodec{numChannels: 2, bitDepth: 24, rate: aesDefaultRate, frameLen: 116}
	p := newTestPipeline(t, inner)
	defer p.Close()

	burst := dolbyEBurst16()

	out, err := p.Decode(burst)
	if err != nil {
		t.Fatalf("call 1: %v", err)
	}
	if out != nil {
		t.Fatalf("call 1: expected no output frame yet (first-frame seed), got %v", out)
	}

	out, err = p.Decode(burst)
	if err != nil {
		t.Fatalf("call 2: %v", err)
	}
	if out == nil {
		t.Fatal("call 2: expected an output frame")
	}
	if got := len(out.Data) / out.Format.NumChannels; got != 116 {
		t.Errorf("call 2: emitted %d samples, want 116 (call 1's carrier sample count)", got)
	}

	out, err = p.Decode(burst)
	if err != nil {
		t.Fatalf("call 3: %v", err)
	}
	if got := len(out.Data) / out.Format.NumChannels; got != 116 {
		t.Errorf("call 3: emitted %d samples, want 116 (call 2's carrier sample count)", got)
	}
}

// TestPipelineInputChanged is §8 scenario 5: the inner codec changes
// sample rate between bursts, and the second decode call must return
// InputChanged.
func TestPipelineInputChanged(t *testing.T) {
	inner := &fakeInnerCodec{
		numChannels: 2, bitDepth: 24, rate: aesDefaultRate, frameLen: 116,
		rateAt: map[int]int{2: aesDefaultRate * 2},
	}
	p := newTestPipeline(t, inner)
	defer p.Close()

	burst := dolbyEBurst16()

	if _, err := p.Decode(burst); err != nil {
		t.Fatalf("call 1: %v", err)
	}
	_, err := p.Decode(burst)
	if err != s337m.InputChanged {
		t.Errorf("call 2: error = %v, want InputChanged", err)
	}
}

// TestPipelineEOFFlush is §8 scenario 6: EOF flush after one
// successful decode emits exactly one output frame equal in sample
// count to the last input packet's carrier samples, then subsequent
// calls emit nothing.
func TestPipelineEOFFlush(t *testing.T) {
	inner := &fakeInnerCodec{numChannels: 2, bitDepth: 24, rate: aesDefaultRate, frameLen: 116}
	p := newTestPipeline(t, inner)
	defer p.Close()

	burst := dolbyEBurst16()
	if _, err := p.Decode(burst); err != nil {
		t.Fatalf("call 1: %v", err)
	}
	out, err := p.Decode(burst)
	if err != nil {
		t.Fatalf("call 2: %v", err)
	}
	if out == nil {
		t.Fatal("call 2: expected an output frame")
	}

	out, err = p.Decode(nil)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if out == nil {
		t.Fatal("flush: expected a tail frame")
	}
	if got := len(out.Data) / out.Format.NumChannels; got != 116 {
		t.Errorf("flush: emitted %d samples, want 116", got)
	}

	out, err = p.Decode(nil)
	if err != nil {
		t.Fatalf("post-flush: %v", err)
	}
	if out != nil {
		t.Errorf("post-flush: expected no further output, got %v", out)
	}
}

// TestPipelinePassthrough16 is the §8 "Passthrough invertibility
// (16-bit)" invariant: byte-for-byte copy.
func TestPipelinePassthrough16(t *testing.T) {
	p, err := NewPipeline(s337m.Sixteen, nil, nil, Passthrough(true))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()

	in := []byte{0x01, 0x80, 0xFF, 0x7F, 0x00, 0x00, 0x34, 0x12}
	out, err := p.Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	back := make([]byte, len(in))
	for i, v := range out.Data {
		back[i*2] = byte(v)
		back[i*2+1] = byte(v >> 8)
	}
	for i := range in {
		if back[i] != in[i] {
			t.Fatalf("passthrough round trip: got %v, want %v", back, in)
		}
	}
}

// TestPipelinePassthrough24 is the §8 "Passthrough (24-bit)"
// invariant: each output 32-bit sample equals the input 24-bit sample
// shifted left by 8.
func TestPipelinePassthrough24(t *testing.T) {
	p, err := NewPipeline(s337m.TwentyFour, nil, nil, Passthrough(true))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()

	in := []byte{0x01, 0x02, 0x03, 0xFF, 0xFF, 0x7F}
	out, err := p.Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Data) != 2 {
		t.Fatalf("got %d samples, want 2", len(out.Data))
	}
	want0 := int32(0x01|0x02<<8|0x03<<16) << 8
	want1 := int32(0xFF|0xFF<<8|0x7F<<16) << 8
	if out.Data[0] != int(want0) {
		t.Errorf("sample 0 = %#x, want %#x", out.Data[0], want0)
	}
	if out.Data[1] != int(want1) {
		t.Errorf("sample 1 = %#x, want %#x", out.Data[1], want1)
	}
}

// TestPipelineRequiresInnerAndResampler checks NewPipeline's
// non-passthrough validation.
func TestPipelineRequiresInnerAndResampler(t *testing.T) {
	if _, err := NewPipeline(s337m.Sixteen, nil, NewDefaultResampler()); err == nil {
		t.Error("expected an error with a nil inner codec and no Passthrough option")
	}
	if _, err := NewPipeline(s337m.Sixteen, &fakeInnerCodec{}, nil); err == nil {
		t.Error("expected an error with a nil resampler and no Passthrough option")
	}
}

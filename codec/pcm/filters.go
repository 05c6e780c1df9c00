/*
NAME
  filters.go

DESCRIPTION
  filters.go implements the two post-decode filters cmd/s337mdump
  wires into the S337M passthrough output: a windowed-sinc lowpass
  (-lowpass) and a clipping amplifier (-gain).

AUTHOR
  David Sutton <davidsutton@ausocean.org>

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
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// AudioFilter is an interface which contains an Apply function.
// Apply is used to apply the filter to the given buffer of PCM data (b.Data).
type AudioFilter interface {
	Apply(b Buffer) ([]byte, error)
}

// SelectiveFrequencyFilter is a windowed-sinc FIR filter built by
// NewLowPass.
type SelectiveFrequencyFilter struct {
	coeffs     []float64
	cutoff     float64
	sampleRate uint
	taps       int
}

// NewLowPass builds an FIR lowpass filter with cutoff frequency fc,
// against the sample rate in info, using length taps.
func NewLowPass(fc float64, info BufferFormat, length int) (*SelectiveFrequencyFilter, error) {
	if fc <= 0 || fc >= float64(info.Rate)/2 {
		return nil, errors.New("cutoff frequency out of bounds")
	}
	if length <= 0 {
		return nil, errors.New("cannot create filter with length <= 0")
	}

	filter := &SelectiveFrequencyFilter{cutoff: fc, sampleRate: info.Rate, taps: length}

	fd := fc / float64(info.Rate)
	size := filter.taps + 1
	filter.coeffs = make([]float64, size)
	b := 2 * math.Pi * fd
	winData := window.FlatTop(size)
	for n := 0; n < filter.taps/2; n++ {
		c := float64(n) - float64(filter.taps)/2
		y := math.Sin(c*b) / (math.Pi * c)
		filter.coeffs[n] = y * winData[n]
		filter.coeffs[size-1-n] = filter.coeffs[n]
	}
	filter.coeffs[filter.taps/2] = 2 * fd * winData[filter.taps/2]

	return filter, nil
}

// Apply is the SelectiveFrequencyFilter implementation of the AudioFilter interface. This implementation
// takes the buffer data (b.Data), applies the lowpass filter and returns a byte slice of filtered audio.
func (filter *SelectiveFrequencyFilter) Apply(b Buffer) ([]byte, error) {
	return convolveFromBytes(b.Data, filter.coeffs)
}

// Amplifier is a struct which contains the factor of amplification to be used in the application
// of the filter.
type Amplifier struct {
	factor float64
}

// NewAmplifier defines the factor of amplification for an amplifying filter.
func NewAmplifier(factor float64) *Amplifier {
	// Uses the absolute value of the factor to ensure compatibility.
	return &Amplifier{factor: math.Abs(factor)}
}

// Apply implemented for an amplifier takes the buffer data (b.Data), applies
// the amplification and returns a byte slice of filtered audio.
func (amp *Amplifier) Apply(b Buffer) ([]byte, error) {
	inputAsFloat, err := bytesToFloats(b.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to floats: %w", err)
	}

	// Multiply every sample by the factor of amplification.
	floatOutput := make([]float64, len(inputAsFloat))
	for i := range inputAsFloat {
		floatOutput[i] = inputAsFloat[i] * amp.factor
		// Clip to avoid wraparound artifacts.
		if floatOutput[i] > 1 {
			floatOutput[i] = 1
		} else if floatOutput[i] < -1 {
			floatOutput[i] = -1
		}
	}
	outBytes, err := floatsToBytes(floatOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to bytes: %w", err)
	}
	return outBytes, nil
}

// convolveFromBytes takes in a byte slice and a float64 slice for a filter, converts to floats,
// convolves the two signals, and converts back to bytes and returns the convolution.
func convolveFromBytes(b []byte, filter []float64) ([]byte, error) {
	bufAsFloats, err := bytesToFloats(b)
	if err != nil {
		return nil, fmt.Errorf("could not convert to floats: %w", err)
	}

	convolution, err := fastConvolve(bufAsFloats, filter)
	if err != nil {
		return nil, fmt.Errorf("could not compute fast convolution: %w", err)
	}
	outBytes, err := floatsToBytes(convolution)
	if err != nil {
		return nil, fmt.Errorf("could not convert convolution to bytes: %w", err)
	}
	return outBytes, nil
}

func bytesToFloats(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, errors.New("no audio to convert to floats")
	} else if len(b)%2 != 0 {
		return nil, errors.New("uneven number of bytes (not whole number of samples)")
	}

	inputAsFloat := make([]float64, len(b)/2)
	inputAsInt := make([]int16, len(b)/2)
	bReader := bytes.NewReader(b)
	for i := range inputAsFloat {
		binary.Read(bReader, binary.LittleEndian, &inputAsInt[i])
		inputAsFloat[i] = float64(inputAsInt[i]) / (math.MaxInt16 + 1)
	}
	return inputAsFloat, nil
}

// floatsToBytes converts a slice of float64 PCM data into a slice of signed 16bit PCM data.
// The input float slice should contains values between -1 and 1. The function converts these values
// to a proportionate signed value between -32767 and 32767. This 16bit integer is split into two bytes,
// then returned in Little Endian notation in a byte slice double the length of the input.
func floatsToBytes(f []float64) ([]byte, error) {
	buf := new(bytes.Buffer)
	out := make([]byte, len(f)*2)
	for i := range f {
		err := binary.Write(buf, binary.LittleEndian, int16(f[i]*math.MaxInt16))
		if err != nil {
			return nil, fmt.Errorf("failed to write ints as bytes: %w", err)
		}
	}
	n, err := buf.Read(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read bytes from buffer: %w", err)
	} else if n != len(out) {
		return nil, fmt.Errorf("buffer and output length mismatch read %d bytes, expected %d: %w", n, len(out), err)
	}

	return out, nil
}

// fastConvolve takes in a signal and an FIR filter and computes the convolution (runs in O(nlog(n)) time).
func fastConvolve(x, h []float64) ([]float64, error) {
	if len(x) == 0 || len(h) == 0 {
		return nil, errors.New("convolution requires slice of length > 0")
	}

	convLen := len(x) + len(h) - 1

	// Pad signals to the next largest power of 2 larger than convLen.
	padLen := int(math.Pow(2, math.Ceil(math.Log2(float64(convLen)))))
	zeros := make([]float64, padLen-len(x), padLen-len(h))
	x = append(x, zeros...)
	zeros = make([]float64, padLen-len(h))
	h = append(h, zeros...)

	xFFT, hFFT := fft.FFTReal(x), fft.FFTReal(h)

	yFFT := make([]complex128, padLen)
	for i := range xFFT {
		yFFT[i] = xFFT[i] * hFFT[i]
	}

	iy := fft.IFFT(yFFT)

	y := make([]float64, padLen)
	for i := range iy {
		y[i] = real(iy[i])
	}

	return y[0:convLen], nil
}

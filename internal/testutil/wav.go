package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"
)

// Sine generates n 16-bit samples of a freq-Hz tone at the given sample rate.
func Sine(n, rate int, freq float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(10000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

// EncodeWAV renders interleaved 16-bit PCM samples into a WAV byte stream.
func EncodeWAV(tb testing.TB, samples []int16, rate, channels int) []byte {
	tb.Helper()

	var data bytes.Buffer
	for _, s := range samples {
		if err := binary.Write(&data, binary.LittleEndian, s); err != nil {
			tb.Fatalf("encode sample: %v", err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	return buf.Bytes()
}

// WriteWAV writes a 16-bit PCM WAV file with the given interleaved samples.
func WriteWAV(tb testing.TB, path string, samples []int16, rate, channels int) {
	tb.Helper()

	if err := os.WriteFile(path, EncodeWAV(tb, samples, rate, channels), 0o644); err != nil {
		tb.Fatalf("write wav: %v", err)
	}
}

// Package audio decodes audio files into the mono 16 kHz float32 PCM that the
// whisper decoder consumes.
package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// SampleRate is the rate whisper models expect.
const SampleRate = 16000

// DecodeFile reads path and returns mono float32 samples at SampleRate.
// The format is chosen by extension, with a magic-byte sniff as fallback.
func DecodeFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".ogg", ".oga":
		return decodeOggVorbis(f)
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	switch string(magic) {
	case "RIFF":
		return decodeWAV(f)
	case "OggS":
		return decodeOggVorbis(f)
	case "ID3\x03", "ID3\x04":
		return decodeMP3(f)
	}
	return nil, fmt.Errorf("unsupported audio format: %s (supported: wav, mp3, ogg-vorbis)", path)
}

func decodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, errors.New("empty wav file")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	channels, rate := bufferLayout(pb)
	return toMono16k(bufferToFloat32(pb, bitDepth), channels, rate), nil
}

// bufferToFloat32 normalizes an integer PCM buffer into [-1, 1] floats.
func bufferToFloat32(pb *gaudio.IntBuffer, bitDepth int) []float32 {
	out := make([]float32, len(pb.Data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range pb.Data {
		out[i] = float32(clamp(float64(v)*scale, -1.0, 1.0))
	}
	return out
}

func bufferLayout(pb *gaudio.IntBuffer) (channels, rate int) {
	channels, rate = 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	return channels, rate
}

func decodeMP3(r io.Reader) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}

	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, fmt.Errorf("parse mp3 pcm: %w", err)
	}

	samples := int16ToFloat32(ints)

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always emits interleaved stereo.
	return toMono16k(samples, 2, rate), nil
}

func decodeOggVorbis(r io.Reader) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode ogg-vorbis: %w", err)
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg-vorbis stream")
	}
	return toMono16k(pcm, format.Channels, format.SampleRate), nil
}

func toMono16k(samples []float32, channels, rate int) []float32 {
	if channels > 1 {
		samples = downmix(samples, channels)
	}
	if rate != SampleRate {
		samples = resample(samples, rate, SampleRate)
	}
	return samples
}

func int16ToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Clip is decoded audio: mono samples scaled to [-1, 1].
type Clip struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// DecodeWAV reads a 16-bit PCM WAV file. Multi-channel input is downmixed
// to mono by averaging, though segments are cut to mono upstream.
func DecodeWAV(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return decodeWAVBytes(data)
}

func decodeWAVBytes(data []byte) (*Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.New("decode wav: not a RIFF/WAVE file")
	}

	var (
		sampleRate int
		channels   int
		haveFormat bool
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if chunkSize < 0 || body+chunkSize > len(data) {
			return nil, errors.New("decode wav: truncated chunk")
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, errors.New("decode wav: short fmt chunk")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if audioFormat != 1 || bitsPerSample != 16 {
				return nil, fmt.Errorf("decode wav: unsupported format %d/%d-bit (want PCM/16)", audioFormat, bitsPerSample)
			}
			if channels <= 0 || sampleRate <= 0 {
				return nil, errors.New("decode wav: degenerate fmt chunk")
			}
			haveFormat = true
		case "data":
			if !haveFormat {
				return nil, errors.New("decode wav: data chunk before fmt chunk")
			}
			return decodeSamples(data[body:body+chunkSize], sampleRate, channels)
		}

		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	return nil, errors.New("decode wav: no data chunk")
}

func decodeSamples(raw []byte, sampleRate, channels int) (*Clip, error) {
	frameBytes := 2 * channels
	frames := len(raw) / frameBytes
	if frames == 0 {
		return nil, errors.New("decode wav: empty data chunk")
	}

	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		base := i * frameBytes
		for ch := 0; ch < channels; ch++ {
			value := int16(binary.LittleEndian.Uint16(raw[base+2*ch : base+2*ch+2]))
			sum += float64(value)
		}
		samples[i] = sum / float64(channels) / 32768.0
	}
	return &Clip{SampleRate: sampleRate, Samples: samples}, nil
}

package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Frames per analysis buffer, matching what recorders usually hand out.
const bufferFrames = 1024

const (
	// Ambient calibration: the threshold decays towards ratio * observed energy.
	ambientDampingPerSecond = 0.15
	ambientEnergyRatio      = 1.5
)

var ErrNotWAV = errors.New("not a valid PCM WAV file")

// Clip is decoded PCM audio. Samples are interleaved and scaled to 16-bit range.
type Clip struct {
	Samples    []int
	SampleRate int
	Channels   int
}

func DecodeFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func Decode(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotWAV, err)
		}
		return nil, ErrNotWAV
	}
	if d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: unsupported audio format %d", ErrNotWAV, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading pcm data: %w", err)
	}

	bitDepth := int(d.BitDepth)
	samples := make([]int, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = to16(s, bitDepth)
	}

	return &Clip{
		Samples:    samples,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}, nil
}

func to16(s, bitDepth int) int {
	switch {
	case bitDepth == 8:
		// 8-bit WAV is unsigned
		return (s - 128) << 8
	case bitDepth > 16:
		return s >> (bitDepth - 16)
	default:
		return s
	}
}

func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

func (c *Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(c.Frames()) / float64(c.SampleRate) * float64(time.Second))
}

func (c *Clip) Empty() bool {
	return len(c.Samples) == 0
}

// AdjustForAmbientNoise calibrates an energy threshold against the leading
// window of the clip, starting from threshold. It returns the new threshold.
func (c *Clip) AdjustForAmbientNoise(window time.Duration, threshold float64) float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return threshold
	}

	secondsPerBuffer := float64(bufferFrames) / float64(c.SampleRate)
	damping := math.Pow(ambientDampingPerSecond, secondsPerBuffer)

	elapsed := 0.0
	for start := 0; start < c.Frames(); start += bufferFrames {
		elapsed += secondsPerBuffer
		if elapsed > window.Seconds() {
			break
		}
		energy := c.rms(start, start+bufferFrames)
		threshold = threshold*damping + energy*ambientEnergyRatio*(1-damping)
	}

	return threshold
}

// TrimSilence drops leading and trailing buffers whose energy does not exceed
// threshold. A clip with no voiced buffer comes back empty.
func (c *Clip) TrimSilence(threshold float64) *Clip {
	first, last := -1, -1
	for start := 0; start < c.Frames(); start += bufferFrames {
		if c.rms(start, start+bufferFrames) > threshold {
			if first < 0 {
				first = start
			}
			last = start + bufferFrames
		}
	}

	trimmed := &Clip{SampleRate: c.SampleRate, Channels: c.Channels}
	if first < 0 {
		return trimmed
	}
	if last > c.Frames() {
		last = c.Frames()
	}
	trimmed.Samples = c.Samples[first*c.Channels : last*c.Channels]
	return trimmed
}

func (c *Clip) rms(startFrame, endFrame int) float64 {
	if endFrame > c.Frames() {
		endFrame = c.Frames()
	}
	lo, hi := startFrame*c.Channels, endFrame*c.Channels
	if hi <= lo {
		return 0
	}

	var sum float64
	for _, s := range c.Samples[lo:hi] {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(hi-lo))
}

// WAV encodes the clip as 16-bit PCM.
func (c *Clip) WAV() []byte {
	samples := make([]int16, len(c.Samples))
	for i, s := range c.Samples {
		switch {
		case s > math.MaxInt16:
			s = math.MaxInt16
		case s < math.MinInt16:
			s = math.MinInt16
		}
		samples[i] = int16(s)
	}
	return EncodeWAV(samples, c.SampleRate, c.Channels)
}

// EncodeWAV writes interleaved 16-bit samples as a canonical 44-byte-header WAV.
func EncodeWAV(samples []int16, sampleRate, channels int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize
	blockAlign := channels * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(channels))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

const (
	channels      = 2
	bytesPerFrame = channels * 2 // 16-bit stereo
)

// ErrUnsupportedFormat is returned for resources that are not MP3 audio.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PCM is decoded signed 16-bit little endian stereo audio.
type PCM struct {
	Data       []byte
	SampleRate int
}

// Duration returns the playing time of the samples.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}
	frames := len(p.Data) / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(p.SampleRate)
}

// LooksLikeMP3 reports whether data starts with an ID3 tag or an MPEG
// frame sync.
func LooksLikeMP3(data []byte) bool {
	return (len(data) >= 3 && string(data[:3]) == "ID3") ||
		(len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0)
}

// Decode decodes an MP3 resource.
func Decode(data []byte) (PCM, error) {
	if !LooksLikeMP3(data) {
		return PCM{}, ErrUnsupportedFormat
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return PCM{}, fmt.Errorf("decode mp3: %w", err)
	}
	if len(raw) == 0 {
		return PCM{}, fmt.Errorf("%w: no audio frames", ErrUnsupportedFormat)
	}

	return PCM{Data: raw[:len(raw)-len(raw)%bytesPerFrame], SampleRate: dec.SampleRate()}, nil
}

// Resample converts p to rate using linear interpolation.
func (p PCM) Resample(rate int) PCM {
	if rate <= 0 || p.SampleRate <= 0 || rate == p.SampleRate {
		return p
	}

	n := len(p.Data) / bytesPerFrame
	if n == 0 {
		return PCM{SampleRate: rate}
	}
	m := int(int64(n) * int64(rate) / int64(p.SampleRate))
	out := make([]byte, m*bytesPerFrame)
	step := float64(p.SampleRate) / float64(rate)

	sample := func(frame, ch int) float64 {
		off := frame*bytesPerFrame + ch*2
		return float64(int16(binary.LittleEndian.Uint16(p.Data[off:])))
	}

	for i := 0; i < m; i++ {
		pos := float64(i) * step
		j := int(pos)
		if j >= n {
			j = n - 1
		}
		k := min(j+1, n-1)
		frac := pos - float64(j)
		for ch := 0; ch < channels; ch++ {
			a, b := sample(j, ch), sample(k, ch)
			v := int16(a + (b-a)*frac)
			binary.LittleEndian.PutUint16(out[i*bytesPerFrame+ch*2:], uint16(v))
		}
	}

	return PCM{Data: out, SampleRate: rate}
}

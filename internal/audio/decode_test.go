package audio

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func stereo(frames ...int16) []byte {
	b := make([]byte, len(frames)*bytesPerFrame)
	for i, v := range frames {
		binary.LittleEndian.PutUint16(b[i*bytesPerFrame:], uint16(v))
		binary.LittleEndian.PutUint16(b[i*bytesPerFrame+2:], uint16(v))
	}
	return b
}

func frameAt(b []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(b[i*bytesPerFrame:]))
}

func TestLooksLikeMP3(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"id3 tag", []byte("ID3\x04\x00"), true},
		{"frame sync", []byte{0xFF, 0xFB, 0x90}, true},
		{"wav", []byte("RIFF....WAVE"), false},
		{"text", []byte("not audio"), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeMP3(tt.data); got != tt.want {
				t.Errorf("LooksLikeMP3 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeRejectsNonMP3(t *testing.T) {
	_, err := Decode([]byte("<html>not found</html>"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPCMDuration(t *testing.T) {
	p := PCM{Data: make([]byte, 48000*bytesPerFrame), SampleRate: 48000}
	if d := p.Duration(); d != time.Second {
		t.Errorf("Duration = %v, want 1s", d)
	}
	if d := (PCM{Data: make([]byte, 8)}).Duration(); d != 0 {
		t.Errorf("Duration without rate = %v, want 0", d)
	}
}

func TestResampleUpsample(t *testing.T) {
	in := PCM{Data: stereo(0, 100, 200, 300), SampleRate: 1000}
	out := in.Resample(2000)

	if out.SampleRate != 2000 {
		t.Fatalf("SampleRate = %d", out.SampleRate)
	}
	if frames := len(out.Data) / bytesPerFrame; frames != 8 {
		t.Fatalf("frames = %d, want 8", frames)
	}
	want := []int16{0, 50, 100, 150, 200, 250, 300, 300}
	for i, w := range want {
		if got := frameAt(out.Data, i); got != w {
			t.Errorf("frame %d = %d, want %d", i, got, w)
		}
	}
}

func TestResampleDownsample(t *testing.T) {
	in := PCM{Data: stereo(0, 10, 20, 30, 40, 50), SampleRate: 3000}
	out := in.Resample(1000)

	if frames := len(out.Data) / bytesPerFrame; frames != 2 {
		t.Fatalf("frames = %d, want 2", frames)
	}
	if frameAt(out.Data, 0) != 0 || frameAt(out.Data, 1) != 30 {
		t.Errorf("unexpected frames %d, %d", frameAt(out.Data, 0), frameAt(out.Data, 1))
	}
}

func TestResampleSameRate(t *testing.T) {
	in := PCM{Data: stereo(1, 2, 3), SampleRate: 44100}
	out := in.Resample(44100)
	if &out.Data[0] != &in.Data[0] {
		t.Error("same-rate resample should not copy")
	}
}

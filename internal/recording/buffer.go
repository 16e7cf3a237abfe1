package recording

import (
	"time"

	"github.com/petems/whisper-ptt/internal/audio"
)

// Buffer is the audio captured during one recording, in arrival order.
// A zero Buffer means nothing was recorded.
type Buffer struct {
	Chunks [][]int16
}

// Empty reports whether no samples were captured
func (b Buffer) Empty() bool {
	return b.Samples() == 0
}

// Samples returns the total sample count across all chunks
func (b Buffer) Samples() int {
	n := 0
	for _, c := range b.Chunks {
		n += len(c)
	}
	return n
}

// Duration returns the length of the captured audio
func (b Buffer) Duration() time.Duration {
	return time.Duration(b.Samples()) * time.Second / audio.SampleRate
}

// Float32 converts the buffer into the transcription engine's input format
func (b Buffer) Float32() []float32 {
	return audio.ToFloat32(b.Chunks)
}

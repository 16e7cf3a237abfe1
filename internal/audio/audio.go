package audio

import (
	"errors"
	"time"
)

// Capture format shared by every recording. Matches the input format the
// whisper engine expects.
const (
	SampleRate = 16000
	Channels   = 1
	ChunkSize  = 1024
)

// ChunkDuration is the wall-clock length of one chunk.
const ChunkDuration = time.Duration(ChunkSize) * time.Second / SampleRate

// ErrInputOverflowed reports that the driver dropped input before a read.
// The chunk returned alongside it is still valid audio.
var ErrInputOverflowed = errors.New("audio input overflowed")

// Source opens capture streams on an input device
type Source interface {
	Open() (Stream, error)
}

// Stream is an open input stream. A Stream is owned by a single goroutine.
type Stream interface {
	// ReadChunk blocks until ChunkSize samples have been captured. The
	// returned slice is never reused by the stream.
	ReadChunk() ([]int16, error)
	Close() error
}

// Device represents an audio input device
type Device struct {
	ID      string
	Name    string
	Default bool
}

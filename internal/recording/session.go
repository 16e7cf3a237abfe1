package recording

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/petems/whisper-ptt/internal/audio"
	"github.com/rs/zerolog"
)

// ErrDeviceUnavailable is returned by Start when the input stream cannot be opened
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// Observer receives capture events, e.g. for metrics
type Observer interface {
	SessionStarted()
	ChunkCaptured(samples int)
	ChunkFailed()
	SessionStopped(recorded time.Duration)
}

// Options configures a Session
type Options struct {
	Logger   zerolog.Logger
	Observer Observer // Optional - can be nil

	// ReadErrorBackoff is how long the capture loop waits after a failed
	// read before reading again. Defaults to one chunk of audio.
	ReadErrorBackoff time.Duration
}

// Session records from an audio.Source between Start and Stop. At most one
// capture loop runs at a time; Start and Stop are safe to call repeatedly
// and from any goroutine.
type Session struct {
	source  audio.Source
	log     zerolog.Logger
	obs     Observer
	backoff time.Duration

	mu         sync.Mutex
	state      State
	stop       chan struct{}
	done       chan Buffer
	started    time.Time
	sessionLog zerolog.Logger
}

// New creates an idle session reading from source
func New(source audio.Source, opts Options) *Session {
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	backoff := opts.ReadErrorBackoff
	if backoff <= 0 {
		backoff = audio.ChunkDuration
	}
	return &Session{
		source:  source,
		log:     opts.Logger,
		obs:     obs,
		backoff: backoff,
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the capture loop. It returns once the input stream is open.
// Calling Start while not Idle does nothing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return nil
	}

	log := s.log.With().Str("session", uuid.NewString()).Logger()

	opened := make(chan error, 1)
	stop := make(chan struct{})
	done := make(chan Buffer, 1)

	go s.capture(log, opened, stop, done)

	if err := <-opened; err != nil {
		log.Error().Err(err).Msg("Audio device unavailable")
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	s.state = Recording
	s.stop = stop
	s.done = done
	s.started = time.Now()
	s.sessionLog = log

	s.obs.SessionStarted()
	log.Info().Msg("Recording started")
	return nil
}

// Stop signals the capture loop and waits for it to release the device,
// then returns everything it captured. Calling Stop while not Recording
// returns an empty Buffer.
func (s *Session) Stop() Buffer {
	s.mu.Lock()
	if s.state != Recording {
		s.mu.Unlock()
		return Buffer{}
	}
	s.state = Stopping
	done, started, log := s.done, s.started, s.sessionLog
	close(s.stop)
	s.mu.Unlock()

	// The receive orders every append in the loop before our reads
	buf := <-done

	s.mu.Lock()
	s.state = Idle
	s.stop = nil
	s.done = nil
	s.mu.Unlock()

	s.obs.SessionStopped(buf.Duration())
	log.Info().
		Int("chunks", len(buf.Chunks)).
		Int("samples", buf.Samples()).
		Dur("elapsed", time.Since(started)).
		Msg("Recording stopped")

	return buf
}

// Abort stops an active recording and discards it
func (s *Session) Abort() {
	if buf := s.Stop(); !buf.Empty() {
		s.log.Info().Int("samples", buf.Samples()).Msg("Discarded recording")
	}
}

// capture owns the stream from open to close. Open failures are reported
// on opened and the loop never runs.
func (s *Session) capture(log zerolog.Logger, opened chan<- error, stop <-chan struct{}, done chan<- Buffer) {
	stream, err := s.source.Open()
	if err != nil {
		opened <- err
		return
	}

	var chunks [][]int16
	defer func() {
		if err := stream.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close audio stream")
		}
		done <- Buffer{Chunks: chunks}
	}()

	opened <- nil

	for {
		select {
		case <-stop:
			return
		default:
		}

		chunk, err := stream.ReadChunk()
		switch {
		case err == nil:
		case errors.Is(err, audio.ErrInputOverflowed) && len(chunk) > 0:
			s.obs.ChunkFailed()
			log.Debug().Msg("Audio input overflowed")
		default:
			s.obs.ChunkFailed()
			log.Warn().Err(err).Msg("Chunk read failed, substituting silence")
			chunks = append(chunks, make([]int16, audio.ChunkSize))
			s.obs.ChunkCaptured(audio.ChunkSize)

			select {
			case <-stop:
				return
			case <-time.After(s.backoff):
			}
			continue
		}

		// A read that delivered nothing adds nothing
		if len(chunk) == 0 {
			continue
		}
		chunks = append(chunks, chunk)
		s.obs.ChunkCaptured(len(chunk))
	}
}

type nopObserver struct{}

func (nopObserver) SessionStarted()              {}
func (nopObserver) ChunkCaptured(int)            {}
func (nopObserver) ChunkFailed()                 {}
func (nopObserver) SessionStopped(time.Duration) {}

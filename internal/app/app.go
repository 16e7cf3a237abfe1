package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/petems/whisper-ptt/internal/audio"
	"github.com/petems/whisper-ptt/internal/config"
	"github.com/petems/whisper-ptt/internal/inject"
	"github.com/petems/whisper-ptt/internal/metrics"
	"github.com/petems/whisper-ptt/internal/recording"
	"github.com/petems/whisper-ptt/internal/whisper"
	"github.com/rs/zerolog"
)

var (
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrInjectFailed        = errors.New("text injection failed")
)

const (
	transcribeTimeout = 2 * time.Minute
	injectTimeout     = 5 * time.Second
)

type Mode int

const (
	PushToTalk Mode = iota
	Toggle
)

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetIdle()
	SetRecording()
	SetProcessing()
	SetError()
}

// Recorder is the recording lifecycle the app drives
type Recorder interface {
	Start() error
	Stop() recording.Buffer
	Abort()
	State() recording.State
}

type Config struct {
	Recorder      Recorder
	Transcriber   whisper.Transcriber
	Injector      inject.Injector
	Config        *config.Config
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics // Optional - can be nil
	StatusUpdater StatusUpdater    // Optional - can be nil
}

// App binds hotkey edges to recording, transcription and injection.
// Hotkey events are handled one at a time.
type App struct {
	rec     Recorder
	stt     whisper.Transcriber
	inj     inject.Injector
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	status  StatusUpdater

	mu sync.Mutex
}

func New(cfg Config) *App {
	status := cfg.StatusUpdater
	if status == nil {
		status = nopStatus{}
	}
	return &App{
		rec:     cfg.Recorder,
		stt:     cfg.Transcriber,
		inj:     cfg.Injector,
		cfg:     cfg.Config,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		status:  status,
	}
}

// OnHotkey is the hotkey.Manager callback
func (a *App) OnHotkey(pressed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	switch a.modeLocked() {
	case PushToTalk:
		if pressed {
			err = a.startLocked()
		} else {
			err = a.finishLocked()
		}
	case Toggle:
		if !pressed {
			return
		}
		if a.rec.State() == recording.Idle {
			err = a.startLocked()
		} else {
			err = a.finishLocked()
		}
	}

	if err != nil {
		a.log.Error().Err(err).Msg("Dictation failed")
	}
}

// Press starts recording unless one is already running
func (a *App) Press() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startLocked()
}

// Release stops recording, then transcribes and injects the result
func (a *App) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finishLocked()
}

func (a *App) modeLocked() Mode {
	if a.cfg.Mode == config.ModeToggle {
		return Toggle
	}
	return PushToTalk
}

func (a *App) startLocked() error {
	if a.rec.State() != recording.Idle {
		return nil
	}

	if err := a.rec.Start(); err != nil {
		a.metrics.DeviceUnavailable()
		a.status.SetError()
		return err
	}

	a.log.Info().Msg("Starting dictation")
	a.status.SetRecording()
	return nil
}

func (a *App) finishLocked() error {
	if a.rec.State() != recording.Recording {
		return nil
	}

	a.log.Info().Msg("Stopping dictation")
	buf := a.rec.Stop()
	if buf.Empty() {
		a.log.Info().Msg("No audio recorded")
		a.status.SetIdle()
		return nil
	}

	a.status.SetProcessing()

	text, err := a.transcribe(buf)
	if err != nil {
		a.status.SetError()
		return fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	text = a.applyFilters(text)
	if strings.TrimSpace(text) == "" {
		a.log.Info().Msg("No text to inject")
		a.status.SetIdle()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), injectTimeout)
	defer cancel()

	if err := a.inj.PasteOrType(ctx, text); err != nil {
		a.metrics.InjectFailed()
		a.status.SetError()
		return fmt.Errorf("%w: %w", ErrInjectFailed, err)
	}

	a.log.Info().Str("text", text).Msg("Injected")
	a.status.SetIdle()
	return nil
}

func (a *App) transcribe(buf recording.Buffer) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.stt.Transcribe(ctx, buf.Float32(), audio.SampleRate, a.cfg.Whisper.Language)
	a.metrics.ObserveTranscription(time.Since(start), err)
	if err != nil {
		return "", err
	}

	a.log.Info().
		Str("language", res.Language).
		Str("text", res.Text).
		Dur("audio", buf.Duration()).
		Dur("elapsed", time.Since(start)).
		Msg("Transcribed")
	return res.Text, nil
}

func (a *App) applyFilters(text string) string {
	text = strings.TrimSpace(text)
	if text != "" && a.cfg.AppendSpace {
		text += " "
	}
	return text
}

// Shutdown discards any recording in progress
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rec.State() != recording.Idle {
		a.log.Info().Msg("Discarding active recording")
	}
	a.rec.Abort()
	a.status.SetIdle()
	return nil
}

// Tray actions

func (a *App) SetMode(mode string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if mode != config.ModePushToTalk && mode != config.ModeToggle {
		return fmt.Errorf("unknown mode %q", mode)
	}
	a.cfg.Mode = mode
	return a.cfg.Save()
}

func (a *App) Mode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.Mode
}

// IsRecording reports whether audio is being captured. It does not wait
// for a transcription in progress.
func (a *App) IsRecording() bool {
	return a.rec.State() != recording.Idle
}

type nopStatus struct{}

func (nopStatus) SetIdle()       {}
func (nopStatus) SetRecording()  {}
func (nopStatus) SetProcessing() {}
func (nopStatus) SetError()      {}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/petems/whisper-ptt/internal/audio"
	"github.com/petems/whisper-ptt/internal/config"
	"github.com/petems/whisper-ptt/internal/recording"
	"github.com/petems/whisper-ptt/internal/whisper"
	"github.com/rs/zerolog"
)

// Mock implementations for testing

// mockSource serves chunks, then empty reads until the stream is closed
type mockSource struct {
	chunks  [][]int16
	openErr error

	mu     sync.Mutex
	opens  int
	closes int
	served int
}

func (m *mockSource) Open() (audio.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &mockStream{src: m}, nil
}

func (m *mockSource) servedChunks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.served
}

type mockStream struct {
	src *mockSource
	pos int
}

func (s *mockStream) ReadChunk() ([]int16, error) {
	if s.pos < len(s.src.chunks) {
		c := s.src.chunks[s.pos]
		s.pos++
		s.src.mu.Lock()
		s.src.served++
		s.src.mu.Unlock()
		return c, nil
	}
	time.Sleep(time.Millisecond)
	return nil, nil
}

func (s *mockStream) Close() error {
	s.src.mu.Lock()
	defer s.src.mu.Unlock()
	s.src.closes++
	return nil
}

type mockTranscriber struct {
	text string
	err  error

	calls      int
	samples    int
	sampleRate int
	language   string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (whisper.Result, error) {
	m.calls++
	m.samples = len(samples)
	m.sampleRate = sampleRate
	m.language = language
	if m.err != nil {
		return whisper.Result{}, m.err
	}
	return whisper.Result{Text: m.text, Language: "en"}, nil
}

type mockInjector struct {
	err   error
	texts []string
}

func (m *mockInjector) Paste(ctx context.Context, text string) error {
	return nil
}

func (m *mockInjector) Type(ctx context.Context, text string) error {
	return nil
}

func (m *mockInjector) PasteOrType(ctx context.Context, text string) error {
	m.texts = append(m.texts, text)
	return m.err
}

type mockStatus struct {
	states []string
}

func (m *mockStatus) SetIdle()       { m.states = append(m.states, "idle") }
func (m *mockStatus) SetRecording()  { m.states = append(m.states, "recording") }
func (m *mockStatus) SetProcessing() { m.states = append(m.states, "processing") }
func (m *mockStatus) SetError()      { m.states = append(m.states, "error") }

type fixture struct {
	app    *App
	source *mockSource
	stt    *mockTranscriber
	inj    *mockInjector
	status *mockStatus
}

func newFixture(mode string, chunks int) *fixture {
	src := &mockSource{}
	for i := 0; i < chunks; i++ {
		src.chunks = append(src.chunks, make([]int16, audio.ChunkSize))
	}

	cfg := config.Default()
	cfg.Mode = mode

	f := &fixture{
		source: src,
		stt:    &mockTranscriber{text: "ok"},
		inj:    &mockInjector{},
		status: &mockStatus{},
	}
	f.app = New(Config{
		Recorder:      recording.New(src, recording.Options{Logger: zerolog.Nop(), ReadErrorBackoff: time.Millisecond}),
		Transcriber:   f.stt,
		Injector:      f.inj,
		Config:        cfg,
		Logger:        zerolog.Nop(),
		StatusUpdater: f.status,
	})
	return f
}

func (f *fixture) waitForChunks(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < 200; i++ { // Poll for 2 seconds
		if f.source.servedChunks() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d chunks", n)
}

func TestPushToTalkEndToEnd(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 3)

	f.app.OnHotkey(true)
	if !f.app.IsRecording() {
		t.Fatal("App should be recording after key press")
	}
	f.waitForChunks(t, 3)

	f.app.OnHotkey(false)
	if f.app.IsRecording() {
		t.Fatal("App should stop recording on key release")
	}

	if f.stt.calls != 1 {
		t.Fatalf("expected one transcription, got %d", f.stt.calls)
	}
	if f.stt.samples != 3072 {
		t.Errorf("expected 3072 samples, got %d", f.stt.samples)
	}
	if f.stt.sampleRate != audio.SampleRate {
		t.Errorf("expected sample rate %d, got %d", audio.SampleRate, f.stt.sampleRate)
	}
	if f.stt.language != "en" {
		t.Errorf("expected language hint en, got %q", f.stt.language)
	}

	if len(f.inj.texts) != 1 || f.inj.texts[0] != "ok" {
		t.Fatalf("expected \"ok\" injected exactly once, got %q", f.inj.texts)
	}

	expected := []string{"recording", "processing", "idle"}
	if len(f.status.states) != len(expected) {
		t.Fatalf("expected states %v, got %v", expected, f.status.states)
	}
	for i := range expected {
		if f.status.states[i] != expected[i] {
			t.Fatalf("expected states %v, got %v", expected, f.status.states)
		}
	}
}

func TestReleaseWithoutPressIsNoop(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 1)

	f.app.OnHotkey(false)
	f.app.OnHotkey(false)

	if f.source.opens != 0 {
		t.Errorf("expected no stream opened, got %d", f.source.opens)
	}
	if f.stt.calls != 0 || len(f.inj.texts) != 0 {
		t.Error("release without press should not transcribe or inject")
	}
}

func TestDuplicatePressStartsOnce(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 1)

	f.app.OnHotkey(true)
	f.app.OnHotkey(true)
	f.waitForChunks(t, 1)
	f.app.OnHotkey(false)

	f.source.mu.Lock()
	defer f.source.mu.Unlock()
	if f.source.opens != 1 || f.source.closes != 1 {
		t.Fatalf("expected one open and one close, got %d/%d", f.source.opens, f.source.closes)
	}
	if len(f.inj.texts) != 1 {
		t.Fatalf("expected one injection, got %d", len(f.inj.texts))
	}
}

func TestEmptyRecordingSkipsTranscription(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 0)

	if err := f.app.Press(); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	if err := f.app.Release(); err != nil {
		t.Fatalf("empty recording should not be an error, got %v", err)
	}

	if f.stt.calls != 0 {
		t.Errorf("expected no transcription, got %d", f.stt.calls)
	}
	if len(f.inj.texts) != 0 {
		t.Errorf("expected no injection, got %q", f.inj.texts)
	}
	if last := f.status.states[len(f.status.states)-1]; last != "idle" {
		t.Errorf("expected idle status, got %s", last)
	}
}

func TestTranscriptionFailure(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 2)
	f.stt.err = errors.New("model exploded")

	if err := f.app.Press(); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	f.waitForChunks(t, 2)

	err := f.app.Release()
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
	if f.app.IsRecording() {
		t.Error("session should be idle after a failed transcription")
	}
	if len(f.inj.texts) != 0 {
		t.Error("nothing should be injected after a failed transcription")
	}
	if last := f.status.states[len(f.status.states)-1]; last != "error" {
		t.Errorf("expected error status, got %s", last)
	}

	// The next cycle works normally
	f.stt.err = nil
	f.source.chunks = nil
	if err := f.app.Press(); err != nil {
		t.Fatalf("press after failure failed: %v", err)
	}
	if err := f.app.Release(); err != nil {
		t.Fatalf("release after failure failed: %v", err)
	}
}

func TestInjectFailure(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 1)
	f.inj.err = errors.New("no focus")

	f.app.Press()
	f.waitForChunks(t, 1)

	if err := f.app.Release(); !errors.Is(err, ErrInjectFailed) {
		t.Fatalf("expected ErrInjectFailed, got %v", err)
	}
}

func TestDeviceUnavailable(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 1)
	f.source.openErr = errors.New("no microphone")

	err := f.app.Press()
	if !errors.Is(err, recording.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if f.app.IsRecording() {
		t.Fatal("App should not be recording when the device is unavailable")
	}
	if err := f.app.Release(); err != nil {
		t.Fatalf("release after failed press should be a no-op, got %v", err)
	}
	if f.stt.calls != 0 {
		t.Error("nothing should be transcribed")
	}
}

func TestToggleModeKeyPress(t *testing.T) {
	f := newFixture(config.ModeToggle, 1)

	// First key press - should start recording
	f.app.OnHotkey(true)
	if !f.app.IsRecording() {
		t.Fatal("App should be recording after first key press")
	}

	// Key releases are ignored in Toggle mode
	f.app.OnHotkey(false)
	f.app.OnHotkey(false)
	if !f.app.IsRecording() {
		t.Fatal("App should still be recording after key release in Toggle mode")
	}
	f.waitForChunks(t, 1)

	// Second key press - should stop and inject
	f.app.OnHotkey(true)
	if f.app.IsRecording() {
		t.Fatal("App should have stopped recording after second key press")
	}
	if len(f.inj.texts) != 1 {
		t.Fatalf("expected one injection, got %d", len(f.inj.texts))
	}
}

func TestShutdownDiscardsRecording(t *testing.T) {
	f := newFixture(config.ModePushToTalk, 2)

	f.app.Press()
	f.waitForChunks(t, 2)

	if err := f.app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if f.app.IsRecording() {
		t.Fatal("App should not be recording after shutdown")
	}
	if f.stt.calls != 0 {
		t.Error("shutdown should not transcribe")
	}

	f.source.mu.Lock()
	defer f.source.mu.Unlock()
	if f.source.closes != 1 {
		t.Fatalf("expected stream closed once, got %d", f.source.closes)
	}
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		appendSpace bool
		expected    string
	}{
		{"trims", "  hello world \n", false, "hello world"},
		{"untouched", "Already fine.", false, "Already fine."},
		{"append space", "hi", true, "hi "},
		{"blank", "   ", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &App{cfg: &config.Config{AppendSpace: tt.appendSpace}}
			if got := a.applyFilters(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

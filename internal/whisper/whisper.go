package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"

	"github.com/petems/whisper-ptt/internal/config"
)

// SampleRate is the only input rate whisper.cpp accepts
const SampleRate = 16000

// Transcriber interface for speech-to-text
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (Result, error)
}

// Result is the text recognized in one recording
type Result struct {
	Text     string
	Language string
}

// Engine runs whisper.cpp on complete recordings. Calls are serialized;
// the model is shared but each call gets its own context.
type Engine struct {
	log     zerolog.Logger
	threads int

	mu        sync.Mutex
	model     whisper.Model
	modelPath string
}

// New loads the configured model, downloading it first if needed
func New(ctx context.Context, cfg config.WhisperConfig, log zerolog.Logger) (*Engine, error) {
	e := &Engine{log: log, threads: cfg.Threads}
	if err := e.LoadModel(ctx, cfg.Model); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadModel replaces the loaded model
func (e *Engine) LoadModel(ctx context.Context, model string) error {
	modelPath := ModelPath(model)

	if _, err := os.Stat(modelPath); errors.Is(err, os.ErrNotExist) {
		if err := downloadModel(ctx, e.log, model, modelPath); err != nil {
			return fmt.Errorf("failed to download model: %w", err)
		}
	}

	newModel, err := whisper.New(modelPath)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		e.model.Close()
	}
	e.model = newModel
	e.modelPath = modelPath

	e.log.Info().Str("model", model).Bool("multilingual", newModel.IsMultilingual()).Msg("Model loaded")
	return nil
}

// Transcribe decodes samples and returns the recognized text. language is a
// hint; "auto" or "" enables detection.
func (e *Engine) Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (Result, error) {
	if sampleRate != SampleRate {
		return Result{}, fmt.Errorf("unsupported sample rate %d, want %d", sampleRate, SampleRate)
	}
	if len(samples) == 0 {
		return Result{}, errors.New("no samples to transcribe")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model == nil {
		return Result{}, errors.New("model not loaded")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create context: %w", err)
	}

	if e.threads > 0 {
		wctx.SetThreads(uint(e.threads))
	}
	if language == "" {
		language = "auto"
	}
	if err := wctx.SetLanguage(language); err != nil {
		return Result{}, fmt.Errorf("failed to set language %q: %w", language, err)
	}
	wctx.SetTranslate(false)

	if err := wctx.Process(samples, nil, nil); err != nil {
		return Result{}, fmt.Errorf("whisper process failed: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to read segment: %w", err)
		}
		parts = append(parts, strings.TrimSpace(segment.Text))
	}

	return Result{
		Text:     strings.TrimSpace(strings.Join(parts, " ")),
		Language: wctx.DetectedLanguage(),
	}, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		err := e.model.Close()
		e.model = nil
		return err
	}
	return nil
}

// ModelPath returns where model is stored on disk
func ModelPath(model string) string {
	return filepath.Join(config.ModelsPath(), model+".bin")
}

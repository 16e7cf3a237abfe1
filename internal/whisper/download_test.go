package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func withModelServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := modelBaseURL
	modelBaseURL = srv.URL
	t.Cleanup(func() { modelBaseURL = old })
}

func TestDownloadModel(t *testing.T) {
	var requested string
	withModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write([]byte("ggml-model-bytes"))
	})

	dest := filepath.Join(t.TempDir(), "models", "base.en.bin")
	if err := downloadModel(context.Background(), zerolog.Nop(), "base.en", dest); err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if requested != "/ggml-base.en.bin" {
		t.Errorf("unexpected request path %s", requested)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("model file missing: %v", err)
	}
	if string(data) != "ggml-model-bytes" {
		t.Errorf("unexpected model contents %q", data)
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be removed")
	}
}

func TestDownloadModelHTTPError(t *testing.T) {
	withModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	dest := filepath.Join(t.TempDir(), "small.en.bin")
	err := downloadModel(context.Background(), zerolog.Nop(), "small.en", dest)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("expected HTTP 404 error, got %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no model file should be left behind")
	}
}

func TestDownloadModelUnknown(t *testing.T) {
	err := downloadModel(context.Background(), zerolog.Nop(), "enormous", filepath.Join(t.TempDir(), "x.bin"))
	if err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Fatalf("expected unknown model error, got %v", err)
	}
}

func TestTranscribeRejectsWrongSampleRate(t *testing.T) {
	e := &Engine{log: zerolog.Nop()}
	if _, err := e.Transcribe(context.Background(), []float32{0}, 44100, "en"); err == nil {
		t.Fatal("expected sample rate error")
	}
}

func TestTranscribeWithoutModel(t *testing.T) {
	e := &Engine{log: zerolog.Nop()}
	if _, err := e.Transcribe(context.Background(), []float32{0}, SampleRate, "en"); err == nil {
		t.Fatal("expected error without a loaded model")
	}
}

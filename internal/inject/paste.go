package inject

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/petems/whisper-ptt/internal/config"
)

const (
	clipboardSettle = 50 * time.Millisecond
	pasteSettle     = 100 * time.Millisecond
	keystrokeDelay  = 10 * time.Millisecond
)

type pasteInjector struct {
	cfg   config.InjectConfig
	paste func(ctx context.Context, text string) error
	typ   func(ctx context.Context, text string) error
}

// New creates a new text injector
func New(cfg config.InjectConfig) Injector {
	return &pasteInjector{
		cfg:   cfg,
		paste: platformPaste,
		typ:   platformType,
	}
}

// Paste injects text using clipboard + paste shortcut
// Implementation is platform-specific (see paste_darwin.go, paste_other.go)
func (p *pasteInjector) Paste(ctx context.Context, text string) error {
	return p.paste(ctx, text)
}

// Type injects text using keyboard simulation
func (p *pasteInjector) Type(ctx context.Context, text string) error {
	return p.typ(ctx, text)
}

// PasteOrType tries paste first when preferred, falls back to type
func (p *pasteInjector) PasteOrType(ctx context.Context, text string) error {
	if !p.cfg.PreferPaste {
		return p.Type(ctx, text)
	}

	pasteErr := p.Paste(ctx, text)
	if pasteErr == nil {
		return nil
	}
	if err := p.Type(ctx, text); err != nil {
		return fmt.Errorf("paste failed: %w; type failed: %w", pasteErr, err)
	}
	return nil
}

// clipboardPaste puts text on the clipboard, runs sendShortcut, then
// restores the previous clipboard unless the user changed it meanwhile.
func clipboardPaste(ctx context.Context, text string, sendShortcut func() error) error {
	oldClip, err := clipboard.ReadAll()
	if err != nil {
		oldClip = "" // If clipboard read fails, proceed anyway
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	// Small delay to ensure clipboard is set
	if err := sleep(ctx, clipboardSettle); err != nil {
		return err
	}

	if err := sendShortcut(); err != nil {
		return fmt.Errorf("failed to send paste shortcut: %w", err)
	}

	// Wait a bit for paste to complete
	if err := sleep(ctx, pasteSettle); err != nil {
		return err
	}

	if currentClip, _ := clipboard.ReadAll(); currentClip == text {
		clipboard.WriteAll(oldClip)
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

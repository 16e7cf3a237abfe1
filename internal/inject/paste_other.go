//go:build !darwin

package inject

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

var (
	keyboardOnce sync.Once
	keyboard     keybd_event.KeyBonding
	keyboardErr  error
)

// virtualKeyboard creates the synthetic keyboard once. On Linux the uinput
// device needs a moment before the desktop accepts its events.
func virtualKeyboard() (keybd_event.KeyBonding, error) {
	keyboardOnce.Do(func() {
		keyboard, keyboardErr = keybd_event.NewKeyBonding()
		if keyboardErr == nil && runtime.GOOS == "linux" {
			time.Sleep(2 * time.Second)
		}
	})
	return keyboard, keyboardErr
}

// sendPasteShortcut sends Ctrl+V through a virtual keyboard
func sendPasteShortcut() error {
	kb, err := virtualKeyboard()
	if err != nil {
		return fmt.Errorf("failed to create virtual keyboard: %w", err)
	}
	kb.Clear()
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	return kb.Launching()
}

// platformPaste implements clipboard-paste strategy for Linux and Windows
func platformPaste(ctx context.Context, text string) error {
	return clipboardPaste(ctx, text, sendPasteShortcut)
}

// platformType has no layout-independent way to type arbitrary text here
// TODO: Implement using XTest (X11) and SendInput (Windows)
func platformType(ctx context.Context, text string) error {
	return ErrTypeUnsupported
}

package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/petems/whisper-ptt/internal/config"
	"github.com/rs/zerolog"
)

// Controller is the part of the app the menu drives
type Controller interface {
	Mode() string
	SetMode(mode string) error
}

// UI shows dictation status in the system tray. It implements
// app.StatusUpdater.
type UI struct {
	version string
	hotkey  string
	log     zerolog.Logger
	onQuit  func()

	mu     sync.Mutex
	ctrl   Controller
	ready  bool
	status string

	mMode *systray.MenuItem
	mQuit *systray.MenuItem
}

func New(version, hotkey string, log zerolog.Logger, onQuit func()) *UI {
	return &UI{
		version: version,
		hotkey:  hotkey,
		log:     log,
		onQuit:  onQuit,
		status:  "idle",
	}
}

// SetController sets the app reference (for circular dependency resolution)
func (u *UI) SetController(ctrl Controller) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ctrl = ctrl
}

// Status update methods for the app to call
func (u *UI) SetIdle() {
	u.updateStatus("idle")
}

func (u *UI) SetRecording() {
	u.updateStatus("recording")
}

func (u *UI) SetProcessing() {
	u.updateStatus("processing")
}

func (u *UI) SetError() {
	u.updateStatus("error")
}

// Run blocks on the tray event loop until Quit is chosen or ctx is done.
// It MUST be called from the main goroutine.
func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	u.mu.Lock()
	u.ready = true
	status := u.status
	ctrl := u.ctrl
	u.mu.Unlock()

	systray.SetTitle(titleForStatus(status))
	systray.SetTooltip(fmt.Sprintf("Hold %s to dictate", u.hotkey))

	mode := config.ModePushToTalk
	if ctrl != nil {
		mode = ctrl.Mode()
	}

	mAbout := systray.AddMenuItem(fmt.Sprintf("whisper-ptt %s", u.version), "")
	mAbout.Disable()
	systray.AddSeparator()
	u.mMode = systray.AddMenuItem(modeTitle(mode), "Switch between push-to-talk and toggle")
	systray.AddSeparator()
	u.mQuit = systray.AddMenuItem("Quit", "Exit application")

	go u.handleEvents()
}

func (u *UI) handleEvents() {
	for {
		select {
		case <-u.mMode.ClickedCh:
			u.toggleMode()
		case <-u.mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) toggleMode() {
	u.mu.Lock()
	ctrl := u.ctrl
	u.mu.Unlock()
	if ctrl == nil {
		return
	}

	oldMode := ctrl.Mode()
	newMode := config.ModeToggle
	if oldMode == config.ModeToggle {
		newMode = config.ModePushToTalk
	}

	if err := ctrl.SetMode(newMode); err != nil {
		u.log.Error().Err(err).Msg("Failed to change mode")
		return
	}
	u.mMode.SetTitle(modeTitle(newMode))
	u.log.Info().Str("from", oldMode).Str("to", newMode).Msg("Changed mode")
}

func (u *UI) onExit() {
	if u.onQuit != nil {
		u.onQuit()
	}
}

func (u *UI) updateStatus(status string) {
	u.mu.Lock()
	u.status = status
	ready := u.ready
	u.mu.Unlock()

	if ready {
		systray.SetTitle(titleForStatus(status))
	}
}

func modeTitle(mode string) string {
	if mode == config.ModeToggle {
		return "Mode: Toggle"
	}
	return "Mode: Push-to-Talk"
}

// titleForStatus sets the tray title with microphone emoji and status indicator
func titleForStatus(status string) string {
	return fmt.Sprintf("🎤 %s", emojiForStatus(status))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "recording":
		return "🔴" // Red - recording
	case "processing":
		return "🟡" // Yellow - processing transcription
	case "idle":
		return "🟢" // Green - ready/idle
	case "error":
		return "⚪️" // White - error
	default:
		return "🟢" // Green - default to ready
	}
}

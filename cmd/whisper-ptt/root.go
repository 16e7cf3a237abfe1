package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petems/whisper-ptt/internal/app"
	"github.com/petems/whisper-ptt/internal/audio"
	"github.com/petems/whisper-ptt/internal/config"
	"github.com/petems/whisper-ptt/internal/hotkey"
	"github.com/petems/whisper-ptt/internal/inject"
	"github.com/petems/whisper-ptt/internal/logging"
	"github.com/petems/whisper-ptt/internal/metrics"
	"github.com/petems/whisper-ptt/internal/permissions"
	"github.com/petems/whisper-ptt/internal/recording"
	"github.com/petems/whisper-ptt/internal/tray"
	"github.com/petems/whisper-ptt/internal/whisper"
)

type options struct {
	configPath  string
	hotkey      string
	model       string
	language    string
	mode        string
	device      string
	logLevel    string
	metricsAddr string
	threads     int
	noTray      bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{})
}

func newRootCmdWith(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whisper-ptt",
		Short: "Push-to-talk dictation with a local Whisper model",
		Long: `Records your voice while the hotkey is held, transcribes it with a local
Whisper model, then types the text into whatever window has focus.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&opts.configPath, "config", "", "Path to the config file (default: "+config.Path()+")")
	persistent.StringVar(&opts.device, "device", "", "Input device name (default: system default input)")

	flags := cmd.Flags()
	flags.StringVarP(&opts.hotkey, "hotkey", "k", "", `The hotkey to hold while recording (default "ScrollLock")`)
	flags.StringVarP(&opts.model, "model", "m", "", `The whisper model to use (default "base.en")`)
	flags.IntVarP(&opts.threads, "threads", "t", 0, "Number of threads used for inference (0 = engine default)")
	flags.StringVarP(&opts.language, "language", "l", "", `Language hint, or "auto" to detect (default "en")`)
	flags.StringVar(&opts.mode, "mode", "", "PushToTalk or Toggle")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.BoolVar(&opts.noTray, "no-tray", false, "Run without the system tray indicator")

	cmd.AddCommand(newDevicesCmd(opts), newVersionCmd())
	return cmd
}

// loadConfig reads the config file and applies any flags set on cmd
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("hotkey") {
		cfg.Hotkey = opts.hotkey
		cfg.HotkeyDarwin = opts.hotkey
	}
	if changed("model") {
		cfg.Whisper.Model = opts.model
	}
	if changed("threads") {
		cfg.Whisper.Threads = opts.threads
	}
	if changed("language") {
		cfg.Whisper.Language = opts.language
	}
	if changed("mode") {
		cfg.Mode = opts.mode
	}
	if changed("device") {
		cfg.Audio.DeviceID = opts.device
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if changed("no-tray") {
		cfg.Tray = !opts.noTray
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := hotkey.ParseAccelerator(cfg.PlatformHotkey()); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	log := logging.NewWithLevel(cfg.LogLevel)

	// macOS requires explicit microphone + accessibility approval before capture or hotkeys work
	if err := permissions.EnsurePermissions(); err != nil {
		return fmt.Errorf("required permissions not granted: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	capture, err := audio.New(cfg.Audio)
	if err != nil {
		return err
	}
	defer capture.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, log); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	log.Info().Str("model", cfg.Whisper.Model).Msg("Loading model")
	engine, err := whisper.New(ctx, cfg.Whisper, log)
	if err != nil {
		return fmt.Errorf("failed to initialize whisper: %w", err)
	}
	defer engine.Close()

	hkManager, err := hotkey.New()
	if err != nil {
		return fmt.Errorf("failed to initialize hotkeys: %w", err)
	}
	defer hkManager.Close()

	var (
		ui     *tray.UI
		status app.StatusUpdater
	)
	if cfg.Tray {
		ui = tray.New(Version, cfg.PlatformHotkey(), log, stop)
		status = ui
	}

	application := app.New(app.Config{
		Recorder: recording.New(capture, recording.Options{
			Logger:   log,
			Observer: m,
		}),
		Transcriber:   engine,
		Injector:      inject.New(cfg.Inject),
		Config:        cfg,
		Logger:        log,
		Metrics:       m,
		StatusUpdater: status,
	})

	if err := hkManager.Register(cfg.PlatformHotkey(), application.OnHotkey); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}

	log.Info().
		Str("hotkey", cfg.PlatformHotkey()).
		Str("mode", cfg.Mode).
		Msg("Ready! Hold the hotkey to record")

	if ui != nil {
		ui.SetController(application)
		// Tray UI - MUST run on main thread
		if err := ui.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Tray error")
		}
	} else {
		<-ctx.Done()
	}

	log.Info().Msg("Shutting down...")
	return application.Shutdown(context.Background())
}

func newDevicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			capture, err := audio.New(config.AudioConfig{DeviceID: opts.device})
			if err != nil {
				return err
			}
			defer capture.Close()

			devices, err := capture.ListDevices()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, d.Name)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "whisper-ptt %s (%s)\n", Version, Commit)
		},
	}
}

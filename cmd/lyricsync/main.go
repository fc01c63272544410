package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/deps"
	"github.com/leonardotrapani/lyricsync/internal/logging"
	"github.com/leonardotrapani/lyricsync/internal/models/whisper"
	"github.com/leonardotrapani/lyricsync/internal/provider"
	"github.com/leonardotrapani/lyricsync/internal/server"
	"github.com/leonardotrapani/lyricsync/internal/tui"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lyricsync",
	Short: "Turn songs into time-synced LRC lyrics",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lyricsync/config.toml)")

	rootCmd.AddCommand(
		serveCmd(),
		transcribeCmd(),
		checkCmd(),
		configureCmd(),
		modelCmd(),
		versionCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(configPath)
			if err != nil {
				return err
			}
			manager, err := config.NewManager(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cfg := manager.GetConfig()
			closer, err := logging.Setup(cfg.Logging)
			if err != nil {
				return err
			}
			defer closer.Close()

			if cfg.Server.Debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := manager.StartWatching(ctx); err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
			defer manager.Stop()

			pidPath, err := server.DefaultPidPath()
			if err != nil {
				return err
			}
			return server.New(manager, server.WithPidFile(pidPath)).Run(ctx)
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check external tools and models the configuration needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			local := provider.BaseProviderName(cfg.Transcription.Provider) == provider.ProviderWhisperCpp
			statuses := deps.CheckAll(deps.Options{
				FFmpegBinary:    cfg.Audio.FFmpegPath,
				IsolationTool:   cfg.Isolation.Backend,
				IsolationBinary: cfg.Isolation.Binary,
				NeedsWhisperCli: local,
			})
			fmt.Print(tui.RenderDeps(statuses))

			missing := deps.MissingRequired(statuses)
			if local {
				modelPath := cfg.Transcription.ModelPath
				if modelPath == "" {
					modelPath = whisper.GetModelPath(cfg.Transcription.Model)
				}
				if info, err := os.Stat(modelPath); err != nil || info.Size() == 0 {
					fmt.Println(tui.StyleError.Render(fmt.Sprintf("whisper model %s not found at %s (run lyricsync model download %s)", cfg.Transcription.Model, modelPath, cfg.Transcription.Model)))
					missing = append(missing, "model "+cfg.Transcription.Model)
				} else {
					fmt.Println(tui.StyleSuccess.Render(fmt.Sprintf("whisper model %s installed", cfg.Transcription.Model)))
				}
			}

			if len(missing) > 0 {
				cmd.SilenceUsage = true
				return fmt.Errorf("missing: %v", missing)
			}
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration editor for lyricsync.
Covers the transcription provider and API keys, segmentation,
vocal isolation, LLM cleanup, keywords and the HTTP server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	path, err := config.ResolvePath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration editor error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := config.Save(path, result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Printf("Config file location: %s\n", path)
	fmt.Println("A running lyricsync serve picks the change up on the next request.")
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func loadConfig() (*config.Config, error) {
	path, err := config.ResolvePath(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/pipeline"
	"github.com/leonardotrapani/lyricsync/internal/tui"
)

type transcribeFlags struct {
	output  string
	window  int
	policy  string
	retries int
	timeout time.Duration
}

func transcribeCmd() *cobra.Command {
	var flags transcribeFlags

	cmd := &cobra.Command{
		Use:   "transcribe <song>",
		Short: "Produce an LRC file for a local song without the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyTranscribeFlags(cfg, cmd, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			if flags.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, flags.timeout)
				defer cancel()
			}

			cmd.SilenceUsage = true
			return runTranscribe(ctx, cfg, args[0], flags.output)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output .lrc path (default: next to the song)")
	cmd.Flags().IntVar(&flags.window, "window", 0, "segment window in seconds")
	cmd.Flags().StringVar(&flags.policy, "policy", "", "failed segment policy: tolerant, fail-fast")
	cmd.Flags().IntVar(&flags.retries, "retries", 0, "extra attempts per failed segment")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "abort the whole run after this long")

	return cmd
}

// applyTranscribeFlags overrides cfg with the flags the user actually set
func applyTranscribeFlags(cfg *config.Config, cmd *cobra.Command, flags transcribeFlags) {
	if cmd.Flags().Changed("window") {
		cfg.Transcription.Window = flags.window
	}
	if cmd.Flags().Changed("policy") {
		cfg.Transcription.Policy = flags.policy
	}
	if cmd.Flags().Changed("retries") {
		cfg.Transcription.Retries = flags.retries
	}
}

func defaultOutput(song string) string {
	return strings.TrimSuffix(song, filepath.Ext(song)) + ".lrc"
}

func runTranscribe(ctx context.Context, cfg *config.Config, song, output string) error {
	p, err := pipeline.FromConfig(cfg)
	if err != nil {
		return err
	}
	if output == "" {
		output = defaultOutput(song)
	}

	report, err := p.Run(ctx, pipeline.Request{Source: song, Output: output})
	if report != nil && len(report.Failed) > 0 {
		fmt.Println(tui.StyleWarning.Render(fmt.Sprintf("%d of %d segments could not be transcribed: %v", len(report.Failed), report.Segments, report.Failed)))
	}
	if err != nil {
		if report != nil && report.OutputPath != "" {
			fmt.Println(tui.StyleWarning.Render("partial lyrics written to " + report.OutputPath))
		}
		return fmt.Errorf("%s: %w", pipeline.KindName(err), err)
	}

	fmt.Println(tui.StyleSuccess.Render(fmt.Sprintf("%d lines from %.0fs of audio in %s", report.Lines, report.Duration, report.Elapsed.Round(time.Millisecond))))
	fmt.Println(report.OutputPath)
	return nil
}

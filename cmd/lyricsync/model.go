package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/lyricsync/internal/models/whisper"
	"github.com/leonardotrapani/lyricsync/internal/tui"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage local whisper models",
	}

	cmd.AddCommand(modelListCmd())
	cmd.AddCommand(modelDownloadCmd())
	cmd.AddCommand(modelRemoveCmd())

	return cmd
}

func modelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List downloadable whisper models",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := whisper.DefaultStore()
			if err != nil {
				return err
			}
			fmt.Print(tui.RenderModels(store))
			return nil
		},
	}
}

func modelDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <model-name>",
		Short: "Download a whisper model for the whisper-cpp provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := whisper.DefaultStore()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runModelDownload(ctx, store, args[0])
		},
	}
}

func runModelDownload(ctx context.Context, store *whisper.Store, modelName string) error {
	info := whisper.GetModel(modelName)
	if info == nil {
		return fmt.Errorf("unknown model: %s", modelName)
	}

	if store.IsInstalled(modelName) {
		fmt.Printf("model '%s' is already installed at %s\n", modelName, store.Path(modelName))
		return nil
	}

	fmt.Printf("downloading %s (%s)...\n", modelName, info.Size)

	var lastPercent int
	err := store.Download(ctx, modelName, func(downloaded, total int64) {
		if total > 0 {
			percent := int(downloaded * 100 / total)
			if percent >= lastPercent+10 {
				fmt.Printf("%d%% ", percent)
				lastPercent = percent
			}
		}
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Printf("\ndownload complete: %s\n", store.Path(modelName))
	return nil
}

func modelRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model-name>",
		Short: "Remove a downloaded whisper model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := whisper.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return fmt.Errorf("failed to remove model: %w", err)
			}
			fmt.Printf("model '%s' removed successfully\n", args[0])
			return nil
		},
	}
}

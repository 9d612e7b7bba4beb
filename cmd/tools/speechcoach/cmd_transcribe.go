package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newTranscribeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a recording (wav, mp3, ogg or raw pcm)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading audio: %w", err)
			}

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			services, _, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}

			result := services.Speech.Transcribe(ctx, "cli", audio)
			if !result.OK() {
				return &CaptureFailureError{Capture: result.Failure}
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}
}

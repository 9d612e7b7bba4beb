package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/speak-coach/backend/internal/service/coach"
)

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "analyze [audio-file]",
		Short: "Get grammar and pronunciation feedback for a recording or a typed sentence",
		Long: `Analyze transcribes the recording and asks the tutor for an improved version,
an explanation of the mistakes and pronunciation tips.

Use --text to skip transcription and analyze a sentence directly.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if text != "" && len(args) > 0 {
				return errors.New("pass either an audio file or --text, not both")
			}
			if text == "" && len(args) != 1 {
				return errors.New("requires an audio file or --text")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var audio []byte
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading audio: %w", err)
				}
				audio = data
			}

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			services, cfg, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			session, err := newSession(ctx, services, cfg, opts)
			if err != nil {
				return err
			}

			var result coach.SpeechAnalysis
			if audio != nil {
				result, err = services.Coach.AnalyzeSpeech(ctx, session.ID, audio)
			} else {
				result, err = services.Coach.AnalyzeText(ctx, session.ID, text)
			}

			out := cmd.OutOrStdout()
			if result.Transcript.Failure != nil {
				return &CaptureFailureError{Capture: result.Transcript.Failure}
			}
			if result.Transcript.Text != "" {
				fmt.Fprintf(out, "You said: %s\n\n", result.Transcript.Text)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, strings.TrimSpace(result.Analysis))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Analyze this sentence instead of a recording")
	return cmd
}

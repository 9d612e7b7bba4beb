package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask the tutor an English question",
		Long: `Ask sends one question to the tutor and prints the conversation.
Each question is sent in order within the same session, so later
questions can refer to earlier answers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			for _, question := range args {
				if strings.TrimSpace(question) == "" {
					return errors.New("question must not be empty")
				}
				if _, err := services.Coach.Ask(ctx, session.ID, question); err != nil {
					return err
				}
			}

			history, err := services.Coach.History(ctx, session.ID)
			if err != nil {
				return err
			}
			printTurns(cmd.OutOrStdout(), history)
			return nil
		},
	}
}

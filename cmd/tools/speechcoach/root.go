package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/speak-coach/backend/internal/app"
	"github.com/zhouzirui/speak-coach/backend/internal/config"
	"github.com/zhouzirui/speak-coach/backend/internal/logging"
	"github.com/zhouzirui/speak-coach/backend/internal/model/chat"
)

var version = "dev"

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	logLevel string
	tutorID  string
	timeout  time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "speechcoach",
		Short: "Speech coach - practise spoken English from the terminal",
		Long: `speechcoach runs the same transcription, feedback and chat pipeline as the
web server, reading credentials from .env, CONFIG_FILE and the environment.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.tutorID, "tutor", "", "Tutor id, defaults to DEFAULT_TUTOR")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall timeout for the command")

	cmd.AddCommand(newTranscribeCommand(opts))
	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newAskCommand(opts))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// loadApp 按服务端相同的顺序加载 .env、配置与服务
func loadApp(ctx context.Context, opts *globalOptions) (*app.App, *config.Config, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewWithOutput(opts.logLevel, os.Stderr)
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file, using system environment only")
	}

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return services, cfg, nil
}

// newSession 为一次命令创建会话
func newSession(ctx context.Context, services *app.App, cfg *config.Config, opts *globalOptions) (chat.Session, error) {
	tutorID := opts.tutorID
	if tutorID == "" {
		tutorID = cfg.Chat.DefaultTutor
	}
	return services.Sessions.CreateSession(ctx, tutorID)
}

func commandContext(cmd *cobra.Command, opts *globalOptions) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, opts.timeout)
}

func printTurns(w io.Writer, turns []chat.Turn) {
	for _, turn := range turns {
		fmt.Fprintf(w, "%s: %s\n", turn.Speaker, turn.Message)
	}
}

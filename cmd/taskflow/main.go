package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/taskflow/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "taskflow:", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "Collaborative kanban boards in the terminal",
		Long: `taskflow is a kanban board service and its terminal client.

Run "taskflow serve" to start the board service, then "taskflow register"
or "taskflow login" to sign in and "taskflow boards" to open the dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newBoardsCmd(),
		newBoardCmd(),
		newExportCmd(),
	)
	return root
}

// setupServerLogging configures the global zerolog logger for the service:
// JSON on stdout, or the console writer when the format is "text".
func setupServerLogging(cfg config.LogConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return log.Logger
}

// setupClientLogging sends logs to cfg.File because the terminal belongs to
// the UI. Without a file, logs are discarded.
func setupClientLogging(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.File == "" {
		log.Logger = zerolog.Nop()
		return log.Logger, io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = f
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: f, NoColor: true}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger, f, nil
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var debug bool
	rootCmd := &cobra.Command{
		Use:   "todosim",
		Short: "Simulated todo-list backend",
		Long: `todosim runs a simulated todo-list backend: an in-memory store with
injected latency and failure rates, persisted to a bbolt file, with every
successful mutation broadcast as a sequenced change message.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogger(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.AddCommand(runCmd(), dumpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	var slogHandler slog.Handler
	if debug {
		slogHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		slogHandler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	slog.SetDefault(slog.New(slogHandler))
	slog.Debug("debug mode enabled")
}

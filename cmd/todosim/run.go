package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/romshark/todosim/config"
	"github.com/romshark/todosim/domain"
	"github.com/romshark/todosim/pkg/broadcast"
	"github.com/romshark/todosim/storage"
	"github.com/romshark/todosim/workload"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the backend under random workload until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"path to YAML config file")
	return cmd
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()
	if cfg.WorkloadDuration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.WorkloadDuration)
		defer cancelTimeout()
	}

	blob, err := storage.OpenBolt(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := blob.Close(); err != nil {
			slog.Error("closing database", slog.Any("err", err))
		}
	}()

	b := broadcast.New[domain.Event]()
	sub := b.Subscribe(func(m domain.SequencedMessage) {
		data, err := domain.EncodeMessage(m)
		if err != nil {
			slog.Error("encoding message", slog.Any("err", err))
			return
		}
		slog.Info("change", slog.String("message", string(data)))
	})
	defer sub.Close()

	store, err := domain.New(ctx, blob, b,
		domain.WithFaultPolicy(domain.SuccessRate(cfg.SuccessRate)),
		domain.WithDelayPolicy(domain.UniformDelay(cfg.MaxDelay)),
	)
	if err != nil {
		return err
	}

	slog.Info("running workload",
		slog.String("db", cfg.DBPath),
		slog.Float64("successRate", cfg.SuccessRate),
		slog.Duration("maxDelay", cfg.MaxDelay),
		slog.Duration("interval", cfg.WorkloadInterval),
		slog.Uint64("seed", cfg.WorkloadSeed))

	workload.New(store, cfg.WorkloadSeed, cfg.WorkloadInterval).Run(ctx)
	slog.Info("workload stopped")
	return nil
}

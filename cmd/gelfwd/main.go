package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oicur0t/gelfwd/internal/config"
	"github.com/oicur0t/gelfwd/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "gelfwd",
		Short:         "Read logs from stdin, journalctl or a file and forward them to Graylog over GELF/UDP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "/etc/gelfwd/config.yaml", "Path to configuration file")
	return cmd
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	logger, err := initLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}
	defer logger.Sync()

	logger.Info("starting gelfwd",
		zap.String("source", string(cfg.Global.LogSource)),
		zap.String("target", cfg.Watched.GraylogAddr),
		zap.Stringer("compression", cfg.Watched.Compression))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	store := config.NewStore(cfg.Watched)
	watcher := config.NewWatcher(configPath, store, logger)
	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("config watcher stopped", zap.Error(err))
		}
	}()

	source, err := newSource(ctx, cfg.Global, logger)
	if err != nil {
		logger.Error("failed to open log source", zap.Error(err))
		return err
	}

	sender, err := pipeline.NewUDPSender(cfg.Global.SenderPort)
	if err != nil {
		logger.Error("failed to bind sender socket", zap.Error(err))
		return err
	}
	defer sender.Close()

	loop := pipeline.NewLoop(source, sender, store, logger)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("processing stopped", zap.Error(err))
		return err
	}

	logger.Info("gelfwd stopped")
	return nil
}

func newSource(ctx context.Context, global config.Global, logger *zap.Logger) (pipeline.LineSource, error) {
	switch global.LogSource {
	case config.SourceStdin:
		return pipeline.NewStdinSource(), nil
	case config.SourceJournal:
		return pipeline.NewJournalSource(ctx)
	case config.SourceFile:
		return pipeline.NewFileSource(ctx, global.LogFile, logger)
	default:
		return nil, fmt.Errorf("unknown log source %q", global.LogSource)
	}
}

// initLogger creates a configured zap logger
func initLogger(level string, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var loggerConfig zap.Config
	if format == "json" {
		loggerConfig = zap.NewProductionConfig()
	} else {
		loggerConfig = zap.NewDevelopmentConfig()
	}

	loggerConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	return loggerConfig.Build()
}

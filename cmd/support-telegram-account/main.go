// Package main is the entry point for the support-telegram-account gateway.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/PouryDev/support-telegram-account/internal/account"
	"github.com/PouryDev/support-telegram-account/internal/alert"
	"github.com/PouryDev/support-telegram-account/internal/config"
	"github.com/PouryDev/support-telegram-account/internal/gateway"
	"github.com/PouryDev/support-telegram-account/internal/heartbeat"
	"github.com/PouryDev/support-telegram-account/internal/telegram"
	"github.com/PouryDev/support-telegram-account/internal/tracing"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "support-telegram-account",
		Short:         "HTTP gateway for managing Telegram supergroups through a user account",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("support-telegram-account %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Secrets usually arrive through a .env file in development;
			// a missing file is fine.
			_ = godotenv.Load()

			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))

			return run(cfg, logger)
		},
	}
	cmd.Flags().StringP("config", "c", "config.yaml", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Println("Configuration OK")
			return nil
		},
	})
	return cmd
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, "support-telegram-account", cfg.Tracing.Endpoint)
	if err != nil {
		return err
	}

	sessions := telegram.NewSessionProvider(
		cfg.Telegram.Token,
		cfg.Telegram.APIURL,
		cfg.Telegram.Proxy,
		logger,
	)
	svc := account.NewService(sessions, cfg.Telegram.BotUsername, logger)
	alerts := alert.NewNotifier(
		cfg.Monitoring.BotToken,
		cfg.Monitoring.GroupID,
		cfg.Monitoring.Mentions,
		cfg.Monitoring.APIURL,
		logger,
	)

	gw := gateway.New(gateway.Config{
		Bind:            cfg.Server.Bind,
		APIKey:          cfg.Auth.APIKey,
		ReadTimeout:     cfg.Server.ReadTimeout.Std(),
		WriteTimeout:    cfg.Server.WriteTimeout.Std(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
	}, svc, alerts, logger)
	if err := gw.Start(); err != nil {
		return err
	}

	var reporter *heartbeat.Reporter
	if cfg.Heartbeat.Enabled {
		reporter = heartbeat.NewReporter(cfg.Heartbeat.Schedule, sessions, alerts, logger)
		if err := reporter.Start(); err != nil {
			return err
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received")

	if reporter != nil {
		reporter.Stop()
	}
	if err := gw.Stop(ctx); err != nil {
		logger.Error("gateway shutdown failed", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing shutdown failed", "error", err)
	}

	return nil
}

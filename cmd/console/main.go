// Command console is an interactive terminal screen for managing the users of a
// jsonplaceholder-compatible REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"user-crud-console/internal/adapter/console"
	"user-crud-console/internal/adapter/restclient"
	"user-crud-console/internal/config"
	"user-crud-console/internal/usecase/screen"
	"user-crud-console/internal/usecase/userstore"
	"user-crud-console/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	log, err := logger.NewWithConfig(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     logOutput(cfg.Logger, interactive),
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    "user-console",
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    os.Getenv("APP_ENV"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client := restclient.New(cfg.API.BaseURL, log,
		restclient.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))
	out := console.NewSyncWriter(os.Stdout)
	store := userstore.New(client, console.NewNotifier(out, log), log,
		userstore.WithDeletePolicy(deletePolicy(cfg.API.DeletePolicy)))
	ctrl := screen.New(store, nil, log)

	log.Info("console starting",
		zap.String("api", cfg.API.BaseURL),
		zap.String("delete_policy", cfg.API.DeletePolicy),
		zap.Bool("interactive", interactive),
	)

	repl := console.NewREPL(ctrl, os.Stdin, out, log,
		console.WithPrompt(interactive), console.WithBackground(interactive))
	if err := ctrl.Mount(ctx); err == nil {
		repl.Exec(ctx, "list")
	}
	if interactive {
		fmt.Fprintln(out, "Type 'help' for commands.")
	}

	return repl.Run(ctx)
}

// logOutput keeps log lines out of the screen: on a terminal, stdout and stderr
// output is redirected to the console log file.
func logOutput(cfg config.LoggerConfig, interactive bool) string {
	if interactive && (cfg.OutputPath == "stdout" || cfg.OutputPath == "stderr") {
		return cfg.ConsoleFilePath
	}
	return cfg.OutputPath
}

func deletePolicy(name string) userstore.DeletePolicy {
	if name == config.DeletePolicyRequireSuccess {
		return userstore.DeleteRequireSuccess
	}
	return userstore.DeleteUnconditional
}

func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

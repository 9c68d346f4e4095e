package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cloud-manager/core/config"
	"cloud-manager/core/logger"
	"cloud-manager/core/status"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configPath is the directory holding .env and cloud-manager.yaml.
var configPath string

// exitCodes maps the final status to the process exit code. Commands replace
// it with the configured mapping once configuration is loaded.
var exitCodes = config.ExitConfig{DiffsFound: 2, DiffsSynced: 0, Fatal: 1}

// runLogger is the configured logger, set once configuration has loaded.
var runLogger *zap.Logger

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cloud-manager",
	Short: "Declarative cloud configuration manager",
	Long: `Cloud Manager compares resource definitions kept in a local catalog with
the live state of a cloud account, reports the differences and optionally
creates or updates resources to match. Nothing is ever deleted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code derived from the
// final run status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		status.Global.Raise(status.Fatal)

		if l := errorLogger(); l != nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(exitCodes.Code(status.Global.Level()))
}

// errorLogger returns the configured logger, or a console logger when the
// command failed before configuration was loaded.
func errorLogger() *zap.Logger {
	if runLogger != nil {
		return runLogger
	}
	l, err := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if err != nil {
		return nil
	}
	return l
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding .env and cloud-manager.yaml")
}

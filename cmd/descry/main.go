package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fedmol/descry/telemetry"
)

// version is set through ldflags at build time.
var version = "dev"

// loggerFunc builds the process logger, optionally teeing it into a run
// log file. The returned close function flushes the file when one is
// used.
type loggerFunc func(logFile string) (*slog.Logger, func() error, error)

func main() {
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:           "descry",
		Short:         "descry computes secret-keyed structure fingerprints",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", telemetry.LogFormatJSON, "Log format (json, text)")

	loggerFn := func(logFile string) (*slog.Logger, func() error, error) {
		return telemetry.SetupLogger(logLevel, logFormat, logFile)
	}

	rootCmd.AddCommand(
		newCalculateCmd(loggerFn),
		newHashReferenceCmd(loggerFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/spf13/cobra"

	"github.com/fedmol/descry/config"
	"github.com/fedmol/descry/refhash"
	"github.com/fedmol/descry/storage"
)

type hashReferenceOptions struct {
	ConfigFile  string
	KeyFile     string
	OutputDir   string
	RefHashFile string
}

func newHashReferenceCmd(loggerFn loggerFunc) *cobra.Command {
	var opts hashReferenceOptions

	cmd := &cobra.Command{
		Use:   "hash-reference",
		Short: "Generate the reference set hash used to compare keys between parties",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHashReference(ctx, loggerFn, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config-file", "c", "", "Parameters file, json or yaml (required)")
	cmd.Flags().StringVarP(&opts.KeyFile, "key-file", "k", "", "Key file holding the shared secret (required)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory to write the generated hash file into")
	cmd.Flags().StringVar(&opts.RefHashFile, "ref-hash", "", "Reference hash file to verify against")
	cmd.MarkFlagRequired("config-file")
	cmd.MarkFlagRequired("key-file")

	return cmd
}

func runHashReference(ctx context.Context, loggerFn loggerFunc, opts hashReferenceOptions) error {
	logger, closeLog, err := loggerFn("")
	if err != nil {
		return err
	}
	defer closeLog()

	params, err := config.LoadParameters(opts.ConfigFile)
	if err != nil {
		logger.Error("unable to load parameters", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	secret, err := config.LoadSecret(opts.KeyFile)
	if err != nil {
		logger.Error("unable to load key file", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}

	mem := memory.NewGoAllocator()
	generatedHash, err := refhash.Generate(ctx, logger, mem, secret, params)
	if err != nil {
		logger.Error("unable to generate reference hash", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	logger.Info("generated reference hash", slog.String("referenceHash", generatedHash))

	if opts.RefHashFile != "" {
		if err := refhash.Verify(opts.RefHashFile, generatedHash); err != nil {
			logger.Error("reference hash check failed", slog.String("error", errs.ErrorWithStack(err)))
			return err
		}
		logger.Info("reference hash verified", slog.String("refHashFile", opts.RefHashFile))
	}

	if opts.OutputDir != "" {
		if storage.IsObjectLocation(opts.OutputDir) {
			return fmt.Errorf("object locations are not supported here, the calculate command writes the hash next to its run outputs")
		}
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return errs.NewStackError(err)
		}
		hashPath := storage.JoinLocation(opts.OutputDir, refhash.GeneratedHashFileName)
		if err := refhash.WriteGenerated(hashPath, generatedHash); err != nil {
			logger.Error("unable to write generated hash file", slog.String("error", errs.ErrorWithStack(err)))
			return err
		}
		logger.Info("wrote generated hash file", slog.String("path", hashPath))
	}

	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/spf13/cobra"

	"github.com/fedmol/descry/config"
	"github.com/fedmol/descry/descriptor"
	"github.com/fedmol/descry/refhash"
	"github.com/fedmol/descry/storage"
	"github.com/fedmol/descry/telemetry"
	"github.com/fedmol/descry/transform"
)

type calculateOptions struct {
	StructureFile  string
	ConfigFile     string
	KeyFile        string
	OutputDir      string
	RunName        string
	RefHashFile    string
	Format         string
	WorkerCount    int
	NonInteractive bool
	S3Endpoint     string
	S3Region       string
	S3PathStyle    bool
}

func newCalculateCmd(loggerFn loggerFunc) *cobra.Command {
	var opts calculateOptions

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate keyed fingerprints for a structure file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runCalculate(ctx, loggerFn, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.StructureFile, "structure-file", "s", "", "Structure file to read, csv, parquet or avro (required)")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config-file", "c", "", "Parameters file, json or yaml (required)")
	cmd.Flags().StringVarP(&opts.KeyFile, "key-file", "k", "", "Key file holding the shared secret (required)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory or s3://bucket/prefix location for run outputs (required)")
	cmd.Flags().StringVarP(&opts.RunName, "run-name", "r", "", "Name of the run, used as the output subdirectory (required)")
	cmd.Flags().IntVarP(&opts.WorkerCount, "number-cpu", "n", 2, "Number of workers used for the calculation")
	cmd.Flags().StringVar(&opts.RefHashFile, "ref-hash", "", "Reference hash file to verify against before calculating")
	cmd.Flags().StringVar(&opts.Format, "format", "csv", "Output table format (csv, parquet or avro)")
	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false, "Replace an existing run directory instead of failing")
	cmd.Flags().StringVar(&opts.S3Endpoint, "s3-endpoint", "", "Custom endpoint for s3 object storage")
	cmd.Flags().StringVar(&opts.S3Region, "s3-region", "us-east-1", "Region for s3 object storage")
	cmd.Flags().BoolVar(&opts.S3PathStyle, "s3-path-style", false, "Use path style addressing for s3 object storage")
	cmd.MarkFlagRequired("structure-file")
	cmd.MarkFlagRequired("config-file")
	cmd.MarkFlagRequired("key-file")
	cmd.MarkFlagRequired("output-dir")
	cmd.MarkFlagRequired("run-name")

	return cmd
}

func runCalculate(ctx context.Context, loggerFn loggerFunc, opts calculateOptions) error {
	outputFormat, err := storage.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	inputFormat, err := storage.FormatFromLocation(opts.StructureFile)
	if err != nil {
		return err
	}

	paths, err := storage.PrepareRunDirectory(opts.OutputDir, opts.RunName, outputFormat, opts.NonInteractive)
	if err != nil {
		return err
	}

	// the run log is only teed into a file for local run directories
	logFile := ""
	if !paths.IsObject {
		logFile = paths.Log
	}
	logger, closeLog, err := loggerFn(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	report := storage.NewRunReport(opts.RunName)
	logger = telemetry.WithRunID(logger, report.RunID)
	logger.Info("starting run",
		slog.String("runName", opts.RunName),
		slog.String("runDir", paths.RunDir),
		slog.String("structureFile", opts.StructureFile),
	)

	report.SetParameter("structure_file", opts.StructureFile)
	report.SetParameter("config_file", opts.ConfigFile)
	report.SetParameter("key_file", opts.KeyFile)
	report.SetParameter("output_dir", opts.OutputDir)
	report.SetParameter("run_name", opts.RunName)
	report.SetParameter("ref_hash", opts.RefHashFile)
	report.SetParameter("format", string(outputFormat))
	report.SetParameter("number_cpu", strconv.Itoa(opts.WorkerCount))

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
	metrics := telemetry.NewMetrics()

	var objectStorage storage.IObjectStorage
	if paths.IsObject || storage.IsObjectLocation(opts.StructureFile) {
		objStore, err := storage.NewObjectStorage(ctx, logger, storage.ObjectStorageOptions{
			Endpoint:     opts.S3Endpoint,
			Region:       opts.S3Region,
			UsePathStyle: opts.S3PathStyle,
		})
		if err != nil {
			logger.Error("unable to build object storage", slog.String("error", errs.ErrorWithStack(err)))
			return err
		}
		objectStorage = objStore
	}
	tableStorage := storage.NewTableStorage(logger, mem, objectStorage)

	// the reference hash check runs before the calculation so key or
	// parameter drift is caught while it is still cheap
	generatedHash, err := refhash.Generate(ctx, logger, mem, secret, params)
	if err != nil {
		logger.Error("unable to generate reference hash", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	if opts.RefHashFile != "" {
		if err := refhash.Verify(opts.RefHashFile, generatedHash); err != nil {
			logger.Error("reference hash check failed", slog.String("error", errs.ErrorWithStack(err)))
			return err
		}
		logger.Info("reference hash verified", slog.String("refHashFile", opts.RefHashFile))
	} else {
		logger.Warn("no reference hash provided, results cannot be compared with other parties")
	}

	hashData, err := refhash.MarshalGenerated(generatedHash)
	if err != nil {
		return err
	}
	hashLocation := storage.JoinLocation(paths.RunDir, refhash.GeneratedHashFileName)
	if err := tableStorage.WriteFile(ctx, hashLocation, hashData); err != nil {
		logger.Error("unable to write generated hash file", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}

	record, err := tableStorage.ReadTable(ctx, opts.StructureFile, inputFormat)
	if err != nil {
		logger.Error("unable to read structure file", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	defer record.Release()

	calculator, err := descriptor.NewCalculator(secret, params)
	if err != nil {
		logger.Error("unable to build calculator", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	transformer, err := transform.NewTransformer(logger, mem, calculator, transform.TransformerOptions{
		WorkerCount: opts.WorkerCount,
	})
	if err != nil {
		logger.Error("unable to build transformer", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}

	successRecord, failureRecord, err := transformer.Process(ctx, record)
	if err != nil {
		logger.Error("unable to process structures", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	defer successRecord.Release()
	defer failureRecord.Release()

	if err := tableStorage.WriteTable(ctx, successRecord, paths.Descriptors, outputFormat); err != nil {
		logger.Error("unable to write descriptor table", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	if err := tableStorage.WriteTable(ctx, failureRecord, paths.Failed, outputFormat); err != nil {
		logger.Error("unable to write failed table", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}

	succeeded := successRecord.NumRows()
	failed := failureRecord.NumRows()
	report.Finish(succeeded, failed)
	metrics.ObserveRun(succeeded, failed, time.Since(report.StartedAt))

	reportData, err := report.ToBytes()
	if err != nil {
		return err
	}
	if err := tableStorage.WriteFile(ctx, paths.Report, reportData); err != nil {
		logger.Error("unable to write run report", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	if err := writeMetricsFile(ctx, tableStorage, metrics, paths); err != nil {
		logger.Error("unable to write metrics file", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}

	logger.Info("run complete",
		slog.Int64("calculated", succeeded),
		slog.Int64("failed", failed),
		slog.Float64("durationSeconds", report.DurationSeconds),
		slog.String("runDir", paths.RunDir),
	)
	return nil
}

// writeMetricsFile writes the run metrics in the prometheus text format.
// The prometheus writer only targets files, so object storage runs stage
// the file through a temporary path first.
func writeMetricsFile(ctx context.Context, tableStorage *storage.TableStorage, metrics *telemetry.Metrics, paths storage.RunPaths) error {
	if !paths.IsObject {
		return metrics.WriteToFile(paths.Metrics)
	}

	tmpFile, err := os.CreateTemp("", "descry-metrics-*.prom")
	if err != nil {
		return errs.NewStackError(err)
	}
	tmpPath := tmpFile.Name()
	if err := tmpFile.Close(); err != nil {
		return errs.NewStackError(err)
	}
	defer os.Remove(tmpPath)

	if err := metrics.WriteToFile(tmpPath); err != nil {
		return err
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return errs.NewStackError(err)
	}
	return tableStorage.WriteFile(ctx, paths.Metrics, data)
}

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alekLukanen/errs"
)

const (
	RunReportFileName = "run_report.json"
	MetricsFileName   = "metrics.prom"
	RunLogFileName    = "run.log"
)

// RunPaths holds the output locations of one run. Locations are local
// paths or object locations depending on the output directory.
type RunPaths struct {
	RunDir      string
	Descriptors string
	Failed      string
	Report      string
	Metrics     string
	Log         string
	IsObject    bool
}

// PrepareRunDirectory builds the <outputDir>/<runName>/descriptors run
// layout. An existing local run directory is only replaced when
// overwrite is set; otherwise the run refuses to start so results are
// never clobbered by accident. Object storage locations have no
// directories to create, so only the paths are composed.
func PrepareRunDirectory(outputDir string, runName string, format Format, overwrite bool) (RunPaths, error) {
	if IsObjectLocation(outputDir) {
		runDir := JoinLocation(outputDir, runName, "descriptors")
		return buildRunPaths(runDir, format, true), nil
	}

	runDir := filepath.Join(outputDir, runName, "descriptors")
	if _, err := os.Stat(runDir); err == nil {
		if !overwrite {
			return RunPaths{}, errs.NewStackError(fmt.Errorf(
				"%w| directory: %s", ErrRunDirectoryExists, runDir,
			))
		}
		if err := os.RemoveAll(runDir); err != nil {
			return RunPaths{}, errs.Wrap(err, fmt.Errorf("removing run directory %s", runDir))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return RunPaths{}, errs.Wrap(err, fmt.Errorf("checking run directory %s", runDir))
	}

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return RunPaths{}, errs.Wrap(err, fmt.Errorf("creating run directory %s", runDir))
	}
	return buildRunPaths(runDir, format, false), nil
}

func buildRunPaths(runDir string, format Format, isObject bool) RunPaths {
	return RunPaths{
		RunDir:      runDir,
		Descriptors: JoinLocation(runDir, "descriptors."+format.Extension()),
		Failed:      JoinLocation(runDir, "descriptors.failed."+format.Extension()),
		Report:      JoinLocation(runDir, RunReportFileName),
		Metrics:     JoinLocation(runDir, MetricsFileName),
		Log:         JoinLocation(runDir, RunLogFileName),
		IsObject:    isObject,
	}
}

package storage

import (
	"encoding/json"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/google/uuid"
)

type RunCounts struct {
	Calculated int64 `json:"calc_desc"`
	Failed     int64 `json:"failed_desc"`
}

// RunReport summarizes one run for the run_report.json output. It holds
// file locations and counts, never key material.
type RunReport struct {
	RunID           string            `json:"run_id"`
	RunName         string            `json:"run_name"`
	StartedAt       time.Time         `json:"started_at"`
	DurationSeconds float64           `json:"duration_seconds"`
	RunParameters   map[string]string `json:"run_parameters"`
	Descriptors     RunCounts         `json:"descriptor_calculation"`
}

func NewRunReport(runName string) *RunReport {
	return &RunReport{
		RunID:         uuid.NewString(),
		RunName:       runName,
		StartedAt:     time.Now().UTC(),
		RunParameters: make(map[string]string),
	}
}

func (obj *RunReport) SetParameter(name string, value string) {
	obj.RunParameters[name] = value
}

func (obj *RunReport) Finish(calculated int64, failed int64) {
	obj.Descriptors = RunCounts{Calculated: calculated, Failed: failed}
	obj.DurationSeconds = time.Since(obj.StartedAt).Seconds()
}

func (obj *RunReport) ToBytes() ([]byte, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	return append(data, '\n'), nil
}

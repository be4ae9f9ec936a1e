package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunReportToBytes(t *testing.T) {
	report := NewRunReport("run-1")
	report.SetParameter("structure_file", "/data/T2.csv")
	report.SetParameter("number_cpu", "4")
	report.Finish(120, 3)

	if !assert.NotEmpty(t, report.RunID, "expected a run id") {
		return
	}

	data, err := report.ToBytes()
	if !assert.Nil(t, err) {
		return
	}

	var decoded RunReport
	if err := json.Unmarshal(data, &decoded); !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, decoded.RunID, report.RunID)
	assert.Equal(t, decoded.RunName, "run-1")
	assert.Equal(t, decoded.Descriptors.Calculated, int64(120))
	assert.Equal(t, decoded.Descriptors.Failed, int64(3))
	assert.Equal(t, decoded.RunParameters["structure_file"], "/data/T2.csv")
	assert.True(t, decoded.DurationSeconds >= 0)
}

func TestRunReportsGetDistinctIDs(t *testing.T) {
	report1 := NewRunReport("run-1")
	report2 := NewRunReport("run-1")
	assert.NotEqual(t, report1.RunID, report2.RunID)
}

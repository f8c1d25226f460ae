package metrics

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordUnmeasuredMetricsSerializeAsNull(t *testing.T) {
	record := &RunRecord{
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Phase:       "Phase 1: CPU Baseline",
		Platform:    "Jetson Nano (ARM)",
		TotalFrames: 300,
		FPS:         &Stats{Average: 4.2, Min: 3.9, Max: 4.5, Samples: 300},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Metrics that were never sampled must be null, not zeroed objects.
	for _, key := range []string{"thermal", "gpu_load_percent", "gpu_memory_gb", "power", "pcie_transfer_overhead_ms"} {
		assert.JSONEq(t, "null", string(raw[key]), "key %s", key)
	}
	assert.NotEqual(t, "null", string(raw["fps"]))
}

func TestRunRecordSaveAndLoad(t *testing.T) {
	record := &RunRecord{
		Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Phase:           "Phase 3: GPU Accelerated (UMA)",
		Platform:        "Jetson Nano (Integrated GPU)",
		Architecture:    "UMA - Zero-Copy Memory",
		TotalFrames:     900,
		DurationSeconds: 60.2,
		FPS:             &Stats{Average: 15.1, Min: 12.0, Max: 16.3, StdDev: 0.8, Samples: 900},
		LatencyMS:       &Stats{Average: 66.2, Min: 61.0, Max: 83.4, StdDev: 3.1, Samples: 900},
		Power:           &Power{AverageW: 6.0, PerFPS: 0.397, Source: SourceEstimated},
		PCIeTransferOverheadMS: &Transfer{
			AverageMS: 0,
			Source:    SourceMeasured,
			Note:      "UMA eliminates host/device copies (CPU and GPU share memory)",
		},
		SystemInfo: map[string]string{"os": "linux", "arch": "arm64"},
	}

	path := filepath.Join(t.TempDir(), "results", "jetson_gpu.json")
	require.NoError(t, record.Save(path))

	loaded, err := LoadRunRecord(path)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestRunRecordLoadMissingFile(t *testing.T) {
	_, err := LoadRunRecord(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

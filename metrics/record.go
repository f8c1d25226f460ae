package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Source tags for derived metrics: a value read from hardware versus a
// documented fallback constant. The two must never be interchangeable in
// the artifact.
const (
	SourceMeasured  = "measured"
	SourceEstimated = "estimated"
)

// Power captures average power draw for a run and how it was obtained.
type Power struct {
	AverageW float64 `json:"average_power_w"`
	PerFPS   float64 `json:"power_per_fps"`
	Source   string  `json:"source"`
}

// Transfer captures per-frame host/device transfer overhead. On unified
// memory platforms this is a measured zero; on discrete GPUs without a
// transfer benchmark it is an explicit estimate.
type Transfer struct {
	AverageMS      float64 `json:"average"`
	PercentOfTotal float64 `json:"percentage_of_total"`
	Source         string  `json:"source"`
	Note           string  `json:"note,omitempty"`
}

// RunRecord is the immutable result of one benchmark run. It is assembled
// once by the aggregator at run end and persisted as the JSON artifact the
// comparison report consumes. Nil sections mean the metric was not measured.
type RunRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	Phase           string    `json:"phase"`
	Platform        string    `json:"platform"`
	Architecture    string    `json:"architecture,omitempty"`
	TotalFrames     int       `json:"total_frames"`
	DurationSeconds float64   `json:"duration_seconds"`

	FPS       *Stats `json:"fps"`
	LatencyMS *Stats `json:"latency_ms"`

	Thermal        *Stats `json:"thermal"`
	CPULoadPercent *Stats `json:"cpu_load_percent"`
	MemoryPercent  *Stats `json:"memory_percent"`
	GPULoadPercent *Stats `json:"gpu_load_percent"`
	GPUMemoryGB    *Stats `json:"gpu_memory_gb"`

	Power                  *Power    `json:"power"`
	PCIeTransferOverheadMS *Transfer `json:"pcie_transfer_overhead_ms"`

	SystemInfo map[string]string `json:"system_info,omitempty"`
}

// Save writes the record to path as indented JSON, creating parent
// directories as needed.
func (r *RunRecord) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal run record")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write run record")
	}
	return nil
}

// LoadRunRecord reads a previously persisted run record.
func LoadRunRecord(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read run record")
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "parse run record %s", path)
	}
	return &record, nil
}

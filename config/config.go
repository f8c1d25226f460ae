// Package config loads benchmark run configuration from JSON or YAML
// files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes a full benchmark run. Flags override file values, so
// every field has a usable zero or default.
type Config struct {
	// Preset selects the platform configuration, e.g. "jetson-gpu".
	Preset string `json:"preset" yaml:"preset"`

	Model  ModelConfig  `json:"model"  yaml:"model"`
	Input  InputConfig  `json:"input"  yaml:"input"`
	Output OutputConfig `json:"output" yaml:"output"`

	// DurationSeconds bounds the run; zero runs until the source ends.
	DurationSeconds float64 `json:"durationSeconds" yaml:"durationSeconds"`
	// SampleIntervalMS is the background sampling cadence, 500 by
	// default.
	SampleIntervalMS int `json:"sampleIntervalMs" yaml:"sampleIntervalMs"`

	// MetricsAddr exposes live probe readings over HTTP when set, e.g.
	// ":9090".
	MetricsAddr string `json:"metricsAddr" yaml:"metricsAddr"`
}

// ModelConfig configures the detector.
type ModelConfig struct {
	Path                string  `json:"path"                yaml:"path"`
	InputSize           int     `json:"inputSize"           yaml:"inputSize"`
	ConfidenceThreshold float32 `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	LibraryPath         string  `json:"libraryPath"         yaml:"libraryPath"`
}

// InputConfig selects the frame source. Video is tried first; Camera is
// the fallback device when the file cannot be opened.
type InputConfig struct {
	Video  string `json:"video"  yaml:"video"`
	Camera int    `json:"camera" yaml:"camera"`
	// Decoder picks the video backend: "opencv" (default, supports the
	// camera fallback) or "ffmpeg" for hosts without OpenCV.
	Decoder string `json:"decoder" yaml:"decoder"`
	// SyntheticFrames selects the generated-frame source instead, useful
	// for pipeline validation without capture hardware.
	SyntheticFrames int `json:"syntheticFrames" yaml:"syntheticFrames"`
}

// OutputConfig says where the run artifact lands.
type OutputConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Load reads a config file, dispatching on extension: .yaml and .yml
// parse as YAML, everything else as JSON.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", filename)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", filename)
		}
	}
	return &cfg, nil
}

// Duration converts the configured run bound.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.DurationSeconds * float64(time.Second))
}

// SampleInterval converts the configured cadence; zero means the
// sampler default.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMS) * time.Millisecond
}

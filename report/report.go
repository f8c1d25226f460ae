// Package report renders an HTML comparison of two benchmark runs.
package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/edge-bench/metrics"
)

//go:embed template.gohtml
var pageTemplate string

// notAvailable is rendered wherever a metric was not measured.
const notAvailable = "not available"

// Generate renders the comparison of two run records as a standalone
// HTML page.
func Generate(w io.Writer, a, b *metrics.RunRecord) error {
	if a == nil || b == nil {
		return errors.New("report: both run records are required")
	}

	tmpl, err := template.New("report").Parse(pageTemplate)
	if err != nil {
		return errors.Wrap(err, "parse report template")
	}

	view, err := buildView(a, b)
	if err != nil {
		return err
	}
	return errors.Wrap(tmpl.Execute(w, view), "render report")
}

// WriteFile renders the comparison into path, creating parent
// directories as needed.
func WriteFile(path string, a, b *metrics.RunRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create report directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create report %s", path)
	}
	defer f.Close()
	return Generate(f, a, b)
}

type view struct {
	GeneratedAt string
	A, B        side
	Rows        []row
	Speedup     string
	ChartData   template.JS
}

type side struct {
	Label        string
	Phase        string
	Platform     string
	Architecture string
	Frames       int
	Duration     string
	SystemInfo   map[string]string
}

type row struct {
	Metric string
	A, B   string
}

// chartSeries feeds the page's chart.js bar charts. A null entry renders
// as a missing bar rather than a zero-height one.
type chartSeries struct {
	Labels []string   `json:"labels"`
	A      []*float64 `json:"a"`
	B      []*float64 `json:"b"`
	ALabel string     `json:"aLabel"`
	BLabel string     `json:"bLabel"`
}

func buildView(a, b *metrics.RunRecord) (*view, error) {
	v := &view{
		GeneratedAt: time.Now().Format(time.RFC1123),
		A:           sideOf(a),
		B:           sideOf(b),
		Rows:        compareRows(a, b),
		Speedup:     speedup(a, b),
	}

	charts := map[string]chartSeries{
		"fps":     statsChart("avg", "min", "max", a.FPS, b.FPS, v.A.Label, v.B.Label),
		"latency": statsChart("avg", "min", "max", a.LatencyMS, b.LatencyMS, v.A.Label, v.B.Label),
		"power": {
			Labels: []string{"average W", "W per FPS"},
			A:      powerBars(a.Power),
			B:      powerBars(b.Power),
			ALabel: v.A.Label,
			BLabel: v.B.Label,
		},
		"transfer": {
			Labels: []string{"ms per frame", "% of latency"},
			A:      transferBars(a.PCIeTransferOverheadMS),
			B:      transferBars(b.PCIeTransferOverheadMS),
			ALabel: v.A.Label,
			BLabel: v.B.Label,
		},
	}

	encoded, err := json.Marshal(charts)
	if err != nil {
		return nil, errors.Wrap(err, "encode chart data")
	}
	v.ChartData = template.JS(encoded)
	return v, nil
}

func sideOf(r *metrics.RunRecord) side {
	label := r.Platform
	if r.Architecture != "" {
		label = fmt.Sprintf("%s — %s", r.Platform, r.Architecture)
	}
	return side{
		Label:        label,
		Phase:        r.Phase,
		Platform:     r.Platform,
		Architecture: r.Architecture,
		Frames:       r.TotalFrames,
		Duration:     fmt.Sprintf("%.1fs", r.DurationSeconds),
		SystemInfo:   r.SystemInfo,
	}
}

func speedup(a, b *metrics.RunRecord) string {
	if a.FPS == nil || b.FPS == nil || a.FPS.Average <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.2fx", b.FPS.Average/a.FPS.Average)
}

func compareRows(a, b *metrics.RunRecord) []row {
	rows := []row{
		{"Average FPS", statAvg(a.FPS, "%.2f"), statAvg(b.FPS, "%.2f")},
		{"Latency (ms)", statAvg(a.LatencyMS, "%.2f"), statAvg(b.LatencyMS, "%.2f")},
		{"Latency std dev (ms)", statStd(a.LatencyMS, "%.2f"), statStd(b.LatencyMS, "%.2f")},
		{"Thermal (°C)", statAvg(a.Thermal, "%.1f"), statAvg(b.Thermal, "%.1f")},
		{"CPU load (%)", statAvg(a.CPULoadPercent, "%.1f"), statAvg(b.CPULoadPercent, "%.1f")},
		{"Memory (%)", statAvg(a.MemoryPercent, "%.1f"), statAvg(b.MemoryPercent, "%.1f")},
		{"GPU load (%)", statAvg(a.GPULoadPercent, "%.1f"), statAvg(b.GPULoadPercent, "%.1f")},
		{"GPU memory (GB)", statAvg(a.GPUMemoryGB, "%.2f"), statAvg(b.GPUMemoryGB, "%.2f")},
		{"Power (W)", powerCell(a.Power), powerCell(b.Power)},
		{"Power per FPS (W)", perFPSCell(a.Power), perFPSCell(b.Power)},
		{"Transfer overhead (ms)", transferCell(a.PCIeTransferOverheadMS), transferCell(b.PCIeTransferOverheadMS)},
	}
	return rows
}

func statAvg(s *metrics.Stats, format string) string {
	if s == nil {
		return notAvailable
	}
	return fmt.Sprintf(format, s.Average)
}

func statStd(s *metrics.Stats, format string) string {
	if s == nil {
		return notAvailable
	}
	return fmt.Sprintf(format, s.StdDev)
}

func powerCell(p *metrics.Power) string {
	if p == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.2f (%s)", p.AverageW, p.Source)
}

func perFPSCell(p *metrics.Power) string {
	if p == nil || p.PerFPS == 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.3f", p.PerFPS)
}

func transferCell(t *metrics.Transfer) string {
	if t == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.2f (%s)", t.AverageMS, t.Source)
}

func statsChart(l1, l2, l3 string, a, b *metrics.Stats, aLabel, bLabel string) chartSeries {
	return chartSeries{
		Labels: []string{l1, l2, l3},
		A:      statBars(a),
		B:      statBars(b),
		ALabel: aLabel,
		BLabel: bLabel,
	}
}

func statBars(s *metrics.Stats) []*float64 {
	if s == nil {
		return []*float64{nil, nil, nil}
	}
	return []*float64{&s.Average, &s.Min, &s.Max}
}

func powerBars(p *metrics.Power) []*float64 {
	if p == nil {
		return []*float64{nil, nil}
	}
	return []*float64{&p.AverageW, &p.PerFPS}
}

func transferBars(t *metrics.Transfer) []*float64 {
	if t == nil {
		return []*float64{nil, nil}
	}
	return []*float64{&t.AverageMS, &t.PercentOfTotal}
}

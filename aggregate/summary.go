package aggregate

import (
	"fmt"
	"io"

	"github.com/nvr-ai/edge-bench/metrics"
)

// PrintSummary writes a human-readable recap of a finished run.
func PrintSummary(w io.Writer, record *metrics.RunRecord) {
	fmt.Fprintf(w, "\n📊 Benchmark Complete\n")
	fmt.Fprintf(w, "=====================================\n")
	fmt.Fprintf(w, "   Phase:    %s\n", record.Phase)
	fmt.Fprintf(w, "   Platform: %s\n", record.Platform)
	if record.Architecture != "" {
		fmt.Fprintf(w, "   Memory:   %s\n", record.Architecture)
	}
	fmt.Fprintf(w, "   Frames:   %d in %.1fs\n", record.TotalFrames, record.DurationSeconds)
	fmt.Fprintf(w, "-------------------------------------\n")

	printStats(w, "FPS", record.FPS, "%.2f")
	printStats(w, "Latency (ms)", record.LatencyMS, "%.2f")
	printStats(w, "Thermal (°C)", record.Thermal, "%.1f")
	printStats(w, "CPU load (%)", record.CPULoadPercent, "%.1f")
	printStats(w, "Memory (%)", record.MemoryPercent, "%.1f")
	printStats(w, "GPU load (%)", record.GPULoadPercent, "%.1f")
	printStats(w, "GPU memory (GB)", record.GPUMemoryGB, "%.2f")

	if record.Power != nil {
		fmt.Fprintf(w, "   Power:    %.2f W (%s), %.3f W per FPS\n",
			record.Power.AverageW, record.Power.Source, record.Power.PerFPS)
	} else {
		fmt.Fprintf(w, "   Power:    not available\n")
	}
	if transfer := record.PCIeTransferOverheadMS; transfer != nil {
		fmt.Fprintf(w, "   Transfer: %.2f ms/frame (%s), %.1f%% of latency\n",
			transfer.AverageMS, transfer.Source, transfer.PercentOfTotal)
	}
	fmt.Fprintf(w, "=====================================\n")
}

func printStats(w io.Writer, label string, stats *metrics.Stats, valueFormat string) {
	if stats == nil {
		return
	}
	line := fmt.Sprintf("   %-15s avg "+valueFormat+"  min "+valueFormat+"  max "+valueFormat+"  std "+valueFormat,
		label, stats.Average, stats.Min, stats.Max, stats.StdDev)
	fmt.Fprintln(w, line)
}

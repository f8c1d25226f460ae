package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nvr-ai/edge-bench/metrics"
	"github.com/nvr-ai/edge-bench/report"
)

func main() {
	var (
		pathA  = flag.String("a", "", "Run artifact for the left-hand side, e.g. the CPU baseline")
		pathB  = flag.String("b", "", "Run artifact for the right-hand side, e.g. the GPU run")
		output = flag.String("output", "comparison.html", "Output HTML file")
	)
	flag.Parse()

	if *pathA == "" || *pathB == "" {
		log.Fatal("Two run artifacts are required (-a and -b)")
	}

	recordA, err := metrics.LoadRunRecord(*pathA)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *pathA, err)
	}
	recordB, err := metrics.LoadRunRecord(*pathB)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *pathB, err)
	}

	if err := report.WriteFile(*output, recordA, recordB); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	fmt.Printf("📊 Comparison report written to %s\n", *output)
}

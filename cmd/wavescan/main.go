package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/joho/godotenv"

	"neurowave/adapters/detect"
	"neurowave/adapters/flow"
	"neurowave/adapters/progress"
	"neurowave/adapters/stats"
	"neurowave/adapters/transform"
	"neurowave/adapters/visual"
	"neurowave/app"
	"neurowave/domain/field"
	"neurowave/internal"
	"neurowave/internal/config"
	"neurowave/internal/dataset"
	"neurowave/internal/testkit"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error: %v", err)
		os.Exit(1)
	}

	rec, err := loadRecording(cfg, logger)
	if err != nil {
		logger.Error("failed to load recording: %v", err)
		os.Exit(1)
	}
	logger.Info("loaded recording: %dx%d grid, %d timesteps, %d trials",
		rec.Rows, rec.Cols, rec.Timesteps, rec.Trials)

	service := app.NewAnalysisService(
		transform.NewMorlet(),
		flow.NewHornSchunck(),
		detect.NewCriticalPointDetector(),
		stats.NewBaseRateCounter(),
		stats.NewPairedTTest(),
		progress.NewLogSink(logger),
		visual.Discard{},
	)

	result, err := service.Run(context.Background(), rec, cfg.Analysis)
	if err != nil {
		logger.Error("analysis failed: %v", err)
		os.Exit(1)
	}

	printSummary(result)
}

func loadRecording(cfg *config.Config, logger *internal.Logger) (*field.ScalarField, error) {
	if cfg.Input.Path != "" {
		return dataset.LoadCSV(cfg.Input.Path)
	}
	logger.Info("no INPUT_FILE configured, analyzing synthetic plane-wave demo recording")
	// Two seconds at the default 1 kHz rate; long enough to hold the
	// wavelet kernel for any reasonable band.
	return testkit.PlaneWaveTensor(10, 10, 2000, 3, cfg.Analysis.SamplingRate, cfg.Analysis.CenterFrequency, 8), nil
}

func printSummary(res *app.Result) {
	fmt.Printf("run %s finished in %s\n", res.RunID, res.Duration)
	fmt.Printf("bad channels: %d, usable timesteps: %d, mean flow convergence: %.1f steps\n",
		len(res.BadChannels), res.Timesteps, res.MeanConvergenceSteps)

	total := 0
	perType := make(map[string]int)
	for _, trial := range res.Patterns {
		for _, p := range trial {
			total++
			perType[p.Type]++
		}
	}
	fmt.Printf("patterns detected: %d across %d trials\n", total, len(res.Patterns))
	for _, typ := range res.PatternTypes {
		if n := perType[typ]; n > 0 {
			fmt.Printf("  %-10s %d\n", typ, n)
		}
	}

	if res.Transitions.PValues == nil {
		fmt.Println("single trial: significance testing skipped")
		return
	}
	fmt.Println("transitions departing from the base-rate model (corrected p < 0.05):")
	found := false
	for i, from := range res.PatternTypes {
		for j, to := range res.PatternTypes {
			p := res.Transitions.CorrectedPValues.At(i, j)
			if !math.IsNaN(p) && p < 0.05 {
				fmt.Printf("  %s -> %s: fractional change %+.2f, corrected p=%.4g\n",
					from, to, res.Transitions.FractionalChange.At(i, j), p)
				found = true
			}
		}
	}
	if !found {
		fmt.Println("  none")
	}
}

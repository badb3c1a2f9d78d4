package config

import (
	"os"
	"strconv"

	"neurowave/app"
	"neurowave/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig
	Analysis app.AnalysisParams
}

// InputConfig holds data source settings
type InputConfig struct {
	// Path to a long-format CSV tensor file. Empty selects the built-in
	// synthetic demo recording.
	Path string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	samplingRate := getEnvFloatOrDefault("SAMPLING_RATE", 1000)
	centerFreq := getEnvFloatOrDefault("CENTER_FREQUENCY", 8)

	params := app.DefaultParams(samplingRate, centerFreq)
	params.WaveletCycles = getEnvFloatOrDefault("WAVELET_CYCLES", params.WaveletCycles)
	params.SubtractBaseline = getEnvBoolOrDefault("SUBTRACT_BASELINE", params.SubtractBaseline)
	params.ZScoreChannels = getEnvBoolOrDefault("ZSCORE_CHANNELS", params.ZScoreChannels)
	params.OpAlpha = getEnvFloatOrDefault("OP_ALPHA", params.OpAlpha)
	params.OpBeta = getEnvFloatOrDefault("OP_BETA", params.OpBeta)
	params.UseAmplitude = getEnvBoolOrDefault("USE_AMPLITUDE", params.UseAmplitude)
	params.FlowMaxIterations = getEnvIntOrDefault("FLOW_MAX_ITERATIONS", params.FlowMaxIterations)
	params.MinPatternDuration = getEnvIntOrDefault("MIN_PATTERN_DURATION", params.MinPatternDuration)
	params.WindowAfterFrac = getEnvFloatOrDefault("WINDOW_AFTER_FRAC", params.WindowAfterFrac)
	params.WindowBeforeFrac = getEnvFloatOrDefault("WINDOW_BEFORE_FRAC", params.WindowBeforeFrac)
	params.PerformSVD = getEnvBoolOrDefault("PERFORM_SVD", params.PerformSVD)
	params.NSVDModes = getEnvIntOrDefault("N_SVD_MODES", params.NSVDModes)
	params.UseComplexSVD = getEnvBoolOrDefault("USE_COMPLEX_SVD", params.UseComplexSVD)
	params.OnlyPatterns = getEnvBoolOrDefault("ONLY_PATTERNS", params.OnlyPatterns)
	params.MaxParallelTrials = getEnvIntOrDefault("MAX_PARALLEL_TRIALS", params.MaxParallelTrials)

	config := &Config{
		Input:    InputConfig{Path: getEnvOrDefault("INPUT_FILE", "")},
		Analysis: params,
	}

	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

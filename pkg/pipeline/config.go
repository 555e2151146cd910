package pipeline

import "time"

// Config holds the thresholds and switches of a pipeline run.
type Config struct {
	MaxValidationIterations int `yaml:"maxValidationIterations"`
	// ValidationAverageThreshold is the batch average below which the
	// validation loop runs at all.
	ValidationAverageThreshold float64 `yaml:"validationAverageThreshold"`
	// StrategyThreshold is the per-strategy score a strategy must reach to
	// leave the validation loop.
	StrategyThreshold float64 `yaml:"strategyThreshold"`
	// MinStrategyScore drops strategies whose best score stays below it.
	MinStrategyScore float64 `yaml:"minStrategyScore"`

	MaxFeasibilityIterations int     `yaml:"maxFeasibilityIterations"`
	FeasibilityThreshold     float64 `yaml:"feasibilityThreshold"`

	// MinimumStrategies is the plan count implementation planning tops up to.
	MinimumStrategies int `yaml:"minimumStrategies"`

	UseCache    bool          `yaml:"useCache"`
	Verbose     bool          `yaml:"verbose"`
	CallTimeout time.Duration `yaml:"callTimeout"`
	FailOnError bool          `yaml:"failOnError"`
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		MaxValidationIterations:    3,
		ValidationAverageThreshold: 80,
		StrategyThreshold:          75,
		MinStrategyScore:           65,
		MaxFeasibilityIterations:   3,
		FeasibilityThreshold:       70,
		MinimumStrategies:          3,
		UseCache:                   true,
		CallTimeout:                90 * time.Second,
	}
}

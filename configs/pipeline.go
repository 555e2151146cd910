package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ai-proposal-api/pkg/pipeline"
)

// LoadPipelineConfig builds the pipeline settings: defaults, then the YAML
// file named by PipelineConfigFile, then the environment.
func (c *Config) LoadPipelineConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	if c.PipelineConfigFile != "" {
		data, err := os.ReadFile(c.PipelineConfigFile)
		if err != nil {
			return cfg, fmt.Errorf("reading pipeline config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing pipeline config %s: %w", c.PipelineConfigFile, err)
		}
	}

	if v, ok := lookupBool("USE_CACHE"); ok {
		cfg.UseCache = v
	}
	if v, ok := lookupBool("VERBOSE_LOGGING"); ok {
		cfg.Verbose = v
	}
	// FAIL_ON_ERRORS only has an effect in development
	failOnError, _ := lookupBool("FAIL_ON_ERRORS")
	cfg.FailOnError = c.IsDevelopment() && (failOnError || cfg.FailOnError)

	if raw := os.Getenv("LLM_CALL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("LLM_CALL_TIMEOUT: %w", err)
		}
		cfg.CallTimeout = d
	}
	return cfg, nil
}

func lookupBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

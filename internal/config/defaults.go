// Package config loads agentwriting settings from Viper (config file, env,
// flags). Default values live here so there is a single source of truth.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix Viper binds environment variables under,
// e.g. AGENTWRITING_LLM_PROVIDER.
const EnvPrefix = "AGENTWRITING"

// ConfigName is the config file base name looked up in cwd and the global dir.
const ConfigName = ".agentwriting"

// Workflow defaults
const (
	DefaultMaxRetries     = 2
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultPlanRetries    = 2
	DefaultStepBinding    = "index"
	DefaultMaxStepCount   = 16
)

// LLM defaults
const (
	DefaultTemperature = 0.0
	DefaultCallTimeout = 2 * time.Minute
)

// Output defaults
const (
	DefaultOutputDir = "generated_writing"
)

// SetDefaults registers default values on the global Viper instance.
func SetDefaults() {
	viper.SetDefault("llm.temperature", DefaultTemperature)
	viper.SetDefault("llm.callTimeout", DefaultCallTimeout)

	viper.SetDefault("workflow.maxRetries", DefaultMaxRetries)
	viper.SetDefault("workflow.initialBackoff", DefaultInitialBackoff)
	viper.SetDefault("workflow.maxBackoff", DefaultMaxBackoff)
	viper.SetDefault("workflow.planRetries", DefaultPlanRetries)
	viper.SetDefault("workflow.stepBinding", DefaultStepBinding)
	viper.SetDefault("workflow.maxStepCount", DefaultMaxStepCount)

	viper.SetDefault("output.dir", DefaultOutputDir)
	viper.SetDefault("output.html", false)
}

package config

import (
	"fmt"
	"time"

	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/output"
	"github.com/josephgoksu/agentwriting/internal/workflow"
	"github.com/spf13/viper"
)

type workflowSettings struct {
	MaxRetries     int           `validate:"gte=0,lte=10"`
	InitialBackoff time.Duration `validate:"gte=0"`
	MaxBackoff     time.Duration `validate:"gte=0"`
	PlanRetries    int           `validate:"gte=0,lte=10"`
	StepBinding    string        `validate:"omitempty,oneof=index cycle first"`
	MaxStepCount   int           `validate:"gte=1,lte=64"`
}

// LoadWorkflowConfig reads the workflow.* keys into a runner configuration.
func LoadWorkflowConfig() (workflow.Config, error) {
	s := workflowSettings{
		MaxRetries:     viper.GetInt("workflow.maxRetries"),
		InitialBackoff: viper.GetDuration("workflow.initialBackoff"),
		MaxBackoff:     viper.GetDuration("workflow.maxBackoff"),
		PlanRetries:    viper.GetInt("workflow.planRetries"),
		StepBinding:    viper.GetString("workflow.stepBinding"),
		MaxStepCount:   viper.GetInt("workflow.maxStepCount"),
	}
	if s.MaxStepCount == 0 {
		s.MaxStepCount = DefaultMaxStepCount
	}
	if err := ValidateStruct(s); err != nil {
		return workflow.Config{}, fmt.Errorf("invalid workflow config: %w", err)
	}

	binding, err := workflow.ParseStepBinding(s.StepBinding)
	if err != nil {
		return workflow.Config{}, err
	}

	cfg := workflow.DefaultConfig()
	cfg.Retry = llm.RetryPolicy{
		MaxRetries:     s.MaxRetries,
		InitialBackoff: s.InitialBackoff,
		MaxBackoff:     s.MaxBackoff,
		Multiplier:     2.0,
	}
	cfg.PlanRetry = cfg.Retry
	cfg.PlanRetry.MaxRetries = s.PlanRetries
	cfg.StepBinding = binding
	cfg.MaxStepCount = s.MaxStepCount
	return cfg, nil
}

type outputSettings struct {
	Dir  string `validate:"required"`
	HTML bool
}

// LoadOutputConfig reads the output.* keys.
func LoadOutputConfig() (output.Config, error) {
	s := outputSettings{
		Dir:  viper.GetString("output.dir"),
		HTML: viper.GetBool("output.html"),
	}
	if s.Dir == "" {
		s.Dir = DefaultOutputDir
	}
	if err := ValidateStruct(s); err != nil {
		return output.Config{}, fmt.Errorf("invalid output config: %w", err)
	}
	return output.Config{Dir: s.Dir, HTML: s.HTML}, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/spf13/viper"
)

// SaveGlobalLLMConfig stores provider, model and API key in the global config
// file, preserving any other settings already there. An empty model selects
// the provider default; an empty key leaves the stored key untouched.
func SaveGlobalLLMConfig(provider, model, key string) error {
	if provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	p, err := llm.ValidateProvider(provider)
	if err != nil {
		return err
	}
	if model == "" {
		model = llm.DefaultModelForProvider(string(p))
	}

	return updateGlobalConfig(func(v *viper.Viper) {
		v.Set("llm.provider", string(p))
		v.Set("llm.model", model)
		if key != "" {
			v.Set(fmt.Sprintf("llm.apiKeys.%s", p), key)
		}
	})
}

// SaveAPIKeyForProvider stores only the API key for provider without changing
// the preferred provider or model.
func SaveAPIKeyForProvider(provider, key string) error {
	if provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	p, err := llm.ValidateProvider(provider)
	if err != nil {
		return err
	}

	return updateGlobalConfig(func(v *viper.Viper) {
		v.Set(fmt.Sprintf("llm.apiKeys.%s", p), key)
	})
}

func updateGlobalConfig(mutate func(v *viper.Viper)) error {
	path, err := GlobalConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	mutate(v)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// Keys are secrets.
	return os.Chmod(path, 0o600)
}

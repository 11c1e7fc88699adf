package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/spf13/viper"
)

// projectConfigFile is looked up in the working directory and overrides the
// global config.
const projectConfigFile = config.ConfigName + ".yaml"

// InitConfig reads in config files and ENV variables if set.
func InitConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(config.EnvPrefix)                   // e.g., AGENTWRITING_LLM_PROVIDER
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // llm.provider -> LLM_PROVIDER
	viper.AutomaticEnv()
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error: cannot read config file:", cfgFile, "-", err)
			return
		}
		LogError("Using config file: "+viper.ConfigFileUsed(), nil)
		return
	}

	if global, err := config.GlobalConfigFile(); err == nil {
		viper.SetConfigFile(global)
		if err := viper.ReadInConfig(); err == nil {
			LogError("Using global config: "+global, nil)
		} else if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", global, "-", err)
		}
	}

	if _, err := os.Stat(projectConfigFile); err == nil {
		viper.SetConfigFile(projectConfigFile)
		if err := viper.MergeInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error reading config file:", projectConfigFile, "-", err)
			return
		}
		LogError("Merged project config: "+projectConfigFile, nil)
	}
}

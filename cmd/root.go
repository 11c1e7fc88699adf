/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"os"

	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/josephgoksu/agentwriting/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
	// crash records panics to ~/.agentwriting/logs.
	crash = logger.NewCrashReporter(afero.NewOsFs(), config.CrashLogDir(), version)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agentwriting",
	Short: "agentwriting - plan-then-write long-form generation",
	Long: `agentwriting turns a single writing instruction into a long document.

It asks a language model for a writing plan, then writes the document one
plan step at a time, streaming each section and keeping the text written so
far in the prompt so the sections read as one piece.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		crash.SetCommand(cmd.CommandPath())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	code := run()
	if code != 0 {
		os.Exit(code)
	}
}

func run() int {
	defer crash.Recover()
	if err := rootCmd.Execute(); err != nil {
		PrintError(userMessage(err), err)
		return exitCode(err)
	}
	return 0
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.agentwriting.yaml, then ~/.agentwriting/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	bindRootFlags()
}

func bindRootFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

package cmd

import (
	"fmt"

	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/telemetry"
	"github.com/josephgoksu/agentwriting/internal/ui"
	"github.com/josephgoksu/agentwriting/internal/workflow"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// telemetryAPIKey is set at build time with -ldflags; telemetry.apiKey overrides it.
var telemetryAPIKey = ""

// telemetryFs is swapped in tests.
var telemetryFs afero.Fs = afero.NewOsFs()

func telemetryStore() (*telemetry.Store, error) {
	dir, err := config.GetGlobalConfigDir()
	if err != nil {
		return nil, err
	}
	return telemetry.NewStore(telemetryFs, dir), nil
}

// newTelemetryClient never fails the command; any problem yields a no-op client.
func newTelemetryClient() telemetry.Client {
	store, err := telemetryStore()
	if err != nil {
		LogError("telemetry disabled", err)
		return telemetry.NoopClient{}
	}
	consent, err := store.Load()
	if err != nil {
		LogError("telemetry disabled", err)
		return telemetry.NoopClient{}
	}
	key := viper.GetString("telemetry.apiKey")
	if key == "" {
		key = telemetryAPIKey
	}
	client, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   key,
		Version:  version,
		Config:   consent,
		Endpoint: viper.GetString("telemetry.endpoint"),
	})
	if err != nil {
		LogError("telemetry disabled", err)
		return telemetry.NoopClient{}
	}
	return client
}

// trackWrite reports run metrics only; the instruction and document text are never sent.
func trackWrite(client telemetry.Client, provider llm.Provider, stepCount int, res *workflow.Result, runErr error) {
	props := telemetry.Properties{
		"provider":   string(provider),
		"step_count": stepCount,
	}
	if res != nil {
		props["status"] = string(res.Status)
		props["words"] = res.Metrics.WordCount
		props["segments"] = res.Metrics.Segments
		props["failed_iterations"] = res.Metrics.FailedIterations
		props["duration_ms"] = res.Metrics.Duration.Milliseconds()
	}
	event := telemetry.EventWriteCompleted
	if runErr != nil {
		event = telemetry.EventWriteFailed
		props["error_kind"] = string(workflow.KindOf(runErr))
	}
	client.Track(event, props)
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Show or change anonymous usage telemetry (off by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := telemetryStore()
		if err != nil {
			return err
		}
		consent, err := store.Load()
		if err != nil {
			return err
		}
		state := ui.StyleWarning.Render("disabled")
		if consent.IsEnabled() {
			state = ui.StyleSuccess.Render("enabled")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Telemetry: %s\n", state)
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSubtle.Render("Only run metrics are sent (provider, step count, word count, duration). Instructions and documents never leave your machine."))
		return nil
	},
}

func setTelemetry(enabled bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := telemetryStore()
		if err != nil {
			return err
		}
		consent, err := store.Load()
		if err != nil {
			return err
		}
		if enabled {
			consent.Enable()
		} else {
			consent.Disable()
		}
		if err := store.Save(consent); err != nil {
			return err
		}
		word := "disabled"
		if enabled {
			word = "enabled"
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Icon("✓", ui.StyleSuccess), "Telemetry", word)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(telemetryCmd)
	telemetryCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Opt in to anonymous usage telemetry",
		Args:  cobra.NoArgs,
		RunE:  setTelemetry(true),
	})
	telemetryCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Opt out of anonymous usage telemetry",
		Args:  cobra.NoArgs,
		RunE:  setTelemetry(false),
	})
}

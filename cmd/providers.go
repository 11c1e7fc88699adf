package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/ui"
	"github.com/spf13/cobra"
)

var providersAPIKey string

// promptLLMSelection is swapped in tests.
var promptLLMSelection = ui.PromptLLMSelection

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider"},
	Short:   "List supported LLM providers and the active one",
	RunE: func(cmd *cobra.Command, args []string) error {
		active, err := config.LoadLLMConfig()
		if err != nil {
			return err
		}

		table := &ui.Table{
			Headers:  []string{"", "PROVIDER", "DEFAULT MODEL", "API KEY"},
			MaxWidth: 40,
		}
		for _, p := range llm.Providers() {
			marker := ""
			if p == active.Provider {
				marker = "*"
			}
			table.Rows = append(table.Rows, []string{
				marker,
				string(p),
				llm.DefaultModelForProvider(string(p)),
				keyStatus(p),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, table.Render())
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s / %s\n", ui.StyleSubtle.Render("Active:"), active.Provider, active.Model)
		return nil
	},
}

var providersUseCmd = &cobra.Command{
	Use:   "use [provider] [model]",
	Short: "Save the default provider and model to the global config",
	Long: `Save the default provider and model to ~/.agentwriting/config.yaml.

Without arguments an interactive picker is shown. The model defaults to the
provider's suggested model.`,
	Example: `  agentwriting providers use openai gpt-4o-mini --api-key sk-...
  agentwriting providers use ollama llama3.2`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var provider, model string
		switch len(args) {
		case 0:
			if !isInteractive() {
				return fmt.Errorf("a provider is required when not running in a terminal")
			}
			sel, err := promptLLMSelection()
			if err != nil {
				return err
			}
			provider, model = sel.Provider, sel.Model
		case 1:
			provider = args[0]
		default:
			provider, model = args[0], args[1]
		}
		provider = strings.ToLower(strings.TrimSpace(provider))

		if err := config.SaveGlobalLLMConfig(provider, model, strings.TrimSpace(providersAPIKey)); err != nil {
			return fmt.Errorf("save provider: %w", err)
		}
		if model == "" {
			model = llm.DefaultModelForProvider(provider)
		}

		path, _ := config.GlobalConfigFile()
		fmt.Fprintln(cmd.OutOrStdout(), ui.Icon("✓", ui.StyleSuccess),
			fmt.Sprintf("Using %s / %s (saved to %s)", provider, model, path))
		return nil
	},
}

func keyStatus(p llm.Provider) string {
	if p == llm.ProviderOllama {
		return "not needed"
	}
	if config.ResolveAPIKey(p) != "" {
		return "set"
	}
	return "missing"
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersUseCmd)

	providersUseCmd.Flags().StringVar(&providersAPIKey, "api-key", "", "API key to store for the provider")
}

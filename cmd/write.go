package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/logger"
	"github.com/josephgoksu/agentwriting/internal/output"
	"github.com/josephgoksu/agentwriting/internal/ui"
	"github.com/josephgoksu/agentwriting/internal/workflow"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	writeSteps    int
	writeOutID    string
	writeNoSave   bool
	writeStream   bool
	writeShowPlan bool
)

// Test seams.
var (
	openBackend = func(ctx context.Context, cfg llm.Config) (workflow.Backend, error) {
		return llm.Open(ctx, cfg)
	}
	promptAPIKey  = ui.PromptAPIKey
	isInteractive = func() bool { return ui.IsInteractive(os.Stdin) && ui.IsInteractive(os.Stderr) }
)

var outputFs afero.Fs = afero.NewOsFs()

var writeCmd = &cobra.Command{
	Use:   "write [instruction]",
	Short: "Plan and write a document from one instruction",
	Long: `Plan and write a document from one instruction.

The instruction is taken from the argument, or read from stdin when no
argument is given. --steps sets the number of writing passes; 0 writes the
whole document in a single pass.`,
	Example: `  agentwriting write "Write a two-paragraph story about a lighthouse" --steps 2
  cat brief.txt | agentwriting write --steps 5 --provider ollama --model llama3.2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().IntVarP(&writeSteps, "steps", "s", 0, "number of writing passes (0 writes in one pass)")
	writeCmd.Flags().String("provider", "", "LLM provider (groq, openai, ollama, anthropic, gemini)")
	writeCmd.Flags().String("model", "", "model name (defaults per provider)")
	writeCmd.Flags().String("dir", config.DefaultOutputDir, "directory the document is saved to")
	writeCmd.Flags().Bool("html", false, "also save an HTML rendering")
	writeCmd.Flags().StringVarP(&writeOutID, "out", "o", "", "file name for the saved document (generated when empty)")
	writeCmd.Flags().BoolVar(&writeNoSave, "no-save", false, "print the document without saving it")
	writeCmd.Flags().BoolVar(&writeStream, "stream", false, "print text as it is generated")
	writeCmd.Flags().BoolVar(&writeShowPlan, "plan", false, "print the writing plan before the document")
	bindWriteFlags()
}

// bindWriteFlags lets flags override the matching config keys.
func bindWriteFlags() {
	_ = viper.BindPFlag("llm.provider", writeCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", writeCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("output.dir", writeCmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("output.html", writeCmd.Flags().Lookup("html"))
}

func runWrite(cmd *cobra.Command, args []string) error {
	instruction, err := readInstruction(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	crash.SetLastInput(instruction)

	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return err
	}
	if llmCfg.APIKey == "" && llmCfg.Provider != llm.ProviderOllama {
		key, err := askForAPIKey(llmCfg.Provider)
		if err != nil {
			return err
		}
		llmCfg.APIKey = key
	}
	wfCfg, err := config.LoadWorkflowConfig()
	if err != nil {
		return err
	}
	outCfg, err := config.LoadOutputConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, llmCfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", llmCfg.Provider, err)
	}
	LogError(fmt.Sprintf("Using %s model %s", llmCfg.Provider, llmCfg.Model), nil)

	out := cmd.OutOrStdout()
	log := logger.Discard()
	if viper.GetBool("verbose") {
		log = logger.New(cmd.ErrOrStderr(), true)
	}
	runner := workflow.NewRunner(wfCfg, log)

	spin := ui.NewSpinner(cmd.ErrOrStderr(), "Planning...")
	if isInteractive() && !viper.GetBool("verbose") {
		spin.Start()
	}
	defer spin.Stop()

	tel := newTelemetryClient()
	defer func() { _ = tel.Close() }()

	streamed := newStreamPrinter(out)
	res, runErr := runner.Run(ctx, instruction, writeSteps, backend, workflow.WithProgress(func(p workflow.Progress) {
		spin.Stop()
		if writeStream {
			streamed.write(p)
		}
	}))
	spin.Stop()
	trackWrite(tel, llmCfg.Provider, writeSteps, res, runErr)
	if res == nil {
		return runErr
	}

	if writeShowPlan && res.Plan.Len() > 0 {
		fmt.Fprintln(out, ui.StylePlanBox.Render("Writing plan\n\n"+res.Plan.String()))
		fmt.Fprintln(out)
	}
	switch {
	case !writeStream || streamed.written == 0:
		fmt.Fprintln(out, res.Document.Text)
	case streamed.diverged(res):
		fmt.Fprintln(out)
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.StyleSectionTitle.Render("Final document"))
		fmt.Fprintln(out, res.Document.Text)
	default:
		fmt.Fprintln(out)
	}
	printSummary(out, res)

	if !writeNoSave && len(res.Document.Segments) > 0 {
		saved, err := output.NewWriter(outputFs, outCfg).Save(writeOutID, res.Document)
		if err != nil {
			return errors.Join(runErr, fmt.Errorf("save document: %w", err))
		}
		fmt.Fprintln(out, ui.Icon("✓", ui.StyleSuccess), "Saved", saved.Markdown)
		if saved.HTML != "" {
			fmt.Fprintln(out, ui.Icon("✓", ui.StyleSuccess), "Saved", saved.HTML)
		}
	}
	return runErr
}

// readInstruction takes the positional argument, or all of stdin.
func readInstruction(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read instruction from stdin: %w", err)
	}
	instruction := strings.TrimSpace(string(data))
	if instruction == "" {
		return "", errors.New("an instruction is required, as an argument or on stdin")
	}
	return instruction, nil
}

// askForAPIKey prompts for a missing key on a terminal and stores it for next time.
func askForAPIKey(provider llm.Provider) (string, error) {
	if !isInteractive() {
		return "", fmt.Errorf("no API key for %s: set llm.apiKeys.%s or the provider's API key env var", provider, provider)
	}
	key, err := promptAPIKey(string(provider))
	if err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("no API key entered for %s", provider)
	}
	if err := config.SaveAPIKeyForProvider(string(provider), key); err != nil {
		PrintError("Warning: could not store the API key; it is used for this run only.", err)
	}
	return key, nil
}

func printSummary(out io.Writer, res *workflow.Result) {
	fmt.Fprintln(out)
	if res.Status == workflow.StatusCancelled {
		fmt.Fprintln(out, ui.Icon("Cancelled:", ui.StyleWarning), "partial document shown")
	}
	fmt.Fprintf(out, "Time taken: %.2fs\n", res.Metrics.Duration.Seconds())
	fmt.Fprintf(out, "Word count: %d\n", res.Metrics.WordCount)
	if n := res.Metrics.FailedIterations; n > 0 {
		fmt.Fprintln(out, ui.Icon("Warning:", ui.StyleWarning),
			fmt.Sprintf("%d of %d passes failed and were skipped", n, res.Metrics.Iterations))
	}
}

// streamPrinter echoes chunks live, separating passes the way the
// document joins its segments.
type streamPrinter struct {
	out       io.Writer
	iteration int
	written   int
	retried   bool
}

func newStreamPrinter(out io.Writer) *streamPrinter {
	return &streamPrinter{out: out}
}

func (s *streamPrinter) write(p workflow.Progress) {
	if p.Chunk == "" {
		return
	}
	if s.written > 0 && p.Iteration != s.iteration {
		fmt.Fprint(s.out, "\n\n")
	}
	if p.Attempt > 1 {
		s.retried = true
	}
	s.iteration = p.Iteration
	n, _ := fmt.Fprint(s.out, p.Chunk)
	s.written += n
}

// diverged reports whether the echoed text may contain chunks of attempts
// that were discarded, so it no longer matches the document.
func (s *streamPrinter) diverged(res *workflow.Result) bool {
	return s.retried || res.Metrics.FailedIterations > 0 || res.Status == workflow.StatusCancelled
}

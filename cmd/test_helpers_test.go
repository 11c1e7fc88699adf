package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/workflow"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// scriptedBackend answers the planning call with plan and each writing pass
// with the next entry of sections, split into word-sized chunks.
type scriptedBackend struct {
	mu       sync.Mutex
	plan     string
	sections []string
	// beforePass runs before pass n (0-based) and may return an error for it.
	beforePass func(n int) error
	// afterChunks, when set, may fail pass n once its chunks were delivered.
	afterChunks func(n int) error
	passes      int
}

func (b *scriptedBackend) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	return b.plan, nil
}

func (b *scriptedBackend) StreamComplete(ctx context.Context, p llm.Prompt) (llm.ChunkStream, error) {
	b.mu.Lock()
	n := b.passes
	b.passes++
	b.mu.Unlock()

	if b.beforePass != nil {
		if err := b.beforePass(n); err != nil {
			return nil, err
		}
	}
	text := b.sections[n%len(b.sections)]
	s := &chunkStream{chunks: strings.SplitAfter(text, " ")}
	if b.afterChunks != nil {
		s.err = b.afterChunks(n)
	}
	return s, nil
}

type chunkStream struct {
	chunks []string
	err    error
}

func (s *chunkStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *chunkStream) Close() error { return nil }

type cliEnv struct {
	fs        afero.Fs
	configDir string
}

// setupCLI isolates global state: viper, flags, the global config dir, API
// key env vars, and the seams in write.go.
func setupCLI(t *testing.T, backend workflow.Backend) *cliEnv {
	t.Helper()

	viper.Reset()
	bindRootFlags()
	bindWriteFlags()
	for _, c := range []*cobra.Command{rootCmd, writeCmd, providersCmd, providersUseCmd, telemetryCmd} {
		resetFlags(c.Flags())
		resetFlags(c.PersistentFlags())
	}

	env := &cliEnv{fs: afero.NewMemMapFs(), configDir: t.TempDir()}
	origDir := config.GetGlobalConfigDir
	config.GetGlobalConfigDir = func() (string, error) { return env.configDir, nil }

	for _, key := range []string{"OPENAI_API_KEY", "GROQ_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(key, "")
	}

	origOpen, origPrompt, origInteractive, origFs, origSelect, origTelFs := openBackend, promptAPIKey, isInteractive, outputFs, promptLLMSelection, telemetryFs
	openBackend = func(ctx context.Context, cfg llm.Config) (workflow.Backend, error) {
		return backend, nil
	}
	isInteractive = func() bool { return false }
	outputFs = env.fs
	telemetryFs = env.fs

	t.Cleanup(func() {
		config.GetGlobalConfigDir = origDir
		openBackend, promptAPIKey, isInteractive, outputFs, promptLLMSelection, telemetryFs = origOpen, origPrompt, origInteractive, origFs, origSelect, origTelFs
		viper.Reset()
	})
	return env
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func executeCommand(ctx context.Context, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

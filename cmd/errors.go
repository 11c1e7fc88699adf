package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/josephgoksu/agentwriting/internal/ui"
	"github.com/josephgoksu/agentwriting/internal/workflow"
	"github.com/spf13/viper"
)

// exitCancelled follows the shell convention for SIGINT.
const exitCancelled = 130

// PrintError prints an error message without exiting, allowing for recovery.
// With --verbose the technical error is printed instead of the user message.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Icon("Error:", ui.StyleError), technicalErr)
		return
	}
	fmt.Fprintln(os.Stderr, userMsg)
}

// LogError logs a debug message to stderr only in verbose mode.
func LogError(msg string, err error) {
	if !viper.GetBool("verbose") {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
	}
}

// userMessage turns a run error into a one-line hint.
func userMessage(err error) string {
	var werr *workflow.Error
	if !errors.As(err, &werr) {
		return "Error: " + err.Error()
	}
	switch werr.Kind {
	case workflow.KindInvalidInstruction:
		return "Error: " + werr.Message
	case workflow.KindBackendUnavailable:
		return "Error: the language model backend is unavailable. Check the provider, base URL and API key (run with -v for details)."
	case workflow.KindThrottled:
		return "Error: the provider is rate limiting requests. Wait a moment and try again."
	case workflow.KindMalformedResponse:
		return "Error: the provider returned an unusable response (run with -v for details)."
	case workflow.KindNoContentGenerated:
		return "Error: no section of the document could be written (run with -v for details)."
	case workflow.KindCancelled:
		return "Cancelled."
	default:
		return "Error: " + err.Error()
	}
}

func exitCode(err error) int {
	if workflow.KindOf(err) == workflow.KindCancelled {
		return exitCancelled
	}
	return 1
}

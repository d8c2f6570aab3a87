package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/gridexpr/internal/app"
)

// HarnessResult holds the outcomes of an application test run.
type HarnessResult struct {
	Output    string
	Lines     []string // non-empty lines of Output
	LogOutput string
	Err       error
}

// RunApp writes files into a temporary model directory and runs the app on
// it with cfg. ModelPath, LogLevel and LogFormat are filled in when empty.
// Set GRIDEXPR_TEST_LOGS=true to print the log output of every run.
func RunApp(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, cfg)
}

// RunAppWithContext is RunApp with a caller provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	if cfg.ModelPath == "" {
		cfg.ModelPath = WriteFiles(t, files)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Year == 0 {
		cfg.Year = 2025
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return &HarnessResult{Err: err}
	}

	out := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	runErr := app.NewApp(out, logBuffer, config).Run(ctx)

	if os.Getenv("GRIDEXPR_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Output:    out.String(),
		Lines:     out.Lines(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
	}
}

package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/gridexpr/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridexpr", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridexpr - Evaluate energy model expressions over calendar aware time series.

Usage:
  gridexpr [options] [MODEL_PATH]

Arguments:
  MODEL_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Examples:
  gridexpr -key net_demand -unit MW -year 2025 ./model
  gridexpr -key wind -mode profile -weeks ./model

Options:
`)
		flagSet.PrintDefaults()
	}

	modelFlag := flagSet.String("model", "", "Path to the model file or directory.")
	mFlag := flagSet.String("m", "", "Path to the model file or directory (shorthand).")
	keyFlag := flagSet.String("key", "", "Key to evaluate. Without a key a model summary is printed.")
	modeFlag := flagSet.String("mode", app.ModeLevel, "Evaluation mode. Options: 'level' or 'profile'.")
	unitFlag := flagSet.String("unit", "", "Target unit of a level, e.g. 'MW'. Empty disables conversion.")
	yearFlag := flagSet.Int("year", 2025, "Model year to evaluate.")
	avgFlag := flagSet.Bool("avg", false, "Evaluate average instead of max levels.")
	weeksFlag := flagSet.Bool("weeks", false, "Use weekly instead of daily profile periods.")
	meanOneFlag := flagSet.Bool("mean-one", false, "Output mean-one instead of zero-one profiles.")
	float32Flag := flagSet.Bool("float32", false, "Round profile values to float32 precision.")
	week52Flag := flagSet.Bool("52-week", true, "Use the 52-week model calendar for profile periods.")
	cacheFlag := flagSet.Float64("cache-min-elapsed", 0, "Minimum seconds a computation must take to be cached.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *modelFlag != "" {
		path = *modelFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Model path determined.", "path", path)

	if path == "" {
		slog.Debug("No model path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModelPath:       path,
		Key:             *keyFlag,
		Mode:            strings.ToLower(*modeFlag),
		Unit:            *unitFlag,
		Year:            *yearFlag,
		AvgLevel:        *avgFlag,
		Weekly:          *weeksFlag,
		MeanOne:         *meanOneFlag,
		Float32:         *float32Flag,
		Is52WeekYears:   *week52Flag,
		CacheMinElapsed: *cacheFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

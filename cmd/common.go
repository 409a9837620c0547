package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/codelinter/pkg/client"
	"github.com/helmcode/codelinter/pkg/config"
	"github.com/helmcode/codelinter/pkg/model"
)

// ErrAnalysisFailed marks a lint run whose outcome should produce a
// non-zero exit status. The report has already been printed.
var ErrAnalysisFailed = errors.New("analysis failed")

// commonOptions are the flags shared by lint and watch.
type commonOptions struct {
	configPath string
	endpoint   string
	timeout    time.Duration
	output     string
	verbose    bool
	pack       bool
}

func (o *commonOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", config.DefaultPath(), "Path to the config file")
	cmd.Flags().StringVar(&o.endpoint, "endpoint", "", "Analysis service URL (default "+config.DefaultEndpoint+")")
	cmd.Flags().DurationVar(&o.timeout, "timeout", config.DefaultTimeout, "Request timeout, 0 disables it")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output format (human, json, yaml, markdown)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVar(&o.pack, "pack", false, "Zip a single file before sending it")
}

// load resolves the effective configuration for cmd.
func (o *commonOptions) load(cmd *cobra.Command) (config.Config, error) {
	overrides := config.Overrides{
		Endpoint: o.endpoint,
		Output:   o.output,
		Verbose:  o.verbose,
	}
	if cmd.Flags().Changed("timeout") {
		t := o.timeout
		overrides.Timeout = &t
	}
	return config.Load(o.configPath, overrides)
}

func newClient(cfg config.Config, logOut io.Writer) *client.Client {
	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(logOut, "codelinter: ", log.LstdFlags|log.Lmicroseconds)
	}
	return client.New(cfg.Endpoint,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
	)
}

// statusLine reports how a settled result should be announced.
func statusLine(file string, result model.Result) (string, bool) {
	switch r := result.(type) {
	case model.SuccessfulResult:
		return fmt.Sprintf("Analysis of %s complete: %d problems", file, r.ProblemCount()), true
	case model.CompilationErrorResult:
		return fmt.Sprintf("%s does not compile", file), false
	case model.FileClientErrorResult:
		return fmt.Sprintf("%s was rejected by the analysis service", file), false
	case model.InternalErrorResult:
		return "The analysis service failed", false
	case model.NetworkErrorResult:
		return "Could not reach the analysis service", false
	default:
		return "Unrecognized analysis result", false
	}
}

func printHeader(w io.Writer, file string, cfg config.Config) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🔍 Code Linter")
	if file != "" {
		fmt.Fprintf(w, "📝 File: %s\n", file)
	}
	fmt.Fprintf(w, "📍 Endpoint: %s\n", cfg.Endpoint)
	fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}

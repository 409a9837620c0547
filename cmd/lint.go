package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helmcode/codelinter/pkg/formatter"
	"github.com/helmcode/codelinter/pkg/model"
	"github.com/helmcode/codelinter/pkg/session"
	"github.com/helmcode/codelinter/pkg/upload"
)

type lintOptions struct {
	commonOptions
	failOn string
}

func NewLintCmd() *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint PATH",
		Short: "Analyze a source file or project with the remote linter",
		Long: `Upload a source file, zip archive or directory to the analysis service and
print the problems found by each tool.

Examples:
  # Analyze a single file
  codelinter lint src/Main.java

  # Analyze a project directory (sent as a zip archive)
  codelinter lint ./project

  # Fail the build on anything at or above FIX_RECOMMENDED
  codelinter lint ./project --fail-on fix-recommended -o markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, opts, args[0])
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "Exit non-zero when a problem at or above this priority is found ("+priorityList()+")")

	return cmd
}

func runLint(cmd *cobra.Command, opts *lintOptions, path string) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	var threshold model.Priority
	if opts.failOn != "" {
		p, ok := model.ParsePriority(opts.failOn)
		if !ok {
			return fmt.Errorf("unknown priority %q for --fail-on (supported: %s)", opts.failOn, priorityList())
		}
		threshold = p
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	file, err := upload.Load(path, opts.pack)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if cfg.Output == "human" {
		printHeader(stderr, file.Name, cfg)
	}

	sess := session.New(cmd.Context(), newClient(cfg, stderr))
	p := newProgress(stderr)
	unsubscribe := sess.Subscribe(p.update)

	sess.Start(file)
	snap, err := sess.AwaitSettled(cmd.Context())
	unsubscribe()
	p.stop()
	if err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	msg, ok := statusLine(file.Name, snap.Result)
	if ok {
		printSuccess(stderr, msg)
	} else {
		printError(stderr, msg)
	}

	if err := formatter.DisplayResult(stdout, file.Name, snap.Result, cfg.Output); err != nil {
		return err
	}

	return checkOutcome(snap.Result, threshold)
}

// checkOutcome returns ErrAnalysisFailed when the result is not successful,
// or when threshold is set and a problem reaches it.
func checkOutcome(result model.Result, threshold model.Priority) error {
	ok, isOK := result.(model.SuccessfulResult)
	if !isOK {
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, result.Kind())
	}
	if threshold == "" {
		return nil
	}
	if highest, found := ok.MaxPriority(); found && highest.AtLeast(threshold) {
		return fmt.Errorf("%w: found %s problems (threshold %s)", ErrAnalysisFailed, highest, threshold)
	}
	return nil
}

func priorityList() string {
	names := make([]string, len(model.Priorities))
	for i, p := range model.Priorities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

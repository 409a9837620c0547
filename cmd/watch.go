package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helmcode/codelinter/pkg/config"
	"github.com/helmcode/codelinter/pkg/formatter"
	"github.com/helmcode/codelinter/pkg/session"
	"github.com/helmcode/codelinter/pkg/upload"
)

func NewWatchCmd() *cobra.Command {
	opts := &commonOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze paths read from standard input, one per line",
		Long: `Read paths from standard input and analyze each one as it arrives. A new path
replaces the analysis in progress; only the latest submission is reported.

Commands:
  clear        discard the current file and result
  quit, exit   stop reading

Examples:
  # Re-analyze whenever a file changes
  inotifywait -m -e close_write --format '%w%f' src/ | codelinter watch

  # Interactive use
  codelinter watch -o markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runWatch(cmd *cobra.Command, opts *commonOptions) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if cfg.Output == "human" {
		printHeader(stderr, "", cfg)
	}

	sess := session.New(ctx, newClient(cfg, stderr))
	p := newProgress(stderr)
	defer p.stop()

	unsubscribeProgress := sess.Subscribe(p.update)
	defer unsubscribeProgress()
	unsubscribeReport := sess.Subscribe(reportSettled(stdout, stderr, cfg))
	defer unsubscribeReport()

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, more := <-lines:
			if !more {
				return drain(sess)
			}
			switch cmdLine := strings.TrimSpace(line); cmdLine {
			case "":
			case "clear":
				sess.Clear()
			case "quit", "exit":
				return drain(sess)
			default:
				file, err := upload.Load(cmdLine, opts.pack)
				if err != nil {
					printError(stderr, err.Error())
					continue
				}
				sess.Start(file)
			}
		}
	}
}

// drain waits for every submission started so far, so the latest report
// is printed before the command returns.
func drain(sess *session.Session) error {
	sess.Wait()
	return nil
}

// reportSettled returns a listener printing each settled result, and a
// notice when the session is cleared.
func reportSettled(stdout, stderr io.Writer, cfg config.Config) session.Listener {
	prev := session.Idle
	return func(snap session.Snapshot) {
		state := snap.State()
		defer func() { prev = state }()

		switch state {
		case session.Settled:
			msg, ok := statusLine(snap.File.Name, snap.Result)
			if ok {
				printSuccess(stderr, msg)
			} else {
				printError(stderr, msg)
			}
			if err := formatter.DisplayResult(stdout, snap.File.Name, snap.Result, cfg.Output); err != nil {
				printError(stderr, fmt.Sprintf("failed to render report: %v", err))
			}
		case session.Idle:
			if prev != session.Idle {
				printSuccess(stderr, "Cleared")
			}
		}
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/reviewgate/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/reviewgate/internal/adapter/driving/http"
	"github.com/ericfisherdev/reviewgate/internal/application"
	"github.com/ericfisherdev/reviewgate/internal/metrics"
)

// errNotReady makes the process exit with status 2 under --exit-code.
var errNotReady = errors.New("pull request is not ready to merge")

type evaluateOptions struct {
	pr          int
	originIssue int
	noWait      bool
	comment     bool
	jsonOutput  bool
	exitCode    bool
}

func newEvaluateCmd() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate [owner/name | owner/name#N]",
		Short: "Wait for reviewers and decide whether a pull request can merge",
		Long: `Run the full pipeline once: wait for the automated reviewers, classify
their comments, file deferred items in a tracking issue, and print the merge
decision. The repository defaults to REVIEWGATE_GITHUB_REPO.`,
		Example: `  reviewgate evaluate acme/widgets --pr 42
  reviewgate evaluate acme/widgets#42 --no-wait --json
  reviewgate evaluate --pr 42 --origin-issue 17 --comment`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.pr, "pr", 0, "Pull request number")
	cmd.Flags().IntVar(&opts.originIssue, "origin-issue", 0, "Issue the pull request implements, linked from the deferred tracking issue")
	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "Evaluate the current reviewer state without waiting")
	cmd.Flags().BoolVar(&opts.comment, "comment", false, "Post the decision as a pull request comment")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the evaluation as JSON")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Exit with status 2 when the pull request is not ready to merge")

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string, opts evaluateOptions) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ref, err := resolveRef(args, opts.pr, cfg.GitHubRepo)
	if err != nil {
		return err
	}
	if opts.originIssue < 0 {
		return fmt.Errorf("--origin-issue must not be negative")
	}

	client := newGitHubClient(cfg)
	if client == nil {
		return fmt.Errorf("REVIEWGATE_GITHUB_TOKEN is required to evaluate %s", ref)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	// A private registry keeps one-shot runs from touching global state.
	recorder := metrics.NewRecorder(prometheus.NewRegistry())

	pipeline := application.NewPipeline(
		client,
		sqliteadapter.NewSignatureRepo(db),
		sqliteadapter.NewEvaluationRepo(db),
		sqliteadapter.NewTrackingRepo(db),
		recorder,
		cfg.Engine(),
	)

	slog.Info("evaluating pull request", "change_request", ref.String(), "wait", !opts.noWait)

	eval, err := pipeline.Run(ctx, ref, application.RunOptions{
		OriginIssue: opts.originIssue,
		SkipWait:    opts.noWait,
		PostComment: opts.comment,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(httphandler.NewEvaluationResponse(eval)); err != nil {
			return fmt.Errorf("encoding evaluation: %w", err)
		}
	} else {
		fmt.Fprintln(out, application.FormatPlanSummary(eval.Plan))
		fmt.Fprintln(out, application.FormatDecision(eval.Decision))
	}

	if opts.exitCode && !eval.Decision.ReadyToMerge {
		return errNotReady
	}
	return nil
}

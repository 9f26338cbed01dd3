package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/reviewgate/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/reviewgate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewgate/internal/config"
	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reviewgate",
		Short: "Review monitoring and merge-readiness decisions for pull requests",
		Long: `reviewgate waits for the automated reviewers on a pull request, classifies
their comments into a prioritized remediation plan, and decides whether the
pull request is ready to merge.

Configuration is read from REVIEWGATE_* environment variables.`,
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	root.AddCommand(newServeCmd(), newEvaluateCmd(), newSignaturesCmd())
	return root
}

// loadConfig reads the environment configuration and installs the default
// slog logger it describes. Logs go to stderr so stdout stays parseable.
func loadConfig(stderr io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(cfg, stderr))
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openDB opens the SQLite database at the configured path, applying migrations.
func openDB(ctx context.Context, cfg *config.Config) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	slog.Debug("database opened", "path", cfg.DBPath)
	return db, nil
}

func closeDB(db *sqliteadapter.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// newGitHubClient returns nil when no token is configured.
func newGitHubClient(cfg *config.Config) *githubadapter.Client {
	if !cfg.HasGitHubCredentials() {
		return nil
	}
	return githubadapter.NewClient(cfg.GitHubToken)
}

// resolveRef builds the change request reference from an optional
// "owner/name" or "owner/name#N" argument, the --pr flag, and the
// configured default repository.
func resolveRef(args []string, pr int, defaultRepo string) (model.ChangeRequestRef, error) {
	repo := defaultRepo
	if len(args) > 0 {
		repo = strings.TrimSpace(args[0])
	}

	if strings.Contains(repo, "#") {
		ref, err := model.ParseChangeRequestRef(repo)
		if err != nil {
			return model.ChangeRequestRef{}, err
		}
		if pr != 0 && pr != ref.Number {
			return model.ChangeRequestRef{}, fmt.Errorf("--pr %d conflicts with %s", pr, ref)
		}
		return ref, nil
	}

	if repo == "" {
		return model.ChangeRequestRef{}, fmt.Errorf("no repository given: pass owner/name or set REVIEWGATE_GITHUB_REPO")
	}
	if pr <= 0 {
		return model.ChangeRequestRef{}, fmt.Errorf("--pr must be a positive pull request number")
	}

	return model.ParseChangeRequestRef(fmt.Sprintf("%s#%d", repo, pr))
}

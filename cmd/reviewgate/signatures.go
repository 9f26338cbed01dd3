package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/reviewgate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

func newSignaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "signatures",
		Aliases: []string{"sig"},
		Short:   "Manage the account and marker signatures that identify reviewers",
	}

	cmd.AddCommand(newSignaturesListCmd(), newSignaturesAddCmd(), newSignaturesRemoveCmd())
	return cmd
}

func newSignaturesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reviewer signatures in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			sigs, err := sqliteadapter.NewSignatureRepo(db).ListAll(cmd.Context())
			if err != nil {
				return err
			}

			return renderSignatures(cmd.OutOrStdout(), sigs)
		},
	}
}

// newTable creates a borderless, left-aligned table for CLI listings.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

func renderSignatures(w io.Writer, sigs []model.ReviewerSignature) error {
	table := newTable(w, []string{"ID", "Reviewer", "Account", "Marker"})
	for _, sig := range sigs {
		marker := sig.Marker
		if marker == "" {
			marker = "-"
		}
		if err := table.Append([]string{strconv.FormatInt(sig.ID, 10), string(sig.Reviewer), sig.Account, marker}); err != nil {
			return fmt.Errorf("rendering signature %d: %w", sig.ID, err)
		}
	}
	return table.Render()
}

func newSignaturesAddCmd() *cobra.Command {
	var marker string

	cmd := &cobra.Command{
		Use:   "add <reviewer-a|reviewer-b> <account>",
		Short: "Add a reviewer signature",
		Example: `  reviewgate signatures add reviewer-b github-actions[bot] --marker "Deep Review"
  reviewgate signatures add reviewer-a review-robot[bot]`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := model.ReviewerSignature{
				Reviewer: model.Reviewer(args[0]),
				Account:  strings.TrimSpace(args[1]),
				Marker:   marker,
				AddedAt:  time.Now().UTC(),
			}
			if err := sig.Validate(); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			sig, err = sqliteadapter.NewSignatureRepo(db).Add(cmd.Context(), sig)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added signature %d: %s %s\n", sig.ID, sig.Reviewer, sig.Account)
			return nil
		},
	}

	cmd.Flags().StringVar(&marker, "marker", "", "Text the comment body must contain (case-insensitive)")
	return cmd
}

func newSignaturesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a reviewer signature by ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid signature id %q", args[0])
			}

			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := sqliteadapter.NewSignatureRepo(db).Remove(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed signature %d\n", id)
			return nil
		},
	}
}

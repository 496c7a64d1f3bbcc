package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gitwrap/internal/constants"
	fxmodules "gitwrap/internal/fx"
	"gitwrap/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const tokenEnv = "GITHUB_TOKEN"

var errNoToken = errors.New("a token is required (use --token or " + tokenEnv + ")")

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <username>",
		Short: "Print the public profile for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(cmd.Context(), func(ctx context.Context, profiles *service.ProfileService) error {
				stats, err := profiles.GetPublicProfile(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func newMeCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Print and store the authenticated profile for a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = os.Getenv(tokenEnv)
			}
			if token == "" {
				return errNoToken
			}
			return withProfiles(cmd.Context(), func(ctx context.Context, profiles *service.ProfileService) error {
				stats, err := profiles.GetSelfProfile(ctx, token)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "GitHub access token")

	return cmd
}

func newLeaderboardCommand() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print stored profiles ranked by power level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProfiles(cmd.Context(), func(ctx context.Context, profiles *service.ProfileService) error {
				board, err := profiles.GetLeaderboard(ctx, page, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), board)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", constants.LeaderboardDefaultPage, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", constants.LeaderboardDefaultLimit, "entries per page (max 50)")

	return cmd
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <username>",
		Short: "Print power level snapshots for a user, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(cmd.Context(), func(ctx context.Context, profiles *service.ProfileService) error {
				history, err := profiles.GetHistory(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), history)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.HistoryDefaultLimit, "number of snapshots")

	return cmd
}

// withProfiles builds the core graph, runs fn, and tears the graph down.
func withProfiles(ctx context.Context, fn func(context.Context, *service.ProfileService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var profiles *service.ProfileService
	app := fx.New(
		fxmodules.CoreModule,
		fx.NopLogger,
		// stdout carries the JSON result
		fx.Decorate(func(l zerolog.Logger) zerolog.Logger { return l.Output(os.Stderr) }),
		fx.Populate(&profiles),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, profiles)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package main provides the gitwrap command line client. It runs the same
// profile pipeline as the server against the local stats database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gitwrap",
		Short: "GitHub developer profile stats",
		Long: `gitwrap computes developer profiles from the GitHub API.

Commands:
  stats        Public profile for a user, merged with cached contributions
  me           Authenticated profile for a token's owner, stored for the leaderboard
  leaderboard  Stored profiles ranked by power level
  history      Power level snapshots for a user`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newMeCommand())
	rootCmd.AddCommand(newLeaderboardCommand())
	rootCmd.AddCommand(newHistoryCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

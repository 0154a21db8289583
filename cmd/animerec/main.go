// Package main 是 animerec 命令行入口。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/core"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if core.IsConfig(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "animerec",
		Short: "animerec - hybrid anime recommendation engine",
		Long: `animerec serves anime recommendations from offline-trained
user and anime embeddings, fusing user-based collaborative candidates
with content-based neighbours.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().String("artifacts", "", "Artifacts directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "animerec v%s (%s)\n", version, commit)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (web form + JSON API)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)

	recommendCmd := &cobra.Command{
		Use:   "recommend [userID]",
		Short: "Print hybrid recommendations for a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecommend,
	}
	recommendCmd.Flags().Int("top-n", 0, "Number of recommendations (0 = config default)")
	recommendCmd.Flags().Float64("user-weight", -1, "Weight of user-based candidates (-1 = config default)")
	recommendCmd.Flags().Float64("content-weight", -1, "Weight of content-based candidates (-1 = config default)")
	recommendCmd.Flags().Bool("scores", false, "Print fused scores")
	rootCmd.AddCommand(recommendCmd)

	similarCmd := &cobra.Command{
		Use:   "similar [animeID|name]",
		Short: "Print the anime most similar to the given one",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimilar,
	}
	similarCmd.Flags().Int("n", 10, "Number of neighbours")
	similarCmd.Flags().Bool("neg", false, "Return the least similar anime instead")
	similarCmd.Flags().Bool("user", false, "Treat the argument as a user ID and list similar users")
	rootCmd.AddCommand(similarCmd)

	return rootCmd
}

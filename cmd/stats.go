package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()
		if err := ctrl.RefreshStats(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching stats: %v\n", err)
			return
		}
		snap := ctrl.Snapshot()
		output, _ := json.MarshalIndent(snap.Stats, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Review and dismiss breach alerts",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current alerts",
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()
		if err := ctrl.RefreshAlerts(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching alerts: %v\n", err)
			return
		}
		snap := ctrl.Snapshot()
		output, _ := json.MarshalIndent(snap.Alerts, "", "  ")
		fmt.Println(string(output))
	},
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss [id]",
	Short: "Dismiss an alert by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		ctrl := newController()
		err := ctrl.DismissAlert(cmd.Context(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error dismissing alert %s: %v\n", id, err)
		} else {
			fmt.Printf("Alert %s dismissed.\n", id)
		}

		// the controller re-fetched the list either way; show what remains
		snap := ctrl.Snapshot()
		fmt.Printf("%d alert(s) remaining.\n", len(snap.Alerts))
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsDismissCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"breachwatch-cli/internal/session"

	"github.com/spf13/cobra"
)

var dashboardOutput string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Fetch and render the full dashboard",
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()
		if err := ctrl.RefreshAll(cmd.Context()); err != nil {
			// partial data is still rendered; stale sections keep prior state
			fmt.Fprintf(os.Stderr, "Warning: some sections failed to refresh: %v\n", err)
		}
		snap := ctrl.Snapshot()

		switch strings.ToLower(dashboardOutput) {
		case "text":
			printDashboard(snap)
		default:
			view := struct {
				Stats   interface{} `json:"stats"`
				Alerts  interface{} `json:"alerts"`
				Domains interface{} `json:"domains"`
			}{snap.Stats, snap.Alerts, snap.Domains}
			output, _ := json.MarshalIndent(view, "", "  ")
			fmt.Println(string(output))
		}
	},
}

func printDashboard(snap session.Snapshot) {
	if snap.Stats != nil {
		fmt.Printf("System status: %s\n", snap.Stats.SystemStatus)
		fmt.Printf("Breaches: %d  Monitored domains: %d  Active alerts: %d\n",
			snap.Stats.TotalBreaches, snap.Stats.MonitoredDomains, snap.Stats.ActiveAlerts)
	} else {
		fmt.Println("Stats unavailable.")
	}

	fmt.Printf("\nAlerts (%d):\n", len(snap.Alerts))
	for _, a := range snap.Alerts {
		fmt.Printf("- [%s] %s: %s (%s)\n", a.Severity, a.Domain, a.Message, a.ID)
	}

	fmt.Printf("\nMonitored domains (%d):\n", len(snap.Domains))
	for _, d := range snap.Domains {
		fmt.Printf("- %s (since %s)\n", d.Domain, d.CreatedAt)
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashboardOutput, "output", "o", "text", "Output format: json, text")
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"breachwatch-cli/internal/api"

	"github.com/spf13/cobra"
)

var scanWait bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Trigger a comprehensive scan of all monitored domains",
	Long: `Triggers a backend sweep of every monitored domain against current breach
data sources. The backend job is asynchronous and gives no completion signal;
with --wait the CLI pauses for the configured settle delay and then re-fetches
stats and alerts so their post-scan values can be shown. With --wait=false the
scan is fire-and-forget and nothing is re-fetched.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()

		fmt.Println("Starting comprehensive scan...")
		var summary *api.ScanSummary
		var err error
		if scanWait {
			summary, err = ctrl.RunComprehensiveScan(cmd.Context())
		} else {
			summary, err = ctrl.TriggerComprehensiveScan(cmd.Context())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error triggering scan: %v\n", err)
			return
		}

		if summary != nil {
			output, _ := json.MarshalIndent(summary, "", "  ")
			fmt.Println(string(output))
		} else {
			fmt.Println("Scan triggered; the backend did not report a summary.")
		}

		if scanWait {
			snap := ctrl.Snapshot()
			if snap.Stats != nil {
				fmt.Printf("Post-scan: %d breach(es) known, %d active alert(s).\n",
					snap.Stats.TotalBreaches, snap.Stats.ActiveAlerts)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanWait, "wait", true, "Wait for the settle delay and show refreshed stats")
}

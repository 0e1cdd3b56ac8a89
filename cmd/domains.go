package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Manage monitored domains",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var domainsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored domains",
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()
		if err := ctrl.RefreshMonitoredDomains(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching monitored domains: %v\n", err)
			return
		}
		snap := ctrl.Snapshot()
		output, _ := json.MarshalIndent(snap.Domains, "", "  ")
		fmt.Println(string(output))
	},
}

var domainsMonitorCmd = &cobra.Command{
	Use:   "monitor [domain]",
	Short: "Start monitoring a domain for breaches",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		domain := args[0]
		ctrl := newController()
		if err := ctrl.AddDomainMonitor(cmd.Context(), domain); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding domain monitor: %v\n", err)
			return
		}

		snap := ctrl.Snapshot()
		fmt.Printf("Monitoring activated for %s.\n", domain)
		if snap.Stats != nil {
			fmt.Printf("Now watching %d domain(s).\n", snap.Stats.MonitoredDomains)
		} else {
			fmt.Printf("Now watching %d domain(s).\n", len(snap.Domains))
		}
	},
}

func init() {
	rootCmd.AddCommand(domainsCmd)
	domainsCmd.AddCommand(domainsListCmd)
	domainsCmd.AddCommand(domainsMonitorCmd)
}

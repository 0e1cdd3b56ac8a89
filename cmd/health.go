package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"breachwatch-cli/internal/api"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	Run: func(cmd *cobra.Command, args []string) {
		client := api.NewClient()
		info, err := client.Health(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking health: %v\n", err)
			return
		}
		output, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

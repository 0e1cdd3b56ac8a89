package cmd

import (
	"fmt"
	"os"

	"breachwatch-cli/internal/api"
	"breachwatch-cli/internal/config"
	"breachwatch-cli/internal/logging"
	"breachwatch-cli/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "breachwatch",
	Short: "BreachWatch CLI - A command line client for the breach monitor API",
	Long: `BreachWatch CLI lets you check breach-monitoring statistics, search for
compromised domains and emails, manage monitored domains, review alerts, and
trigger comprehensive scans directly from your terminal.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(config.InitConfig)
}

// newController wires a session controller against the configured backend.
// Logging falls back to a no-op logger rather than blocking the command.
func newController() *session.Controller {
	logger, err := logging.NewLogger(config.GetLogDir())
	if err != nil {
		logger = zap.NewNop()
	}
	return session.New(api.NewClient(), logger, config.GetScanSettleDelay())
}

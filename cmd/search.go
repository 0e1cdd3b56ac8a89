package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"breachwatch-cli/internal/api"
	"breachwatch-cli/internal/session"

	"github.com/spf13/cobra"
)

var (
	searchMode    string
	searchOutput  string
	searchOutFile string
	searchSilent  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search breaches by domain or email",
	Long: `Search the breach database for a compromised domain or email address.
Examples:
  breachwatch search evil.com
  breachwatch search user@evil.com --mode email`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]

		mode := session.ModeDomain
		switch strings.ToLower(searchMode) {
		case "domain", "":
		case "email":
			mode = session.ModeEmail
		default:
			fmt.Fprintf(os.Stderr, "Unknown mode %q, expected 'domain' or 'email'\n", searchMode)
			return
		}

		ctrl := newController()
		result, err := ctrl.Search(cmd.Context(), query, mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
			return
		}
		if result == nil {
			// blank query is a no-op
			return
		}
		if result.Failed() {
			fmt.Fprintf(os.Stderr, "Search failed: %s\n", result.Error)
			return
		}

		if searchOutFile != "" {
			saveResult(result, resolvePath(searchOutFile))
		}
		if searchOutFile == "" && !searchSilent {
			printResult(result, searchOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchMode, "mode", "domain", "Search mode: domain or email")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "json", "Output format: json, text")
	searchCmd.Flags().StringVarP(&searchOutFile, "file", "f", "", "Output file path (default saved to 'result/' directory)")
	searchCmd.Flags().BoolVar(&searchSilent, "silent", false, "Suppress console output")
}

func resolvePath(path string) string {
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "result"+string(os.PathSeparator)) && !strings.HasPrefix(path, "result/") {
		return filepath.Join("result", path)
	}
	return path
}

func saveResult(result *api.SearchResult, outFile string) {
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating result directory: %v\n", err)
		return
	}
	file, err := os.Create(outFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.Encode(result)

	absPath, _ := filepath.Abs(outFile)
	if !searchSilent {
		fmt.Fprintf(os.Stderr, "Saved output to %s\n", absPath)
	} else {
		fmt.Println(absPath)
	}
}

func printResult(result *api.SearchResult, format string) {
	switch strings.ToLower(format) {
	case "text":
		fmt.Printf("%d breach(es) found for %s\n", result.Count, result.Query)
		for _, b := range result.Breaches {
			verified := "unverified"
			if b.Verified {
				verified = "verified"
			}
			fmt.Printf("- %s (%s, %s, %s)\n", b.Name, b.Domain, b.BreachDate, verified)
			if len(b.DataClasses) > 0 {
				fmt.Printf("  compromised: %s\n", strings.Join(b.DataClasses, ", "))
			}
		}
	default:
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	}
}

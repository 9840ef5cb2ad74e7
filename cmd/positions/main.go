// Positions edits the positions (line items) of one document on a positions
// backend.
//
// It provides a terminal grid editor, scriptable row commands, lookups of
// the backend's reference data, discovery of backends on the local network
// and management of connection profiles.
//
// Usage:
//
//	positions [command] [flags]
//
// Running without arguments opens the grid editor for the configured
// document. See 'positions --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	profileName  string
	baseURL      string
	username     string
	formID       string
	contextURL   string
	locale       string
	strict       bool
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "positions",
	Short: "Document Positions Editor",
	Long: `Edit the positions of a document on a positions backend.

Provides a terminal grid editor with lookups for products, additional codes,
pallets and storage locations, plus direct row commands for scripting.

If no command is specified, the grid editor opens for the configured document.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	RunE: runGrid,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&profileName, "profile", "", "Connection profile (default: current profile)")
	pf.StringVar(&baseURL, "url", "", "Backend base URL (overrides the profile)")
	pf.StringVar(&username, "user", "", "Backend user name (overrides the profile)")
	pf.StringVar(&formID, "form", "", "Document id whose positions are edited")
	pf.StringVar(&contextURL, "context-url", "", "Page URL carrying a context={\"form.id\":..} parameter")
	pf.StringVar(&locale, "locale", "", "Language of headers and notices (en, pl)")
	pf.BoolVar(&strict, "strict", false, "Reject non-numeric or negative quantities before submitting")
	pf.StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("positions %s\n", version.Full())
	},
}

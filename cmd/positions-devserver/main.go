// Positions-devserver is an in-memory positions backend for development.
//
// It serves every route the positions client uses (grid configuration,
// vocabularies, row CRUD, lookups, product units), publishes row changes on
// a websocket change feed and can advertise itself over mDNS.
//
// Usage:
//
//	positions-devserver serve [flags]
//
// See 'positions-devserver serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/positions/internal/devserver"
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

var rootCmd = &cobra.Command{
	Use:   "positions-devserver",
	Short: "Positions Development Backend",
	Long: `An in-memory positions backend for developing and testing the client.

Data lives in memory and starts with a sample document (id 1) holding two
rows. Every change is published on the /ws/positions change feed.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host        string
	port        int
	contextRoot string
	username    string
	password    string
	certPath    string
	keyPath     string
	advertise   bool
	instance    string
	hideStorage bool
	empty       bool
	logLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development backend",
	Long: `Start the development backend.

Serves plain HTTP unless --cert and --key are given. With --user every
route requires HTTP Basic Auth. With --advertise the backend announces
itself as _positions._tcp so 'positions discover' can find it.`,
	Example: `  # Start on port 8080 with sample data
  positions-devserver serve

  # Mount under a context root and require a login
  positions-devserver serve --context-root /mes --user clerk --password secret

  # Serve TLS and announce over mDNS
  positions-devserver serve --cert cert.pem --key key.pem --advertise

  # Start empty, with the storage location column hidden
  positions-devserver serve --empty --hide-storage-location --log-level debug`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	f.IntVar(&port, "port", 8080, "Listen port")
	f.StringVar(&contextRoot, "context-root", "", "Prefix for every route, e.g. /mes")
	f.StringVar(&username, "user", "", "Require HTTP Basic Auth with this user")
	f.StringVar(&password, "password", "", "Password for --user (default: POSITIONS_DEVSERVER_PASSWORD)")
	f.StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	f.StringVar(&keyPath, "key", "", "Path to TLS private key file")
	f.BoolVar(&advertise, "advertise", false, "Announce the backend over mDNS")
	f.StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
	f.BoolVar(&hideStorage, "hide-storage-location", false, "Ask clients to hide the storage location column")
	f.BoolVar(&empty, "empty", false, "Start without sample rows")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	if (certPath != "") != (keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	if username != "" && password == "" {
		password = os.Getenv("POSITIONS_DEVSERVER_PASSWORD")
	}
	if instance == "" {
		name, err := os.Hostname()
		if err != nil {
			name = "positions"
		}
		instance = name
	}

	store := devserver.NewSampleStore()
	if empty {
		store = devserver.NewStore()
	}
	store.ShowStorageLocation = !hideStorage

	config := &devserver.Config{
		Host:        host,
		Port:        port,
		ContextRoot: contextRoot,
		Username:    username,
		Password:    password,
		CertPath:    certPath,
		KeyPath:     keyPath,
		Advertise:   advertise,
		Instance:    instance,
	}

	srv, err := devserver.New(config, store)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(cmd.Context())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("positions-devserver %s\n", version.Full())
	},
}

// Package logging provides structured logging for the positions client, CLI and
// development backend.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used throughout the module: backend requests, grid configuration
// bootstrap steps, lookup controller events and change feed traffic.
//
// # Log Levels
//
//   - Debug: request/response pairs, lookup generations, change events
//   - Info: bootstrap progress, served HTTP requests, discovery results
//   - Warn: failed requests, failed bootstrap steps, dropped change events
//   - Error: startup failures
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// With an empty level the POSITIONS_LOG_LEVEL environment variable is consulted;
// if that is empty too, the logger is a no-op so interactive commands stay quiet.
// Output goes to stderr so it never interleaves with command output on stdout.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Until Initialize or SetLogger is
// called the logger is a no-op.
package logging

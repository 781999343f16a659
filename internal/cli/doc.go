// Package cli implements the sentinel command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to workflow functions for the actual work. Commands never hold
// client state themselves: SetupWorkflow builds a session.Session and the
// command drives it from one loop.
//
// # Command Structure
//
// The root command is "sentinel"; without a subcommand it opens the dashboard.
//
//	sentinel                    - Interactive dashboard (same as "dashboard")
//	sentinel run [server...]    - Headless run: submit, stream, print report
//	sentinel status             - Latest report for every server
//	sentinel servers            - Server directory
//	sentinel version            - Build information
//	sentinel completion <shell> - Shell completion script
//
// # Workflow System
//
// SetupWorkflow handles the phases shared by every command:
//
//  1. Load config (file, defaults, SENTINEL_* environment) and apply --url
//  2. Validate it
//  3. Build the pull client and, unless NoChannel is set, the push channel
//  4. Build the session over both
//
// The push channel is not started by SetupWorkflow. The dashboard and run
// commands start it in a goroutine tied to a context they cancel on exit.
//
// # Flag Handling
//
// Global flags (--config, --url, --no-color, --debug) are defined on the root
// command. --json on status, servers and run switches the package into
// machine mode, where errors are written as a JSON envelope on stdout.
package cli

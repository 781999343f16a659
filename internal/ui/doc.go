// Package ui provides the plain terminal output used by sentinel's headless
// commands (run, status, servers): colors, status symbols, a phase display
// for run progress, report tables, sparklines and the interactive server
// picker. The full-screen dashboard lives in internal/dashboard and reuses
// the colors and formatters from here.
//
// Use ConfigureColors at startup to honor --no-color and NO_COLOR.
package ui

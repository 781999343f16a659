package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Step completed successfully
	SymbolFail     = "✗" // Step failed
	SymbolPending  = "○" // Not yet started / no data
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Done / online
	SymbolSkipped  = "⊘" // Skipped
)

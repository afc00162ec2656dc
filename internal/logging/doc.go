// Package logging configures slog output for the daemon and CLI, providing a
// console handler for terminals, a JSON handler for log files, typed attribute
// helpers, and context-derived field extraction.
package logging

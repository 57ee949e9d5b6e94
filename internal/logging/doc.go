// Package logging configures the process-wide slog logger for sitesearch.
//
// Logs go to stderr as JSON, or as text when stderr is a terminal. With
// --debug or a configured log file, a size-rotated copy is also written to
// disk (by default ~/.sitesearch/logs/sitesearch.log).
package logging

// Package logging provides shared slog attribute helpers so log lines use
// consistent key names across the codebase, plus sanitisation for values
// that may leak endpoint addresses.
package logging

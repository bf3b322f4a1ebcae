// Package logging builds the slog loggers used across subforge and
// provides small attribute helpers so call sites stay terse.
package logging

// Package logger configures the process-wide JSON slog logger and carries
// request-scoped loggers and trace IDs through context.
package logger

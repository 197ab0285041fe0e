// Package logger configures the application's structured logging and carries
// request-scoped loggers through context.
package logger

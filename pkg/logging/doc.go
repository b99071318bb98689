// Package logging provides structured logging configuration for faque.
//
// This package wraps log/slog to provide consistent logging across all faque
// components. It supports configurable log levels and three output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatPretty,
//	})
//
//	logger.Info("server started", "addr", ":8080")
//	logger.Error("failed to save routes", slogx.Error(err))
//
// # Output Formats
//
//   - Text: slog key=value lines
//   - JSON: structured format for log aggregation systems
//   - Pretty: colorized human-readable lines for local development
//
// Every handler is wrapped in a middleware chain that attaches a stack trace to
// error records and trims oversized attribute values.
//
// # Integration
//
// Components accept a *slog.Logger through an option or setter.
// If no logger is provided they use Nop.
package logging

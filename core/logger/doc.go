// Package logger provides structured logging utilities built on Go's standard
// slog package: a small option-based factory and a set of attribute helpers
// with consistent key names.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("sessionctl"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("Session restored",
//		logger.Component("session"),
//		logger.State("authenticated"),
//	)
//
// # Environment Configurations
//
//	// Development: text format, debug level, stderr
//	logger.New(logger.WithDevelopment("app"))
//
//	// Production: JSON format, info level, stderr
//	logger.New(logger.WithProduction("app"))
//
// Libraries in this module default to NewNop and accept a *slog.Logger option,
// so nothing is written unless the application opts in.
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for empty inputs (nil error, empty ID),
// which slog drops, so they can be used without nil checks:
//
//	log.Warn("Remote logout failed",
//		logger.Component("session"),
//		logger.Action("logout"),
//		logger.Error(err),
//	)
//
// Never pass credentials or tokens to a logger.
package logger

// Package logging configures the structured loggers used by reqdiff.
//
// It wraps log/slog. The matching core is pure and never logs; stub loading,
// verification and the CLI take a *slog.Logger and fall back to Nop when
// none is given.
//
//	logger := logging.New(logging.FromEnv())
//	logger.Info("stubs loaded", "count", 12)
//
// Levels and formats can be set from the environment through
// REQDIFF_LOG_LEVEL (debug, info, warn, error) and REQDIFF_LOG_FORMAT
// (text, json).
package logging

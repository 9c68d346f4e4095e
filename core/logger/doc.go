// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for the CLI (console encoding by
// default) and for the HTTP server (json encoding in production).
//
// # Correlation
//
// Every reconciliation run is tagged with a run id (WithRunID) so that all
// log lines of one diff or sync pass can be correlated. Requests served by
// the HTTP API carry the ray id assigned by the rayid middleware (WithRayID).
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log = logger.WithRunID(log, runID)
//	log.Info("Classified changes", zap.Int("count", n))
package logger

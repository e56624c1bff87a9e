// Package logger provides structured logging for capdag using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers carrying structured fields. The engine tags every
// entry of a run with the run id stored in the context by ContextWithRunID.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("engine")
//	log.Info("run completed", logger.Fields("nodes", 3))
package logger

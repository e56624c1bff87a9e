// Package errors provides the structured error type shared by the capdag
// engine, its capabilities and the collaborators behind them.
//
// Every failure the engine reports is an *AppError carrying a machine-readable
// ErrorCode, so callers can tell a malformed graph from a rejected initial
// input or a failing capability with IsCode instead of string matching.
package errors

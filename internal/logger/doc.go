// Package logger wraps zap for the autoclicker daemon and CLI.
//
// It keeps one global sugared logger with a console encoder, lets callers
// attach a named or key-value scoped logger to a context, and exposes
// context-first helpers (InfoKV, WarnKV, ...) so that emitters, the recorder
// and the player never hold a logger of their own.
package logger

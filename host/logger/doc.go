// Package logger wraps zap for the host tools:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration.
//
// Services take a context and pull the logger from it, so fields attached
// by a caller show up in everything logged below it.
package logger

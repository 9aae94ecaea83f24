// Package notify is the fire-and-forget user notification contract.
// Delivery is best effort; the engine never fails a fulfillment because
// a notification could not be shown.
package notify

import (
	"go.uber.org/zap"
)

type Sink interface {
	Success(title, message string)
	Warning(title, message string)
	Error(title, message string)
}

// LogSink writes notifications to the service log.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Success(title, message string) {
	s.Log.Info("notification", zap.String("level", "success"), zap.String("title", title), zap.String("message", message))
}

func (s LogSink) Warning(title, message string) {
	s.Log.Warn("notification", zap.String("level", "warning"), zap.String("title", title), zap.String("message", message))
}

func (s LogSink) Error(title, message string) {
	s.Log.Warn("notification", zap.String("level", "error"), zap.String("title", title), zap.String("message", message))
}

// Noop drops everything. Default for tests.
type Noop struct{}

func (Noop) Success(title, message string) {}
func (Noop) Warning(title, message string) {}
func (Noop) Error(title, message string)   {}

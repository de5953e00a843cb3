package alert

import (
	"go.uber.org/zap"

	"github.com/arklim/riskdash-client/internal/core/port"
)

// LoggingAlerter records transient alerts through structured logging instead
// of a UI surface. Headless deployments and tests use it as the alert sink.
type LoggingAlerter struct {
	logger *zap.Logger
}

// NewLoggingAlerter constructs an alerter backed by structured logging.
func NewLoggingAlerter(logger *zap.Logger) port.Alerter {
	if logger == nil {
		return port.NopAlerter{}
	}
	return &LoggingAlerter{logger: logger}
}

// Urgent records a blocking-style alert for a high priority notification.
func (a *LoggingAlerter) Urgent(title, message string) {
	if a == nil || a.logger == nil {
		return
	}
	a.logger.Error("alert", zap.String("severity", "urgent"), zap.String("title", title), zap.String("message", message))
}

// Notice records a lesser alert for a medium priority notification.
func (a *LoggingAlerter) Notice(title, message string) {
	if a == nil || a.logger == nil {
		return
	}
	a.logger.Warn("alert", zap.String("severity", "notice"), zap.String("title", title), zap.String("message", message))
}

// Warn records a transient failure notice for a user-initiated action.
func (a *LoggingAlerter) Warn(title, message string) {
	if a == nil || a.logger == nil {
		return
	}
	a.logger.Warn("alert", zap.String("severity", "warning"), zap.String("title", title), zap.String("message", message))
}

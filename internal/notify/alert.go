package notify

import (
	"log/slog"
	"time"
)

// AlertStyle selects the visual treatment of an alert.
type AlertStyle string

const (
	AlertInfo    AlertStyle = "info"
	AlertSuccess AlertStyle = "success"
	AlertWarning AlertStyle = "warning"
)

// Alert is one user-facing notification rendering. Visibility is a hint
// for how long the alert should stay on screen.
type Alert struct {
	Title      string
	Message    string
	Style      AlertStyle
	Visibility time.Duration
}

// AlertSink receives alerts for rendering. Implementations must be safe
// for concurrent use; the channel dispatches from its read loop.
type AlertSink interface {
	Show(alert Alert)
}

// LogSink renders alerts as structured log lines. Useful as a default
// sink and in headless deployments.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Show(alert Alert) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("alert",
		"title", alert.Title,
		"message", alert.Message,
		"style", string(alert.Style),
		"visibility", alert.Visibility,
	)
}

package engine

import "log/slog"

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	lo.logger.Debug("formula_lifecycle",
		"event", event.Type,
		"formula_id", event.FormulaID,
		"batch_id", event.BatchID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}

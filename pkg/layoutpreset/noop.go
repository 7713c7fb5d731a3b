package layoutpreset

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// PresetInserted does nothing and returns nil
func (n *NoopEventSink) PresetInserted(ctx context.Context, page *ContentNode, preset *ContentNode, result *InsertResult) error {
	return nil
}

// RenderingInserted does nothing and returns nil
func (n *NoopEventSink) RenderingInserted(ctx context.Context, page *ContentNode, item *ContentNode, result *InsertResult) error {
	return nil
}

// LoggingEventSink writes insert events to a structured logger.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink that logs at info level.
// A nil logger falls back to slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// PresetInserted logs the copied preset
func (l *LoggingEventSink) PresetInserted(ctx context.Context, page *ContentNode, preset *ContentNode, result *InsertResult) error {
	l.logger.InfoContext(ctx, "preset inserted",
		"page_id", page.ID,
		"preset_id", preset.ID,
		"device_id", result.DeviceID,
		"slot_path", result.Rendering.SlotPath,
		"copied", result.Copied)
	return nil
}

// RenderingInserted logs the single inserted rendering
func (l *LoggingEventSink) RenderingInserted(ctx context.Context, page *ContentNode, item *ContentNode, result *InsertResult) error {
	l.logger.InfoContext(ctx, "rendering inserted",
		"page_id", page.ID,
		"item_id", item.ID,
		"device_id", result.DeviceID,
		"slot_path", result.Rendering.SlotPath)
	return nil
}

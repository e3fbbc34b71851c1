package engine

import "time"

// EventType represents different lifecycle phases of a formula run
type EventType string

const (
	EventLexStart      EventType = "lex_start"
	EventLexEnd        EventType = "lex_end"
	EventValidateStart EventType = "validate_start"
	EventValidateEnd   EventType = "validate_end"
	EventConvertStart  EventType = "convert_start"
	EventConvertEnd    EventType = "convert_end"
	EventProjectStart  EventType = "project_start"
	EventProjectEnd    EventType = "project_end"
)

// Event represents a lifecycle event
type Event struct {
	Type      EventType   // Type of event
	FormulaID string      // Formula ID for tracing
	BatchID   string      // Projection batch ID (project events only)
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (e.g., formula text, postfix, row counts)
}

// Observer interface for event subscribers
// Observers receive events at major phases
type Observer interface {
	OnEvent(event Event)
}

package audit

import "time"

// EventLevel represents the severity level of an audit event.
type EventLevel string

const (
	EventLevelInfo  EventLevel = "INFO"
	EventLevelWarn  EventLevel = "WARN"
	EventLevelError EventLevel = "ERROR"
)

// EventType represents the type of audit event.
type EventType string

const (
	EventGroupRequested    EventType = "GROUP_REQUESTED"
	EventGroupCompleted    EventType = "GROUP_COMPLETED"
	EventMemberJoinFailed  EventType = "MEMBER_JOIN_FAILED"
	EventMemberUnresolved  EventType = "MEMBER_UNRESOLVED"
	EventPlaybackStarted   EventType = "PLAYBACK_STARTED"
	EventPlaybackFailed    EventType = "PLAYBACK_FAILED"
	EventVacuumCommand     EventType = "VACUUM_COMMAND"
	EventTokenRefreshed    EventType = "TOKEN_REFRESHED"
	EventTokenRefreshError EventType = "TOKEN_REFRESH_ERROR"
	EventSystemStartup     EventType = "SYSTEM_STARTUP"
)

// AuditEvent represents a single audit event.
type AuditEvent struct {
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Level     EventLevel     `json:"level"`
	RequestID *string        `json:"request_id,omitempty"`
	Room      *string        `json:"room,omitempty"`
	DSN       *string        `json:"dsn,omitempty"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload"`
}

// WriteEventInput contains the fields for creating a new audit event.
type WriteEventInput struct {
	Type      EventType      `json:"type"`
	Level     EventLevel     `json:"level,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Room      string         `json:"room,omitempty"`
	DSN       string         `json:"dsn,omitempty"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// EventQueryFilters contains optional filters for querying events.
type EventQueryFilters struct {
	Type      *string     `json:"type,omitempty"`
	Level     *EventLevel `json:"level,omitempty"`
	Room      *string     `json:"room,omitempty"`
	DSN       *string     `json:"dsn,omitempty"`
	StartDate *string     `json:"start_date,omitempty"` // ISO 8601 format
	EndDate   *string     `json:"end_date,omitempty"`   // ISO 8601 format
	Limit     int         `json:"limit,omitempty"`
	Offset    int         `json:"offset,omitempty"`
}

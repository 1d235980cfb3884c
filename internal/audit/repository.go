package audit

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sql.DB
	Writer() *sql.DB
}

// Repository handles database operations for audit events.
// Uses separate reader/writer connections for optimal SQLite concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new audit Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

// InsertEvent writes a new audit event to the database.
// Generates a UUID, captures the timestamp, defaults level to INFO.
func (r *Repository) InsertEvent(input WriteEventInput) (*AuditEvent, error) {
	eventID := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	level := input.Level
	if level == "" {
		level = EventLevelInfo
	}

	payload := input.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	_, err = r.writer.Exec(`
		INSERT INTO audit_events (event_id, timestamp, type, level, request_id, room, dsn, message, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, eventID, timestamp, string(input.Type), string(level), nullable(input.RequestID), nullable(input.Room), nullable(input.DSN), input.Message, string(payloadJSON))
	if err != nil {
		return nil, err
	}

	return r.GetEvent(eventID)
}

// nullable maps an empty string to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetEvent retrieves a single event by ID. Returns nil, nil if not found.
func (r *Repository) GetEvent(eventID string) (*AuditEvent, error) {
	row := r.reader.QueryRow(`
		SELECT event_id, timestamp, type, level, request_id, room, dsn, message, payload
		FROM audit_events
		WHERE event_id = ?
	`, eventID)

	event, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// QueryEvents retrieves events matching filters with pagination.
// Orders by timestamp DESC (newest first). Returns events, total count, error.
func (r *Repository) QueryEvents(filters EventQueryFilters) ([]AuditEvent, int, error) {
	whereClause, args := buildWhereClause(filters)

	var total int
	if err := r.reader.QueryRow("SELECT COUNT(*) FROM audit_events "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT event_id, timestamp, type, level, request_id, room, dsn, message, payload
		FROM audit_events
		` + whereClause + `
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.reader.Query(query, append(args, limit, filters.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []AuditEvent{}
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// PruneOldEvents deletes events older than retentionDays.
// Returns number of rows deleted.
func (r *Repository) PruneOldEvents(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339)

	result, err := r.writer.Exec(`
		DELETE FROM audit_events
		WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func buildWhereClause(filters EventQueryFilters) (string, []any) {
	conditions := []string{}
	args := []any{}

	if filters.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, *filters.Type)
	}
	if filters.Level != nil {
		conditions = append(conditions, "level = ?")
		args = append(args, string(*filters.Level))
	}
	if filters.Room != nil {
		conditions = append(conditions, "room = ?")
		args = append(args, *filters.Room)
	}
	if filters.DSN != nil {
		conditions = append(conditions, "dsn = ?")
		args = append(args, *filters.DSN)
	}
	if filters.StartDate != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filters.EndDate)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

func scanEvent(scan func(dest ...any) error) (*AuditEvent, error) {
	var event AuditEvent
	var timestamp string
	var level string
	var requestID, room, dsn sql.NullString
	var payloadJSON string

	err := scan(
		&event.EventID,
		&timestamp,
		&event.Type,
		&level,
		&requestID,
		&room,
		&dsn,
		&event.Message,
		&payloadJSON,
	)
	if err != nil {
		return nil, err
	}

	event.Level = EventLevel(level)
	if parsed, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		event.Timestamp = parsed
	}
	if requestID.Valid {
		event.RequestID = &requestID.String
	}
	if room.Valid {
		event.Room = &room.String
	}
	if dsn.Valid {
		event.DSN = &dsn.String
	}
	if payloadJSON != "" {
		_ = json.Unmarshal([]byte(payloadJSON), &event.Payload)
	}
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}

	return &event, nil
}

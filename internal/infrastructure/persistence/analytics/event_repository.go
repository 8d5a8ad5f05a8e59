// Package analytics provides the concrete SQL-based implementations
// for analytics event persistence.
//
// PURPOSE: mirror the in-memory event log to a bounded durable buffer.
// The buffer keeps the most recent EVENT_BUFFER_CAP events, evicting
// oldest-first, so storage stays bounded no matter how long the engine
// runs. The in-memory log remains authoritative for the current session.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/persistence/database"
	"github.com/risingpath/pulse-go/pkg/config"
)

const timeLayout = "2006-01-02 15:04:05.000000000"

// SQLEventRepository handles event persistence to the database.
type SQLEventRepository struct {
	db     *database.DB
	cap    int
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, cap int, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		cap:    cap,
		logger: logger,
	}
}

// StoreEvent saves an event to the durable buffer and trims it to the cap.
func (r *SQLEventRepository) StoreEvent(event *analytics.Event) error {
	const query = `
		INSERT INTO events (id, user_id, session_id, event_type, category, action, label, value, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
	}

	var userID any
	if event.UserID != "" {
		userID = event.UserID
	}
	var value any
	if event.Value != nil {
		value = *event.Value
	}

	start := time.Now()
	r.logger.Database().Debug("Executing event insert",
		"eventId", event.ID,
		"type", event.Type,
		"sessionId", event.SessionID)

	_, err := r.db.Exec(
		query,
		event.ID,
		userID,
		event.SessionID,
		string(event.Type),
		string(event.Category),
		event.Action,
		event.Label,
		value,
		string(metadataJSON),
		event.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		r.logger.Database().Error("Event insert failed",
			"error", err.Error(),
			"eventId", event.ID,
			"type", event.Type)
		return fmt.Errorf("failed to store event: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}

	return r.Compact()
}

// Compact evicts the oldest rows beyond the buffer cap.
func (r *SQLEventRepository) Compact() error {
	const query = `
		DELETE FROM events WHERE id NOT IN (
			SELECT id FROM events ORDER BY created_at DESC, id DESC LIMIT ?
		)`

	start := time.Now()
	result, err := r.db.Exec(query, r.cap)
	if err != nil {
		r.logger.Database().Error("Event buffer compaction failed", "error", err.Error())
		return fmt.Errorf("failed to compact event buffer: %w", err)
	}

	if evicted, err := result.RowsAffected(); err == nil && evicted > 0 {
		r.logger.Database().Debug("Event buffer compacted", "evicted", evicted, "cap", r.cap)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// LoadEvents returns the persisted buffer in original insertion order.
func (r *SQLEventRepository) LoadEvents() ([]*analytics.Event, error) {
	const query = `
		SELECT id, user_id, session_id, event_type, category, action, label, value, metadata, created_at
		FROM events
		ORDER BY created_at, id`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query events", "error", err.Error())
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*analytics.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan event row", "error", err.Error())
			continue
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}

	r.logger.Database().Info("Loaded persisted events", "count", len(events), "duration", duration)
	return events, nil
}

// CountEvents returns the current persisted buffer length.
func (r *SQLEventRepository) CountEvents() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func scanEvent(rows *sql.Rows) (*analytics.Event, error) {
	var event analytics.Event
	var userID sql.NullString
	var action, label sql.NullString
	var value sql.NullFloat64
	var metadataJSON sql.NullString
	var createdAt string
	var eventType, category string

	err := rows.Scan(
		&event.ID,
		&userID,
		&event.SessionID,
		&eventType,
		&category,
		&action,
		&label,
		&value,
		&metadataJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	event.Type = analytics.EventType(eventType)
	event.Category = analytics.Category(category)
	event.UserID = userID.String
	event.Action = action.String
	event.Label = label.String
	if value.Valid {
		v := value.Float64
		event.Value = &v
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode event metadata: %w", err)
		}
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
	}
	event.Timestamp = ts.UTC()

	return &event, nil
}

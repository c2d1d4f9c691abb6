package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/repositories"
)

// AuditSink persists audit events in the eventos_auditoria table. It
// implements repositories.AuditSink on top of the shared connection pool.
type AuditSink struct {
	db     *DB
	logger *zap.Logger
}

var _ repositories.AuditSink = (*AuditSink)(nil)

// NewAuditSink creates a database-backed audit sink.
func NewAuditSink(db *DB, logger *zap.Logger) *AuditSink {
	return &AuditSink{
		db:     db,
		logger: logger,
	}
}

// Write inserts one audit event. Input and output payloads are stored as
// JSONB; nil maps insert as empty objects.
func (s *AuditSink) Write(ctx context.Context, event *models.AuditEvent) error {
	query := `
		INSERT INTO eventos_auditoria (
			id, sessao_id, usuario_id, evento_tipo, nivel,
			dados_entrada, dados_saida, tempo_execucao_ms,
			ip_origem, user_agent, componente, timestamp
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	inputs, err := encodePayload(event.Inputs)
	if err != nil {
		return fmt.Errorf("encoding input payload: %w", err)
	}
	outputs, err := encodePayload(event.Outputs)
	if err != nil {
		return fmt.Errorf("encoding output payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.SessionID,
		event.ActorID,
		event.Type,
		string(event.Severity),
		inputs,
		outputs,
		event.ElapsedMs,
		event.SourceIP,
		event.UserAgent,
		event.Component,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	s.logger.Debug("audit event inserted",
		zap.String("id", event.ID.String()),
		zap.String("evento", event.Type))
	return nil
}

// GetBySessionID retrieves the events of one session, newest first.
func (s *AuditSink) GetBySessionID(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, sessao_id, usuario_id, evento_tipo, nivel,
		       dados_entrada, dados_saida, tempo_execucao_ms,
		       ip_origem, user_agent, componente, timestamp
		FROM eventos_auditoria
		WHERE sessao_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	return s.queryEvents(ctx, query, sessionID, limit, offset)
}

// GetByType retrieves events of one type within a date range, newest first.
func (s *AuditSink) GetByType(ctx context.Context, eventType string, start, end time.Time, limit, offset int) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, sessao_id, usuario_id, evento_tipo, nivel,
		       dados_entrada, dados_saida, tempo_execucao_ms,
		       ip_origem, user_agent, componente, timestamp
		FROM eventos_auditoria
		WHERE evento_tipo = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
		LIMIT $4 OFFSET $5
	`

	return s.queryEvents(ctx, query, eventType, start, end, limit, offset)
}

// Close releases the underlying pool.
func (s *AuditSink) Close() error {
	return s.db.Close()
}

func (s *AuditSink) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*models.AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit event rows: %w", err)
	}

	return events, nil
}

func scanEvent(rows *sql.Rows) (*models.AuditEvent, error) {
	event := &models.AuditEvent{}
	var severity string
	var inputs, outputs []byte

	err := rows.Scan(
		&event.ID,
		&event.SessionID,
		&event.ActorID,
		&event.Type,
		&severity,
		&inputs,
		&outputs,
		&event.ElapsedMs,
		&event.SourceIP,
		&event.UserAgent,
		&event.Component,
		&event.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit event: %w", err)
	}

	event.Severity = models.AuditSeverity(severity)
	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, &event.Inputs); err != nil {
			return nil, fmt.Errorf("decoding input payload: %w", err)
		}
	}
	if len(outputs) > 0 {
		if err := json.Unmarshal(outputs, &event.Outputs); err != nil {
			return nil, fmt.Errorf("decoding output payload: %w", err)
		}
	}
	return event, nil
}

func encodePayload(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	return json.Marshal(m)
}

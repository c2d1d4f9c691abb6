package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/models"
)

func newMockSink(t *testing.T) (*AuditSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAuditSink(&DB{DB: db, logger: zap.NewNop()}, zap.NewNop()), mock
}

func sampleEvent() *models.AuditEvent {
	return &models.AuditEvent{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		ActorID:   "sistema",
		Type:      models.EventDataValidation,
		Severity:  models.SeverityInfo,
		Inputs:    map[string]interface{}{"arquivo": "dados.csv"},
		Outputs:   map[string]interface{}{"valido": true},
		ElapsedMs: 12.5,
		SourceIP:  "127.0.0.1",
		UserAgent: "teste",
		Component: "validador",
		Timestamp: time.Now(),
	}
}

func TestAuditSinkWrite(t *testing.T) {
	sink, mock := newMockSink(t)
	event := sampleEvent()

	mock.ExpectExec("INSERT INTO eventos_auditoria").
		WithArgs(
			event.ID, event.SessionID, event.ActorID, event.Type,
			string(event.Severity), sqlmock.AnyArg(), sqlmock.AnyArg(),
			event.ElapsedMs, event.SourceIP, event.UserAgent,
			event.Component, event.Timestamp,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, sink.Write(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditSinkWriteNilPayloads(t *testing.T) {
	sink, mock := newMockSink(t)
	event := sampleEvent()
	event.Inputs = nil
	event.Outputs = nil

	mock.ExpectExec("INSERT INTO eventos_auditoria").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, sink.Write(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditSinkWriteDatabaseError(t *testing.T) {
	sink, mock := newMockSink(t)

	mock.ExpectExec("INSERT INTO eventos_auditoria").
		WillReturnError(assert.AnError)

	err := sink.Write(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert audit event")
}

func TestAuditSinkGetBySessionID(t *testing.T) {
	sink, mock := newMockSink(t)
	sessionID := uuid.New()
	eventID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "sessao_id", "usuario_id", "evento_tipo", "nivel",
		"dados_entrada", "dados_saida", "tempo_execucao_ms",
		"ip_origem", "user_agent", "componente", "timestamp",
	}).AddRow(
		eventID, sessionID, "sistema", "validacao_dados", "INFO",
		[]byte(`{"arquivo":"dados.csv"}`), []byte(`{"valido":true}`), 12.5,
		"127.0.0.1", "teste", "validador", now,
	)

	mock.ExpectQuery("SELECT (.+) FROM eventos_auditoria").
		WithArgs(sessionID, 10, 0).
		WillReturnRows(rows)

	events, err := sink.GetBySessionID(context.Background(), sessionID, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, eventID, events[0].ID)
	assert.Equal(t, models.SeverityInfo, events[0].Severity)
	assert.Equal(t, "dados.csv", events[0].Inputs["arquivo"])
	assert.Equal(t, true, events[0].Outputs["valido"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditSinkGetByType(t *testing.T) {
	sink, mock := newMockSink(t)
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "sessao_id", "usuario_id", "evento_tipo", "nivel",
		"dados_entrada", "dados_saida", "tempo_execucao_ms",
		"ip_origem", "user_agent", "componente", "timestamp",
	})

	mock.ExpectQuery("SELECT (.+) FROM eventos_auditoria").
		WithArgs("erro_sistema", start, end, 20, 0).
		WillReturnRows(rows)

	events, err := sink.GetByType(context.Background(), "erro_sistema", start, end, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

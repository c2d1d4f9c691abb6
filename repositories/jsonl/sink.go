// Package jsonl implements the file-based audit sink: one JSON object per
// line, append-only, created on first use.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/repositories"
)

// record is the fixed on-disk schema of one trail line. Every line carries
// all keys so the trail stays greppable even for partial events.
type record struct {
	Timestamp string                 `json:"timestamp"`
	SessionID string                 `json:"sessao_id"`
	ActorID   string                 `json:"usuario_id"`
	Severity  string                 `json:"nivel"`
	Event     string                 `json:"evento_tipo"`
	Component string                 `json:"componente"`
	Inputs    map[string]interface{} `json:"dados_entrada"`
	Outputs   map[string]interface{} `json:"dados_saida"`
	ElapsedMs float64                `json:"tempo_execucao_ms"`
	SourceIP  string                 `json:"ip_origem"`
	UserAgent string                 `json:"user_agent"`
}

// Sink appends audit events to a line-delimited JSON file. Writes are
// serialized by a mutex so concurrent events never interleave lines.
type Sink struct {
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	file *os.File
}

var _ repositories.AuditSink = (*Sink)(nil)

// NewSink creates the trail directory if needed and opens the file in
// append mode.
func NewSink(path string, logger *zap.Logger) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit trail %s: %w", path, err)
	}
	return &Sink{path: path, logger: logger, file: f}, nil
}

// Write appends one event as a single JSON line. Maps that are nil are
// written as empty objects so every line has the full schema.
func (s *Sink) Write(_ context.Context, event *models.AuditEvent) error {
	rec := record{
		Timestamp: event.Timestamp.Format("2006-01-02T15:04:05.000000"),
		SessionID: event.SessionID.String(),
		ActorID:   event.ActorID,
		Severity:  string(event.Severity),
		Event:     event.Type,
		Component: event.Component,
		Inputs:    event.Inputs,
		Outputs:   event.Outputs,
		ElapsedMs: event.ElapsedMs,
		SourceIP:  event.SourceIP,
		UserAgent: event.UserAgent,
	}
	if rec.Inputs == nil {
		rec.Inputs = map[string]interface{}{}
	}
	if rec.Outputs == nil {
		rec.Outputs = map[string]interface{}{}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending to audit trail: %w", err)
	}
	return nil
}

// Path returns the location of the trail file.
func (s *Sink) Path() string {
	return s.path
}

// Close syncs and closes the trail file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Sync(); err != nil {
		s.logger.Warn("audit trail sync failed", zap.Error(err))
	}
	return s.file.Close()
}

// Package audit implements the session audit trail: structured events with
// configurable severity tiers, kept in memory for the session and fanned out
// to the configured sinks.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/repositories"
)

// Auditor records audit events for one process session. Construct it once
// and inject it into every component that needs to audit; all methods are
// safe for concurrent use.
//
// Recording never fails from the caller's point of view: sink errors are
// logged and swallowed so the audit trail cannot take down an analysis.
type Auditor struct {
	sessionID uuid.UUID
	actorID   string
	high      map[string]struct{}
	medium    map[string]struct{}
	sinks     []repositories.AuditSink
	logger    *zap.Logger

	mu     sync.RWMutex
	events []*models.AuditEvent
}

// EventOption customizes a recorded event.
type EventOption func(*models.AuditEvent)

// WithRequest attaches the HTTP request origin to the event.
func WithRequest(sourceIP, userAgent string) EventOption {
	return func(e *models.AuditEvent) {
		e.SourceIP = sourceIP
		e.UserAgent = userAgent
	}
}

// WithComponent names the component that produced the event.
func WithComponent(name string) EventOption {
	return func(e *models.AuditEvent) {
		e.Component = name
	}
}

// WithElapsed attaches a measured duration to the event.
func WithElapsed(d time.Duration) EventOption {
	return func(e *models.AuditEvent) {
		e.ElapsedMs = float64(d) / float64(time.Millisecond)
	}
}

// NewAuditor creates an Auditor with a fresh session ID. The criticality
// lists from cfg drive severity resolution by event name.
func NewAuditor(cfg config.AuditConfig, sinks []repositories.AuditSink, logger *zap.Logger) *Auditor {
	a := &Auditor{
		sessionID: uuid.New(),
		actorID:   cfg.ActorID,
		high:      toSet(cfg.HighCriticality),
		medium:    toSet(cfg.MediumCriticality),
		sinks:     sinks,
		logger:    logger,
	}
	logger.Info("audit session started",
		zap.String("sessao_id", a.sessionID.String()),
		zap.String("usuario_id", a.actorID))
	return a
}

// SessionID returns the identifier of this audit session.
func (a *Auditor) SessionID() uuid.UUID {
	return a.sessionID
}

// Record creates an event, resolves its severity from the configured name
// lists and appends it to the session trail and every sink.
func (a *Auditor) Record(ctx context.Context, eventType string, inputs, outputs map[string]interface{}, opts ...EventOption) *models.AuditEvent {
	event := &models.AuditEvent{
		ID:        uuid.New(),
		SessionID: a.sessionID,
		ActorID:   a.actorID,
		Type:      eventType,
		Severity:  a.resolveSeverity(eventType),
		Inputs:    inputs,
		Outputs:   outputs,
		Component: "sistema_auditoria",
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(event)
	}

	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()

	for _, sink := range a.sinks {
		if err := sink.Write(ctx, event); err != nil {
			a.logger.Error("audit sink write failed",
				zap.Error(err),
				zap.String("evento", eventType))
		}
	}

	a.logger.Debug("audit event recorded",
		zap.String("evento", eventType),
		zap.String("nivel", string(event.Severity)))
	return event
}

// resolveSeverity maps an event name to its criticality tier. Names absent
// from both lists are informational.
func (a *Auditor) resolveSeverity(eventType string) models.AuditSeverity {
	if _, ok := a.high[eventType]; ok {
		return models.SeverityCritical
	}
	if _, ok := a.medium[eventType]; ok {
		return models.SeverityWarning
	}
	return models.SeverityInfo
}

// StartAnalysis records the beginning of an analysis run.
func (a *Auditor) StartAnalysis(ctx context.Context, analysisID, topic string, files []string, opts ...EventOption) *models.AuditEvent {
	return a.Record(ctx, models.EventAnalysisStarted,
		map[string]interface{}{
			"analise_id": analysisID,
			"tema":       topic,
			"arquivos":   files,
		}, nil, opts...)
}

// RecordValidation records the outcome of validating one file.
func (a *Auditor) RecordValidation(ctx context.Context, result *models.ValidationResult, opts ...EventOption) *models.AuditEvent {
	return a.Record(ctx, models.EventDataValidation,
		map[string]interface{}{"arquivo": result.File},
		map[string]interface{}{
			"valido": result.Valid,
			"erros":  result.Errors,
			"avisos": result.Warnings,
			"hash":   result.Info["hash_sha256"],
		}, opts...)
}

// RecordError records a system error with the component it came from.
func (a *Auditor) RecordError(ctx context.Context, component string, err error, details map[string]interface{}, opts ...EventOption) *models.AuditEvent {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["erro"] = err.Error()
	opts = append(opts, WithComponent(component))
	return a.Record(ctx, models.EventSystemError, details, nil, opts...)
}

// FinishAnalysis records the terminal outcome of an analysis run.
func (a *Auditor) FinishAnalysis(ctx context.Context, analysisID string, status models.AnalysisStatus, elapsed time.Duration, opts ...EventOption) *models.AuditEvent {
	opts = append(opts, WithElapsed(elapsed))
	return a.Record(ctx, models.EventAnalysisFinished,
		map[string]interface{}{"analise_id": analysisID},
		map[string]interface{}{"status": string(status)}, opts...)
}

// Events returns a snapshot of the session trail in recording order.
func (a *Auditor) Events() []*models.AuditEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*models.AuditEvent, len(a.events))
	copy(out, a.events)
	return out
}

// Statistics summarizes the session so far. Session duration spans the
// first to the last recorded event; an empty trail has zero duration.
func (a *Auditor) Statistics() models.AuditStatistics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	byType := make(map[string]int)
	for _, e := range a.events {
		byType[e.Type]++
	}
	return models.AuditStatistics{
		SessionID:      a.sessionID,
		ActorID:        a.actorID,
		TotalEvents:    len(a.events),
		EventsByType:   byType,
		SessionMinutes: a.sessionMinutesLocked(),
	}
}

// sessionMinutesLocked derives the session span from the recorded event
// timestamps. Caller holds at least the read lock.
func (a *Auditor) sessionMinutesLocked() float64 {
	if len(a.events) == 0 {
		return 0
	}
	first := a.events[0].Timestamp
	last := first
	for _, e := range a.events[1:] {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return last.Sub(first).Minutes()
}

// Export packages the full session trail with its metadata and statistics.
func (a *Auditor) Export() *models.AuditExport {
	return &models.AuditExport{
		Metadata: models.AuditExportMetadata{
			System:     "SAPIENS - Sistema de Auditoria Acadêmica",
			Version:    "1.0",
			ExportedAt: time.Now(),
			SessionID:  a.sessionID,
		},
		Statistics: a.Statistics(),
		Events:     a.Events(),
	}
}

// ExportJSON writes the full session export to path as indented JSON.
func (a *Auditor) ExportJSON(path string) error {
	data, err := json.MarshalIndent(a.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding audit export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing audit export: %w", err)
	}
	a.logger.Info("audit trail exported", zap.String("arquivo", path))
	return nil
}

// Close closes every sink, returning the first error encountered.
func (a *Auditor) Close() error {
	var firstErr error
	for _, sink := range a.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing audit sink: %w", err)
		}
	}
	return firstErr
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

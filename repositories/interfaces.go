// Package repositories defines the persistence interfaces of the audit
// trail. Sinks are append-only: events are written once and never updated.
package repositories

import (
	"context"

	"github.com/sapiens-platform/sapiens/models"
)

// AuditSink persists audit events. Implementations must tolerate partially
// filled events (nil input/output maps, zero elapsed time) without failing.
type AuditSink interface {
	// Write appends one event to the trail.
	Write(ctx context.Context, event *models.AuditEvent) error

	// Close flushes and releases the sink.
	Close() error
}

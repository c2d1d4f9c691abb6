package audit

import (
	"context"
	"time"

	"github.com/sapiens-platform/sapiens/models"
)

// Timer measures one scoped operation and records it as an audit event when
// stopped. Start it at the top of the operation and call Stop exactly once.
type Timer struct {
	auditor   *Auditor
	eventType string
	component string
	inputs    map[string]interface{}
	start     time.Time
}

// StartTimer begins timing an operation that will be recorded as eventType.
func (a *Auditor) StartTimer(eventType, component string, inputs map[string]interface{}) *Timer {
	return &Timer{
		auditor:   a,
		eventType: eventType,
		component: component,
		inputs:    inputs,
		start:     time.Now(),
	}
}

// Stop records the timed event with the measured duration and the operation
// outputs.
func (t *Timer) Stop(ctx context.Context, outputs map[string]interface{}, opts ...EventOption) *models.AuditEvent {
	opts = append(opts,
		WithComponent(t.component),
		WithElapsed(time.Since(t.start)))
	return t.auditor.Record(ctx, t.eventType, t.inputs, outputs, opts...)
}

// StopWithError records the timed event as a system error instead.
func (t *Timer) StopWithError(ctx context.Context, err error, opts ...EventOption) *models.AuditEvent {
	details := map[string]interface{}{"operacao": t.eventType}
	for k, v := range t.inputs {
		details[k] = v
	}
	opts = append(opts, WithElapsed(time.Since(t.start)))
	return t.auditor.RecordError(ctx, t.component, err, details, opts...)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditSeverity is the criticality tier of an audit event. The tier is
// derived from configurable event-name lists, not hard-coded per event.
type AuditSeverity string

const (
	SeverityInfo     AuditSeverity = "INFO"
	SeverityWarning  AuditSeverity = "WARNING"
	SeverityCritical AuditSeverity = "CRITICAL"
)

// Well-known audit event types. Components are free to record additional
// ad-hoc event names; severity resolution works by name either way.
const (
	EventAnalysisStarted  = "inicio_analise"
	EventDataValidation   = "validacao_dados"
	EventSystemError      = "erro_sistema"
	EventAnalysisFinished = "resultado_analise"
	EventFileUpload       = "upload_arquivo"
	EventCSVQuery         = "busca_csv"
	EventWebStartup       = "inicializacao_interface_web"
)

// AuditEvent is one append-only entry in the session audit trail. Events are
// never mutated after creation.
type AuditEvent struct {
	ID        uuid.UUID              `json:"id"`
	SessionID uuid.UUID              `json:"sessao_id"`
	ActorID   string                 `json:"usuario_id"`
	Type      string                 `json:"evento_tipo"`
	Severity  AuditSeverity          `json:"nivel"`
	Inputs    map[string]interface{} `json:"dados_entrada"`
	Outputs   map[string]interface{} `json:"dados_saida"`
	ElapsedMs float64                `json:"tempo_execucao_ms,omitempty"`
	SourceIP  string                 `json:"ip_origem"`
	UserAgent string                 `json:"user_agent"`
	Component string                 `json:"componente"`
	Timestamp time.Time              `json:"timestamp"`
}

// AuditStatistics is a point-in-time summary of the audit session.
type AuditStatistics struct {
	SessionID      uuid.UUID      `json:"sessao_id"`
	ActorID        string         `json:"usuario_id"`
	TotalEvents    int            `json:"total_eventos"`
	EventsByType   map[string]int `json:"eventos_por_tipo"`
	SessionMinutes float64        `json:"tempo_sessao_minutos"`
}

// AuditExport is the on-disk shape of a full audit trail export.
type AuditExport struct {
	Metadata   AuditExportMetadata `json:"metadata"`
	Statistics AuditStatistics     `json:"estatisticas"`
	Events     []*AuditEvent       `json:"eventos"`
}

// AuditExportMetadata describes the system that produced an export.
type AuditExportMetadata struct {
	System     string    `json:"sistema"`
	Version    string    `json:"versao"`
	ExportedAt time.Time `json:"data_exportacao"`
	SessionID  uuid.UUID `json:"sessao_id"`
}

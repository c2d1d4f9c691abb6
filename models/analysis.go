package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus tracks a single analysis through its lifecycle:
//
//	processing -> validated_files -> executing -> completed | error
//
// completed and error are terminal. There is no transition out of error;
// retries require a new analysis id.
type AnalysisStatus string

const (
	StatusProcessing     AnalysisStatus = "processando"
	StatusFilesValidated AnalysisStatus = "arquivos_validados"
	StatusExecuting      AnalysisStatus = "executando_analise"
	StatusCompleted      AnalysisStatus = "concluida"
	StatusError          AnalysisStatus = "erro"
)

// Terminal reports whether no further transitions are allowed from s.
func (s AnalysisStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// AnalysisFile is one validated input attached to an analysis.
type AnalysisFile struct {
	OriginalName string            `json:"nome_original"`
	StoredName   string            `json:"nome_arquivo"`
	Path         string            `json:"caminho"`
	Size         int64             `json:"tamanho"`
	Validation   *ValidationResult `json:"validacao_seguranca,omitempty"`
}

// Analysis is the tracked state of one user-submitted research analysis.
type Analysis struct {
	ID        uuid.UUID      `json:"id"`
	Topic     string         `json:"topico_pesquisa"`
	Status    AnalysisStatus `json:"status"`
	Progress  int            `json:"progresso"`
	Files     []AnalysisFile `json:"arquivos"`
	Results   string         `json:"resultados,omitempty"`
	Error     string         `json:"erro,omitempty"`
	StartedAt time.Time      `json:"timestamp_inicio"`
	UpdatedAt time.Time      `json:"timestamp_atualizacao"`
	EndedAt   *time.Time     `json:"timestamp_fim,omitempty"`
}

// NewAnalysis creates an analysis in the initial processing state.
func NewAnalysis(topic string) *Analysis {
	now := time.Now()
	return &Analysis{
		ID:        uuid.New(),
		Topic:     topic,
		Status:    StatusProcessing,
		Progress:  0,
		Files:     []AnalysisFile{},
		StartedAt: now,
		UpdatedAt: now,
	}
}

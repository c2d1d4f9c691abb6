package models

import (
	"time"
)

// PIICategory identifies the kind of personal data a scanner pattern matched.
type PIICategory string

const (
	PIICategoryCPF        PIICategory = "cpf"
	PIICategoryRG         PIICategory = "rg"
	PIICategoryPhone      PIICategory = "telefone"
	PIICategoryEmail      PIICategory = "email"
	PIICategoryPostalCode PIICategory = "cep"
	PIICategoryEnrollment PIICategory = "matricula"
	PIICategoryFullName   PIICategory = "nome_completo"
)

// PIIFinding aggregates the matches of a single PII category in one file.
// Examples carries at most three sample matches so that audit logs never
// accumulate the full set of personal data found in a document.
type PIIFinding struct {
	Category PIICategory `json:"tipo"`
	Count    int         `json:"quantidade"`
	Examples []string    `json:"exemplos"`
}

// ValidationResult is the outcome of a full security validation of one file.
// Valid is false if and only if at least one error was appended; warnings are
// advisory and never affect Valid.
type ValidationResult struct {
	File      string                 `json:"arquivo"`
	Valid     bool                   `json:"valido"`
	Errors    []string               `json:"erros"`
	Warnings  []string               `json:"avisos"`
	Info      map[string]interface{} `json:"informacoes"`
	PII       []PIIFinding           `json:"pii_encontrada,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewValidationResult returns a result that starts out valid for the given file.
func NewValidationResult(file string) *ValidationResult {
	return &ValidationResult{
		File:      file,
		Valid:     true,
		Errors:    []string{},
		Warnings:  []string{},
		Info:      map[string]interface{}{},
		Timestamp: time.Now(),
	}
}

// AddError appends an error and marks the result invalid.
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

// AddWarning appends an advisory warning. Valid is left untouched.
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// BatchValidationResult summarises the validation of multiple files.
type BatchValidationResult struct {
	TotalFiles   int                 `json:"total_arquivos"`
	ValidFiles   int                 `json:"arquivos_validos"`
	InvalidFiles int                 `json:"arquivos_invalidos"`
	SuccessRate  float64             `json:"taxa_sucesso"`
	Results      []*ValidationResult `json:"resultados"`
	Timestamp    time.Time           `json:"timestamp"`
}

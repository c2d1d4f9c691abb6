// Package validation implements the security validation of user-supplied
// files: extension and MIME allow-lists, size ceilings, content quality
// checks for tabular data, PII scanning and content hashing for audit.
package validation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
	"github.com/sapiens-platform/sapiens/internal/tabular"
	"github.com/sapiens-platform/sapiens/models"
)

// Size-warning threshold as a fraction of the configured ceiling.
const sizeWarnFraction = 0.8

// Missing-data warning tiers, in percent.
const (
	missingSignificant = 20.0
	missingExcessive   = 50.0
)

// Validator performs the full security validation of one file against a
// configured policy. It is safe for concurrent use.
type Validator struct {
	policy config.SecurityPolicy
	logger *zap.Logger
}

// NewValidator creates a Validator bound to the given policy.
func NewValidator(policy config.SecurityPolicy, logger *zap.Logger) *Validator {
	return &Validator{policy: policy, logger: logger}
}

// Validate runs every validation step against the file at path.
//
// Hard failures (missing file, blocked or unknown extension, disallowed MIME
// type, size over the ceiling) mark the result invalid and stop further
// checks. Content-quality findings and PII findings are always advisory.
// The SHA-256 digest is computed for every readable file, accepted or
// rejected, so the audit trail can always identify the exact content seen.
func (v *Validator) Validate(path string) *models.ValidationResult {
	result := models.NewValidationResult(path)

	info, err := os.Stat(path)
	if err != nil {
		result.AddError("Arquivo não encontrado")
		return result
	}
	if !info.Mode().IsRegular() {
		result.AddError("Caminho não é um arquivo válido")
		return result
	}

	// Hash first: rejected files are still identifiable in the audit trail.
	if digest, err := hashFile(path); err == nil {
		result.Info["hash_sha256"] = digest
	} else {
		v.logger.Warn("hash computation failed", zap.String("file", path), zap.Error(err))
		result.AddWarning(fmt.Sprintf("Erro ao calcular hash: %v", err))
	}

	ext := strings.ToLower(filepath.Ext(path))
	result.Info["extensao"] = ext
	result.Info["tamanho_bytes"] = info.Size()
	result.Info["data_modificacao"] = info.ModTime().Format(time.RFC3339)

	allowed, blocked := v.policy.ExtensionAllowed(ext)
	if blocked {
		result.AddError(fmt.Sprintf("Extensão bloqueada: %s", ext))
		return result
	}
	if !allowed {
		result.AddError(fmt.Sprintf("Extensão não permitida: %s", ext))
		return result
	}

	if !v.checkMIME(path, result) {
		return result
	}
	if !v.checkSize(info.Size(), result) {
		return result
	}

	if isTabular(ext) {
		v.checkTabularQuality(path, ext, result)
	}

	if v.policy.ValidatePII {
		v.scanPII(path, result)
	}

	return result
}

// checkMIME detects the real content type and matches it against the
// allow-list. Returns false on hard failure.
func (v *Validator) checkMIME(path string, result *models.ValidationResult) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		result.AddError(fmt.Sprintf("Erro na detecção MIME: %v", err))
		return false
	}
	result.Info["mime_type_detectado"] = mtype.String()

	for _, allowed := range v.policy.AllowedMIMETypes {
		if mtype.Is(allowed) {
			result.AddWarning(fmt.Sprintf("MIME type validado: %s", mtype.String()))
			return true
		}
	}
	result.AddError(fmt.Sprintf("Tipo MIME não permitido: %s", mtype.String()))
	return false
}

// checkSize enforces the configured ceiling and warns when the file is
// within 20% of it. Returns false on hard failure.
func (v *Validator) checkSize(sizeBytes int64, result *models.ValidationResult) bool {
	sizeMB := float64(sizeBytes) / (1024 * 1024)
	result.Info["tamanho_mb"] = round2(sizeMB)

	maxMB := v.policy.MaxFileSizeMB
	switch {
	case sizeMB > maxMB:
		result.AddError(fmt.Sprintf("Arquivo muito grande: %.2fMB (máximo: %gMB)", sizeMB, maxMB))
		return false
	case sizeMB > maxMB*sizeWarnFraction:
		result.AddWarning(fmt.Sprintf("Arquivo grande: %.2fMB (aproximando limite de %gMB)", sizeMB, maxMB))
	}
	return true
}

// checkTabularQuality computes missing-data ratios and duplicate column
// names for delimited and xlsx files. Parse failures and unsupported
// spreadsheet formats degrade to a warning; quality findings never fail
// validation.
func (v *Validator) checkTabularQuality(path, ext string, result *models.ValidationResult) {
	var table *tabular.Table
	var err error
	switch ext {
	case ".xls":
		result.AddWarning("Inspeção de conteúdo não disponível para planilhas .xls")
		return
	case ".xlsx":
		table, err = tabular.LoadExcel(path)
	default:
		table, err = tabular.Load(path)
	}
	if err != nil {
		result.AddWarning(fmt.Sprintf("Erro na validação de conteúdo: %v", err))
		return
	}

	missing := table.MissingCells()
	missingPct := table.MissingPercent()
	result.Info["linhas"] = len(table.Rows)
	result.Info["colunas"] = len(table.Columns)
	result.Info["celulas_vazias"] = missing
	result.Info["percentual_dados_faltantes"] = round2(missingPct)

	switch {
	case missingPct > missingExcessive:
		result.AddWarning(fmt.Sprintf("Muitos dados faltantes: %.1f%%", missingPct))
	case missingPct > missingSignificant:
		result.AddWarning(fmt.Sprintf("Dados faltantes significativos: %.1f%%", missingPct))
	}

	if dups := table.DuplicateColumns(); len(dups) > 0 {
		result.AddWarning(fmt.Sprintf("Colunas duplicadas encontradas: %v", dups))
	}
}

// scanPII runs the PII patterns over the file contents. Findings only ever
// produce warnings.
func (v *Validator) scanPII(path string, result *models.ValidationResult) {
	findings, err := ScanFile(path)
	if err != nil {
		result.AddWarning(fmt.Sprintf("Erro na validação PII: %v", err))
		return
	}
	result.PII = findings
	if len(findings) > 0 {
		categories := make([]models.PIICategory, 0, len(findings))
		for _, f := range findings {
			categories = append(categories, f.Category)
		}
		result.AddWarning(fmt.Sprintf("Dados pessoais detectados: %v", categories))
	}
}

// ValidateAll validates every path and aggregates the outcome.
func (v *Validator) ValidateAll(paths []string) *models.BatchValidationResult {
	batch := &models.BatchValidationResult{
		TotalFiles: len(paths),
		Results:    make([]*models.ValidationResult, 0, len(paths)),
		Timestamp:  time.Now(),
	}
	for _, p := range paths {
		r := v.Validate(p)
		batch.Results = append(batch.Results, r)
		if r.Valid {
			batch.ValidFiles++
		} else {
			batch.InvalidFiles++
		}
	}
	if batch.TotalFiles > 0 {
		batch.SuccessRate = float64(batch.ValidFiles) / float64(batch.TotalFiles) * 100
	}
	return batch
}

func isTabular(ext string) bool {
	switch ext {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

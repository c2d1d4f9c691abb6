package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityPolicy is the file-validation policy: which extensions and MIME
// types are acceptable and how large a file may be. The block-list takes
// precedence over the allow-list when both match an extension.
type SecurityPolicy struct {
	MaxFileSizeMB     float64  `yaml:"max_file_size_mb"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	BlockedExtensions []string `yaml:"blocked_extensions"`
	AllowedMIMETypes  []string `yaml:"allowed_mime_types"`
	ValidatePII       bool     `yaml:"validate_pii"`
}

// DefaultSecurityPolicy mirrors the defaults used for academic datasets:
// spreadsheets, documents and plain text, 100MB ceiling, PII scanning on.
func DefaultSecurityPolicy() SecurityPolicy {
	return SecurityPolicy{
		MaxFileSizeMB:     100,
		AllowedExtensions: []string{".csv", ".xlsx", ".xls", ".pdf", ".docx", ".txt"},
		BlockedExtensions: []string{".exe", ".bat", ".cmd", ".scr", ".com", ".pif"},
		AllowedMIMETypes: []string{
			"text/csv",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel",
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		},
		ValidatePII: true,
	}
}

// ExtensionAllowed reports whether ext passes the allow/block lists.
// Block wins over allow.
func (p SecurityPolicy) ExtensionAllowed(ext string) (allowed bool, blocked bool) {
	for _, b := range p.BlockedExtensions {
		if ext == b {
			return false, true
		}
	}
	for _, a := range p.AllowedExtensions {
		if ext == a {
			return true, false
		}
	}
	return false, false
}

// MIMEAllowed reports whether the detected MIME type is in the allow-list.
func (p SecurityPolicy) MIMEAllowed(mime string) bool {
	for _, m := range p.AllowedMIMETypes {
		if mime == m {
			return true
		}
	}
	return false
}

// policyFile is the on-disk YAML layout combining the security policy with
// the audit severity name lists. ValidatePII is a pointer so an absent key
// is distinguishable from an explicit false.
type policyFile struct {
	Security *struct {
		MaxFileSizeMB     float64  `yaml:"max_file_size_mb"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
		BlockedExtensions []string `yaml:"blocked_extensions"`
		AllowedMIMETypes  []string `yaml:"allowed_mime_types"`
		ValidatePII       *bool    `yaml:"validate_pii"`
	} `yaml:"security"`
	Audit *struct {
		HighCriticality   []string `yaml:"eventos_criticidade_alta"`
		MediumCriticality []string `yaml:"eventos_criticidade_media"`
	} `yaml:"auditoria"`
}

// LoadPolicyFile overlays the YAML policy file at path onto the config.
// Sections absent from the file keep their current values.
func (c *Config) LoadPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if pf.Security != nil {
		if pf.Security.MaxFileSizeMB > 0 {
			c.Security.MaxFileSizeMB = pf.Security.MaxFileSizeMB
		}
		if len(pf.Security.AllowedExtensions) > 0 {
			c.Security.AllowedExtensions = pf.Security.AllowedExtensions
		}
		if len(pf.Security.BlockedExtensions) > 0 {
			c.Security.BlockedExtensions = pf.Security.BlockedExtensions
		}
		if len(pf.Security.AllowedMIMETypes) > 0 {
			c.Security.AllowedMIMETypes = pf.Security.AllowedMIMETypes
		}
		if pf.Security.ValidatePII != nil {
			c.Security.ValidatePII = *pf.Security.ValidatePII
		}
	}
	if pf.Audit != nil {
		c.Audit.HighCriticality = pf.Audit.HighCriticality
		c.Audit.MediumCriticality = pf.Audit.MediumCriticality
	}
	return nil
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapiens-platform/sapiens/models"
)

func findingFor(findings []models.PIIFinding, cat models.PIICategory) *models.PIIFinding {
	for i := range findings {
		if findings[i].Category == cat {
			return &findings[i]
		}
	}
	return nil
}

func TestScanText_Categories(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category models.PIICategory
	}{
		{"cpf", "cadastro 123.456.789-01 ativo", models.PIICategoryCPF},
		{"phone", "contato (81) 98765-4321", models.PIICategoryPhone},
		{"email", "fale com ana@universidade.edu.br hoje", models.PIICategoryEmail},
		{"postal code", "endereço CEP 50670-901", models.PIICategoryPostalCode},
		{"enrollment", "matrícula: 2021004567", models.PIICategoryEnrollment},
		{"full name", "nome: Maria da Silva", models.PIICategoryFullName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := ScanText(tt.text)
			assert.NotNil(t, findingFor(findings, tt.category), "expected %s finding", tt.category)
		})
	}
}

func TestScanText_CleanText(t *testing.T) {
	findings := ScanText("medias por curso: 7.8, 8.1, 6.9")
	assert.Empty(t, findings)
}

func TestScanText_CountsAndBoundsExamples(t *testing.T) {
	text := "a@x.com b@x.com c@x.com d@x.com e@x.com"
	findings := ScanText(text)

	f := findingFor(findings, models.PIICategoryEmail)
	require.NotNil(t, f)
	assert.Equal(t, 5, f.Count)
	assert.Len(t, f.Examples, 3, "examples are capped so the scan does not leak the full set")
}

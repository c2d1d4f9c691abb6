package validation

import (
	"os"
	"regexp"

	"github.com/sapiens-platform/sapiens/models"
)

// maxPIIExamples bounds how many sample matches are kept per category so the
// scan result itself does not leak the full set of personal data.
const maxPIIExamples = 3

// piiPattern couples a PII category with its heuristic pattern. Matching is
// case-insensitive; the patterns target Brazilian academic datasets (CPF, RG,
// CEP, enrollment numbers) plus generic contact data.
type piiPattern struct {
	category models.PIICategory
	re       *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{models.PIICategoryCPF, regexp.MustCompile(`\d{3}\.\d{3}\.\d{3}-\d{2}`)},
	{models.PIICategoryPhone, regexp.MustCompile(`\(\d{2}\)\s*\d{4,5}-\d{4}`)},
	{models.PIICategoryEmail, regexp.MustCompile(`(?i)[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	{models.PIICategoryPostalCode, regexp.MustCompile(`\d{5}-?\d{3}`)},
	{models.PIICategoryRG, regexp.MustCompile(`\d{1,2}\.?\d{3}\.?\d{3}-?\d{1}`)},
	{models.PIICategoryEnrollment, regexp.MustCompile(`(?i)(?:matr[íi]cula|ra|enrollment)\s*:?\s*[\wà-ÿ\d]+`)},
	{models.PIICategoryFullName, regexp.MustCompile(`(?i)(?:nome|name)\s*:?\s*[A-Za-zÀ-ÿ\s]+`)},
}

// ScanText applies every PII pattern to the given text and aggregates the
// findings per category. Advisory only: findings become warnings upstream,
// never validation failures, and false positives are expected.
func ScanText(text string) []models.PIIFinding {
	var findings []models.PIIFinding
	for _, p := range piiPatterns {
		matches := p.re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		examples := matches
		if len(examples) > maxPIIExamples {
			examples = examples[:maxPIIExamples]
		}
		findings = append(findings, models.PIIFinding{
			Category: p.category,
			Count:    len(matches),
			Examples: examples,
		})
	}
	return findings
}

// ScanFile reads the file as text and scans it. Binary content is scanned
// as-is: decode errors are not possible this way and unreadable bytes simply
// fail to match, mirroring the tolerant behaviour expected of the scanner.
func ScanFile(path string) ([]models.PIIFinding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ScanText(string(data)), nil
}

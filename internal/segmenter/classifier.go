package segmenter

import (
	"strings"

	"github.com/hyperjump/senko/internal/models"
)

// SectionClassifier decides whether a raw line opens a new section and of
// which kind. Implementations must be deterministic for identical input.
type SectionClassifier interface {
	// Classify returns the section kind the line opens and true, or false
	// when the line is not a section header.
	Classify(line string) (models.SectionKind, bool)
}

// headerGroups maps header synonyms to section kinds, checked in order.
// Headers that merely bound a section without a dedicated kind (summary,
// projects, references, ...) open a General section.
var headerGroups = []struct {
	kind  models.SectionKind
	terms []string
}{
	{models.SectionSkills, []string{
		"skills", "technical skills", "core competencies", "competencies", "technologies",
	}},
	{models.SectionExperience, []string{
		"experience", "work experience", "employment", "professional experience", "work history",
	}},
	{models.SectionEducation, []string{
		"education", "academic background", "academic", "qualifications", "degrees",
	}},
	{models.SectionGeneral, []string{
		"summary", "objective", "profile", "projects", "certifications", "awards", "references",
	}},
}

// maxHeaderWords bounds how many words a line may have to count as a header.
const maxHeaderWords = 4

// HeaderClassifier is the default keyword-based section classifier.
type HeaderClassifier struct{}

// NewHeaderClassifier returns the default classifier.
func NewHeaderClassifier() *HeaderClassifier {
	return &HeaderClassifier{}
}

// Classify matches short header-like lines ("Skills:", "WORK EXPERIENCE")
// against the known synonym groups. Sentences and long lines never match.
func (c *HeaderClassifier) Classify(line string) (models.SectionKind, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasSuffix(trimmed, ".") {
		return "", false
	}
	normalized := strings.ToLower(strings.TrimRight(trimmed, ": \t"))
	if normalized == "" {
		return "", false
	}
	if len(strings.Fields(normalized)) > maxHeaderWords {
		return "", false
	}
	for _, group := range headerGroups {
		for _, term := range group.terms {
			if normalized == term || strings.Contains(normalized, term) {
				return group.kind, true
			}
		}
	}
	return "", false
}

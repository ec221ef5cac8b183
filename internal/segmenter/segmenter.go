// Package segmenter splits raw resume and job description text into
// classified, retrieval-sized chunks.
package segmenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/senko/internal/docid"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/pkg/utils"
)

// ErrEmptyDocument is returned when the input text is blank after
// whitespace normalization.
var ErrEmptyDocument = errors.New("document is empty")

const defaultChunkMaxLength = 1000

// Segmenter splits text into section-classified, non-overlapping chunks.
// Chunks are bounded by a maximum character length and preserve document
// order; no text is dropped.
type Segmenter struct {
	maxChunkLen int
	classifier  SectionClassifier
}

// New creates a segmenter with the given maximum chunk length in characters.
// Non-positive values fall back to the default of 1000.
func New(maxChunkLen int) *Segmenter {
	return NewWithClassifier(maxChunkLen, NewHeaderClassifier())
}

// NewWithClassifier creates a segmenter with a custom section classifier.
func NewWithClassifier(maxChunkLen int, classifier SectionClassifier) *Segmenter {
	if maxChunkLen <= 0 {
		maxChunkLen = defaultChunkMaxLength
	}
	return &Segmenter{maxChunkLen: maxChunkLen, classifier: classifier}
}

// sectionRun is a contiguous stretch of lines belonging to one section.
type sectionRun struct {
	kind  models.SectionKind
	words []string
}

// Segment splits rawText into a Document. The id may be empty, in which case
// a deterministic ID is derived from the text. Section headers are detected
// on raw lines before chunking and stay part of their section's text, so
// joining all chunk texts with single spaces reproduces the
// whitespace-normalized input exactly.
func (s *Segmenter) Segment(id, rawText string, role models.Role) (*models.Document, error) {
	if utils.NormalizeWhitespace(rawText) == "" {
		return nil, ErrEmptyDocument
	}
	if id == "" {
		id = docid.ForText(role, rawText)
	}

	runs := s.splitSections(rawText)

	doc := &models.Document{
		ID:       id,
		Role:     role,
		RawText:  rawText,
		Sections: make(map[models.SectionKind][]*models.Chunk),
	}

	offset := 0
	seq := 0
	for _, run := range runs {
		for _, text := range s.chunkWords(run.words) {
			chunk := &models.Chunk{
				ID:           fmt.Sprintf("%s:%d", id, seq),
				Text:         text,
				Kind:         run.kind,
				SourceOffset: offset,
			}
			doc.Sections[run.kind] = append(doc.Sections[run.kind], chunk)
			offset += len(text) + 1
			seq++
		}
	}
	return doc, nil
}

// splitSections walks raw lines, opening a new run whenever the classifier
// recognizes a header. Text before the first header is General.
func (s *Segmenter) splitSections(rawText string) []sectionRun {
	runs := make([]sectionRun, 0, 4)
	current := sectionRun{kind: models.SectionGeneral}

	flush := func() {
		if len(current.words) > 0 {
			runs = append(runs, current)
		}
	}

	for _, line := range strings.Split(rawText, "\n") {
		if kind, ok := s.classifier.Classify(line); ok {
			flush()
			current = sectionRun{kind: kind}
		}
		current.words = append(current.words, strings.Fields(line)...)
	}
	flush()
	return runs
}

// chunkWords greedily packs words into chunks of at most maxChunkLen
// characters. A chunk always holds at least one word, so a single word
// longer than the limit becomes its own chunk.
func (s *Segmenter) chunkWords(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, 1)
	var b strings.Builder
	for _, word := range words {
		projected := b.Len() + len(word)
		if b.Len() > 0 {
			projected++
		}
		if projected > s.maxChunkLen && b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

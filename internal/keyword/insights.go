// Package keyword derives keyword-level insights for resume analyses.
package keyword

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/senko/internal/models"
)

const (
	// maxInsightTerms caps KeyMatches and MissingSkills independently.
	maxInsightTerms = 5
	// maxProbeTerms bounds how many job description terms are probed against
	// the resume, so very long postings stay cheap.
	maxProbeTerms = 60
)

// Insights carries the keyword-level findings for one resume. They are
// advisory; semantic scores never depend on them.
type Insights struct {
	KeyMatches    []string
	MissingSkills []string
}

// Extract builds an in-memory index over the resume's chunks, extracts
// salient terms from the job description text and probes each term against
// the resume. Terms found become KeyMatches, terms absent become
// MissingSkills.
func Extract(resume *models.Document, jobText string) (*Insights, error) {
	index, err := indexResume(resume)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	insights := &Insights{}
	for _, term := range extractTerms(jobText) {
		found, err := probe(index, term)
		if err != nil {
			continue
		}
		if found {
			if len(insights.KeyMatches) < maxInsightTerms {
				insights.KeyMatches = append(insights.KeyMatches, fmt.Sprintf("Relevant experience with %s", term))
			}
		} else {
			if len(insights.MissingSkills) < maxInsightTerms {
				insights.MissingSkills = append(insights.MissingSkills, titleCase(term))
			}
		}
		if len(insights.KeyMatches) == maxInsightTerms && len(insights.MissingSkills) == maxInsightTerms {
			break
		}
	}
	return insights, nil
}

type chunkDoc struct {
	Content string `json:"content"`
}

// indexResume builds a memory-only index over the resume chunks. The
// standard analyzer (lowercase, no stemming) keeps probe terms matching the
// exact words the resume uses.
func indexResume(resume *models.Document) (bleve.Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	for _, chunk := range resume.AllChunks() {
		if err := index.Index(chunk.ID, chunkDoc{Content: chunk.Text}); err != nil {
			index.Close()
			return nil, fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
	}
	return index, nil
}

// probe reports whether any resume chunk matches the term.
func probe(index bleve.Index, term string) (bool, error) {
	q := bleve.NewMatchQuery(term)
	q.SetField("content")
	req := bleve.NewSearchRequest(q)
	req.Size = 1
	results, err := index.Search(req)
	if err != nil {
		return false, fmt.Errorf("probe %q: %w", term, err)
	}
	return results.Total > 0, nil
}

// stopTerms are words too common in job postings to be worth probing.
var stopTerms = map[string]bool{
	"a": true, "about": true, "all": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"been": true, "best": true, "both": true, "but": true, "by": true,
	"can": true, "candidate": true, "candidates": true, "company": true,
	"could": true, "do": true, "each": true, "experience": true,
	"familiarity": true, "for": true, "from": true, "good": true,
	"has": true, "have": true, "if": true, "in": true, "including": true,
	"into": true, "is": true, "it": true, "its": true, "join": true,
	"knowledge": true, "looking": true, "may": true, "more": true,
	"must": true, "new": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "other": true, "our": true, "over": true,
	"plus": true, "position": true, "preferred": true, "required": true,
	"requirements": true, "responsibilities": true, "role": true,
	"should": true, "skills": true, "some": true, "strong": true,
	"such": true, "team": true, "than": true, "that": true, "the": true,
	"their": true, "them": true, "these": true, "they": true, "this": true,
	"those": true, "to": true, "understanding": true, "us": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "will": true, "with": true,
	"work": true, "working": true, "would": true, "years": true,
	"you": true, "your": true,
}

// extractTerms pulls candidate skill terms from job description text:
// lowercased, stripped of surrounding punctuation, stop words dropped,
// first-appearance order preserved. Trailing + and # survive so terms like
// c++ and c# stay intact, and inner punctuation keeps node.js whole.
func extractTerms(text string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, token := range strings.Fields(strings.ToLower(text)) {
		term := trimTerm(token)
		if len(term) < 2 || stopTerms[term] || !containsLetter(term) {
			continue
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
		if len(terms) == maxProbeTerms {
			break
		}
	}
	return terms
}

func trimTerm(token string) string {
	token = strings.TrimLeftFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.TrimRightFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of every word-like run, so missing
// skills read as labels: "machine" -> "Machine", "node.js" -> "Node.Js".
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if !prevLetter {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}

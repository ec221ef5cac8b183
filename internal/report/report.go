// Package report renders analysis results for human and machine consumption.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/pkg/utils"
)

// Format selects the output rendering for analysis results.
type Format string

const (
	// FormatText is human-readable text (default).
	FormatText Format = "text"
	// FormatJSON is structured JSON for machine consumption.
	FormatJSON Format = "json"
	// FormatCSV is one row per ranked resume; batch output only.
	FormatCSV Format = "csv"
)

// sectionOrder fixes the rendering order of the section table.
var sectionOrder = []models.SectionKind{
	models.SectionSkills,
	models.SectionExperience,
	models.SectionEducation,
	models.SectionGeneral,
}

// WriteResult writes a single analysis result to w in the given format.
// CSV is not a meaningful shape for one resume and is rejected.
func WriteResult(w io.Writer, result *models.AnalysisResult, format Format) error {
	switch format {
	case FormatJSON:
		return WriteResultJSON(w, result)
	case FormatCSV:
		return fmt.Errorf("csv output requires a batch result")
	default:
		return WriteResultText(w, result)
	}
}

// WriteBatch writes a batch result to w in the given format.
func WriteBatch(w io.Writer, batch *models.BatchResult, format Format) error {
	switch format {
	case FormatJSON:
		return WriteBatchJSON(w, batch)
	case FormatCSV:
		return WriteBatchCSV(w, batch)
	default:
		return WriteBatchText(w, batch)
	}
}

// WriteResultJSON writes an indented JSON document.
func WriteResultJSON(w io.Writer, result *models.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// WriteBatchJSON writes an indented JSON document.
func WriteBatchJSON(w io.Writer, batch *models.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}

// WriteBatchCSV writes one row per ranked resume: rank, resume id, score,
// grade, confidence, and the joined strengths and gaps.
func WriteBatchCSV(w io.Writer, batch *models.BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "resume_id", "overall_score", "grade", "confidence", "strengths", "gaps"}); err != nil {
		return err
	}
	for i, result := range batch.Ranked {
		row := []string{
			strconv.Itoa(i + 1),
			result.ResumeID,
			strconv.FormatFloat(result.OverallScore, 'f', 2, 64),
			string(result.Grade),
			string(result.Confidence),
			strings.Join(result.Strengths, "; "),
			strings.Join(result.Gaps, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultText writes the full human-readable view of one analysis.
func WriteResultText(w io.Writer, result *models.AnalysisResult) error {
	fmt.Fprintf(w, "\nResume %s vs job %s\n", result.ResumeID, result.JobID)
	fmt.Fprintf(w, "Overall: %.1f/100 | Grade: %s | Confidence: %s\n\n",
		result.OverallScore, result.Grade, result.Confidence)

	fmt.Fprintln(w, "Sections:")
	for _, kind := range sectionOrder {
		score, ok := result.SectionScores[kind]
		if !ok {
			continue
		}
		if score.Missing {
			fmt.Fprintf(w, "  %-12s missing\n", kind)
			continue
		}
		fmt.Fprintf(w, "  %-12s %.2f\n", kind, score.Score)
	}
	fmt.Fprintln(w)

	writeList(w, "Strengths", result.Strengths)
	writeList(w, "Gaps", result.Gaps)
	writeList(w, "Key matches", result.KeyMatches)
	writeList(w, "Missing skills", result.MissingSkills)
	writeList(w, "Recommendations", result.Recommendations)

	if result.Reasoning != "" {
		fmt.Fprintf(w, "Reasoning: %s\n", utils.Truncate(result.Reasoning, 400))
	}
	return nil
}

// WriteBatchText writes the human-readable ranking summary.
func WriteBatchText(w io.Writer, batch *models.BatchResult) error {
	fmt.Fprintf(w, "\nRanked %d resumes for job %s", batch.ScoredCount, batch.JobID)
	if n := len(batch.Skipped); n > 0 {
		fmt.Fprintf(w, " (%d skipped)", n)
	}
	if batch.Partial {
		fmt.Fprint(w, " [partial]")
	}
	fmt.Fprint(w, "\n\n")

	if s := batch.Statistics; s != nil {
		fmt.Fprintf(w, "Mean %.1f | Median %.1f | StdDev %.1f | Range %.1f-%.1f\n",
			s.Mean, s.Median, s.StdDev, s.Min, s.Max)
		fmt.Fprintf(w, "Distribution: excellent %d, good %d, fair %d, poor %d\n\n",
			s.Distribution["excellent"], s.Distribution["good"],
			s.Distribution["fair"], s.Distribution["poor"])
	}

	for i, result := range batch.Ranked {
		writeRankedResult(w, i+1, result)
	}

	if len(batch.Skipped) > 0 {
		fmt.Fprintln(w, "--- Skipped ---")
		for _, s := range batch.Skipped {
			fmt.Fprintf(w, "%s: %s\n", s.ResumeID, utils.Truncate(s.Reason, 120))
		}
	}
	return nil
}

func writeRankedResult(w io.Writer, rank int, result *models.AnalysisResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | %s | Score: %.1f | Grade: %s | Confidence: %s\n",
		rank, result.ResumeID, result.OverallScore, result.Grade, result.Confidence)
	if len(result.Strengths) > 0 {
		fmt.Fprintf(w, "Strengths: %s\n", strings.Join(result.Strengths, "; "))
	}
	if len(result.Gaps) > 0 {
		fmt.Fprintf(w, "Gaps: %s\n", strings.Join(result.Gaps, "; "))
	}
	fmt.Fprintln(w)
}

func writeList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	fmt.Fprintln(w)
}

package keyword

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/senko/internal/models"
)

func insightResume(text string) *models.Document {
	return &models.Document{
		ID:   "resume:r1",
		Role: models.RoleResume,
		Sections: map[models.SectionKind][]*models.Chunk{
			models.SectionSkills: {
				{ID: "resume:r1:0", Kind: models.SectionSkills, Text: text, SourceOffset: 0},
			},
		},
	}
}

func TestExtract_MatchesAndMissing(t *testing.T) {
	resume := insightResume("python kubernetes docker node.js")
	insights, err := Extract(resume, "Python and Node.js required. Terraform preferred.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	wantMatches := []string{
		"Relevant experience with python",
		"Relevant experience with node.js",
	}
	if !reflect.DeepEqual(insights.KeyMatches, wantMatches) {
		t.Errorf("KeyMatches = %v, want %v", insights.KeyMatches, wantMatches)
	}
	if !reflect.DeepEqual(insights.MissingSkills, []string{"Terraform"}) {
		t.Errorf("MissingSkills = %v, want [Terraform]", insights.MissingSkills)
	}
}

func TestExtract_CapsAtFive(t *testing.T) {
	resume := insightResume("alpha bravo charlie delta echo foxtrot golf")
	job := "alpha bravo charlie delta echo foxtrot golf hotel juliet kilo lima mango nectar oak"
	insights, err := Extract(resume, job)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(insights.KeyMatches) != 5 {
		t.Errorf("KeyMatches = %v, want 5 entries", insights.KeyMatches)
	}
	if len(insights.MissingSkills) != 5 {
		t.Errorf("MissingSkills = %v, want 5 entries", insights.MissingSkills)
	}
	// First-appearance order within each list.
	if insights.KeyMatches[0] != "Relevant experience with alpha" {
		t.Errorf("KeyMatches[0] = %q", insights.KeyMatches[0])
	}
	if insights.MissingSkills[0] != "Hotel" {
		t.Errorf("MissingSkills[0] = %q", insights.MissingSkills[0])
	}
}

func TestExtract_EmptyResume(t *testing.T) {
	resume := &models.Document{
		ID:       "resume:r1",
		Role:     models.RoleResume,
		Sections: map[models.SectionKind][]*models.Chunk{},
	}
	insights, err := Extract(resume, "Kubernetes required.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(insights.KeyMatches) != 0 {
		t.Errorf("KeyMatches = %v, want none for empty resume", insights.KeyMatches)
	}
	if !reflect.DeepEqual(insights.MissingSkills, []string{"Kubernetes"}) {
		t.Errorf("MissingSkills = %v, want [Kubernetes]", insights.MissingSkills)
	}
}

func TestExtractTerms(t *testing.T) {
	got := extractTerms("Senior C++ and C# developer, Node.js (Python) Python with years of experience")
	want := []string{"senior", "c++", "c#", "developer", "node.js", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractTerms = %v, want %v", got, want)
	}
}

func TestExtractTerms_DropsNoise(t *testing.T) {
	terms := extractTerms("We are looking for a strong team player with 5 years experience!")
	for _, term := range terms {
		if stopTerms[term] {
			t.Errorf("stop term %q leaked through", term)
		}
		if !strings.ContainsFunc(term, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
			t.Errorf("letterless term %q leaked through", term)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"python", "Python"},
		{"node.js", "Node.Js"},
		{"c++", "C++"},
		{"machine learning", "Machine Learning"},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

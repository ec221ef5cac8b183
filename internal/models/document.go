// Package models defines core data structures for documents, section scores, and analysis results.
package models

import "sort"

// Role identifies which side of an analysis a document belongs to.
type Role string

const (
	// RoleResume marks a candidate resume document.
	RoleResume Role = "resume"
	// RoleJobDescription marks a job description document.
	RoleJobDescription Role = "job_description"
)

// SectionKind is the semantic category a chunk is classified into.
type SectionKind string

const (
	SectionSkills     SectionKind = "skills"
	SectionExperience SectionKind = "experience"
	SectionEducation  SectionKind = "education"
	SectionGeneral    SectionKind = "general"
)

// AllSectionKinds returns every section kind in fixed order.
// Aggregation iterates this order so results are deterministic.
func AllSectionKinds() []SectionKind {
	return []SectionKind{SectionSkills, SectionExperience, SectionEducation, SectionGeneral}
}

// Valid reports whether k is one of the defined section kinds.
func (k SectionKind) Valid() bool {
	switch k {
	case SectionSkills, SectionExperience, SectionEducation, SectionGeneral:
		return true
	}
	return false
}

// Chunk is a bounded span of document text, the unit of embedding and retrieval.
type Chunk struct {
	ID   string      `json:"id"`
	Text string      `json:"text"`
	Kind SectionKind `json:"kind"`
	// Embedding is computed lazily during scoring or index build and cached
	// on the chunk for the lifetime of the analysis request.
	Embedding []float32 `json:"-"`
	// SourceOffset is the byte offset of Text within the whitespace-normalized
	// document text.
	SourceOffset int `json:"source_offset"`
}

// Document is a segmented resume or job description.
// Treat it as immutable once returned by the segmenter; the only sanctioned
// mutation is the lazy Embedding fill on its chunks.
type Document struct {
	ID       string                   `json:"id"`
	Role     Role                     `json:"role"`
	RawText  string                   `json:"-"`
	Sections map[SectionKind][]*Chunk `json:"sections"`
}

// AllChunks returns every chunk of the document ordered by SourceOffset.
// Joining the returned texts with single spaces reproduces the
// whitespace-normalized raw text.
func (d *Document) AllChunks() []*Chunk {
	var chunks []*Chunk
	for _, kind := range AllSectionKinds() {
		chunks = append(chunks, d.Sections[kind]...)
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].SourceOffset < chunks[j].SourceOffset
	})
	return chunks
}

// ChunkCount returns the total number of chunks across all sections.
func (d *Document) ChunkCount() int {
	n := 0
	for _, chunks := range d.Sections {
		n += len(chunks)
	}
	return n
}

// HasSection reports whether the document has at least one chunk of the given kind.
func (d *Document) HasSection(kind SectionKind) bool {
	return len(d.Sections[kind]) > 0
}

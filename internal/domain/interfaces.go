package domain

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultDocumentType tags documents stored without an explicit type.
const DefaultDocumentType = "general"

// Document is one stored summary owned by a single user.
type Document struct {
	ID        string
	UserID    string
	Timestamp time.Time
	Type      string
	Content   Mapping
	// Text is the flattened search string derived from Content at insertion.
	Text string
}

// MarshalJSON renders the document with snake_case keys.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Timestamp time.Time `json:"timestamp"`
		Type      string    `json:"type"`
		Content   Mapping   `json:"content"`
		Text      string    `json:"text_representation"`
	}{d.ID, d.UserID, d.Timestamp, d.Type, d.Content, d.Text})
}

// SearchResult is an indexed row matched by a similarity search.
// Position is the document's ordinal within the owning user's log.
type SearchResult struct {
	Position int
	Score    float64
}

// Vectorizer turns a corpus into sparse term-weighted vectors and projects
// later text into the same space. A Vectorizer is fitted once per corpus.
type Vectorizer interface {
	Name() string
	FitTransform(corpus []string) ([]SparseVector, error)
	Transform(text string) (SparseVector, error)
	Dimension() int
}

// VectorStore holds one fitted index and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(positions []int, vectors []SparseVector) error
	Search(vector SparseVector, topK int) ([]SearchResult, error)
	Len() int
	Clear() error
}

// Summarizer produces a brief summary of the provided text.
// Remote implementations honour ctx for cancellation and deadlines.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

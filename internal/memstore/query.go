package memstore

import (
	"fmt"
	"strings"

	"recall/internal/domain"
)

// Query returns userID's documents most relevant to queryText, or the most
// recent ones when no query is given or no index is available.
//
// Fallback results hold the last limit documents oldest first. Ranked
// results are ordered by descending cosine similarity, ties by insertion
// order, and only include documents scoring above the relevance floor; when
// none do the result is ResultNoMatch. limit <= 0 selects the default.
func (s *Store) Query(userID, queryText string, limit int) domain.QueryResult {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	ul := s.lookup(userID)
	if ul == nil {
		return domain.QueryResult{Kind: domain.ResultNoData}
	}
	ul.mu.RLock()
	defer ul.mu.RUnlock()
	if len(ul.docs) == 0 {
		return domain.QueryResult{Kind: domain.ResultNoData}
	}

	queryText = strings.TrimSpace(queryText)
	switch {
	case queryText == "":
		return s.recent(ul, limit, domain.FallbackNoQuery)
	case ul.index == nil:
		return s.recent(ul, limit, domain.FallbackNoIndex)
	}

	docs, scores, err := s.rank(ul, queryText, limit)
	if err != nil {
		s.log.Warn("similarity query failed; using recent documents", "user_id", userID, "error", err)
		return s.recent(ul, limit, domain.FallbackSimilarityFailed)
	}
	if len(docs) == 0 {
		return domain.QueryResult{Kind: domain.ResultNoMatch, Documents: []domain.Document{}, Lines: []string{}}
	}
	return domain.QueryResult{Kind: domain.ResultRanked, Documents: docs, Scores: scores, Lines: s.lines(docs)}
}

func (s *Store) rank(ul *userLog, queryText string, limit int) ([]domain.Document, []float64, error) {
	idx := ul.index
	vec, err := idx.vectorizer.Transform(queryText)
	if err != nil {
		return nil, nil, fmt.Errorf("transform query: %w", err)
	}
	results, err := idx.storage.Search(vec, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("search index: %w", err)
	}
	var (
		docs   []domain.Document
		scores []float64
	)
	for _, r := range results {
		if len(docs) == limit {
			break
		}
		if r.Score <= s.opts.RelevanceFloor {
			// results are sorted, nothing further can clear the floor
			break
		}
		if r.Position < 0 || r.Position >= len(ul.docs) {
			return nil, nil, fmt.Errorf("index row %d outside log of %d documents", r.Position, len(ul.docs))
		}
		docs = append(docs, cloneDocument(ul.docs[r.Position]))
		scores = append(scores, r.Score)
	}
	return docs, scores, nil
}

func (s *Store) recent(ul *userLog, limit int, reason domain.FallbackReason) domain.QueryResult {
	start := len(ul.docs) - limit
	if start < 0 {
		start = 0
	}
	docs := make([]domain.Document, 0, len(ul.docs)-start)
	for _, d := range ul.docs[start:] {
		docs = append(docs, cloneDocument(d))
	}
	return domain.QueryResult{Kind: domain.ResultFallback, Reason: reason, Documents: docs, Lines: s.lines(docs)}
}

func (s *Store) lines(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = s.formatLine(d)
	}
	return out
}

// formatLine renders "[YYYY-MM-DD] type: excerpt...".
func (s *Store) formatLine(d domain.Document) string {
	text := d.Text
	if v, ok := d.Content.Get(s.opts.SummaryField); ok {
		text = v.Text()
	}
	return fmt.Sprintf("[%s] %s: %s...", d.Timestamp.Format("2006-01-02"), d.Type, excerpt(text, s.opts.ExcerptRunes))
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package summarizer

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"recall/internal/embedding/tfidf"
)

// DefaultMaxSentences bounds a summary when no limit is configured.
const DefaultMaxSentences = 3

// ErrEmptyInput is returned for blank activity logs.
var ErrEmptyInput = errors.New("nothing to summarize")

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
// It runs offline and stands in for an LLM when none is configured.
type FrequencySummarizer struct {
	maxSentences int
	stopwords    map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker keeping
// at most maxSentences sentences.
func NewFrequencySummarizer(maxSentences int) *FrequencySummarizer {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &FrequencySummarizer{
		maxSentences: maxSentences,
		stopwords:    tfidf.EnglishStopwords(),
	}
}

// Summarize returns the highest-scoring sentences in their original order.
func (s *FrequencySummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return text, nil
	}
	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		sscore := 0.0
		for _, tok := range toks {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	n := s.maxSentences
	if n > len(scores) {
		n = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, n)
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"recall/internal/domain"
)

// DefaultMaxFeatures caps the vocabulary when no option overrides it.
const DefaultMaxFeatures = 1000

var (
	// ErrEmptyCorpus is returned when fitting on zero documents.
	ErrEmptyCorpus = errors.New("empty corpus for TF-IDF fit")
	// ErrEmptyVocabulary is returned when no token survives stop-word filtering.
	ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain only stop words")
	// ErrDegenerateVocabulary is returned when the corpus reduces to one term.
	ErrDegenerateVocabulary = errors.New("degenerate vocabulary; documents reduce to a single term")
	// ErrNotFitted is returned by Transform before a successful fit.
	ErrNotFitted = errors.New("tfidf vectorizer not fitted")
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Vectorizer implements bag-of-words TF-IDF with smoothed IDF and L2
// normalisation. Raw term counts are weighted by idf = ln((1+n)/(1+df)) + 1.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	dimension   int
	fitted      bool
	maxFeatures int
	stopwords   map[string]struct{}
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithMaxFeatures caps the vocabulary at n terms, keeping the most frequent.
// n <= 0 disables the cap.
func WithMaxFeatures(n int) Option {
	return func(v *Vectorizer) { v.maxFeatures = n }
}

// WithStopwords replaces the stop-word list. A nil slice disables filtering.
func WithStopwords(words []string) Option {
	return func(v *Vectorizer) {
		v.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			v.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// NewVectorizer creates an unfitted TF-IDF vectorizer.
func NewVectorizer(opts ...Option) *Vectorizer {
	v := &Vectorizer{
		vocabulary:  make(map[string]int),
		maxFeatures: DefaultMaxFeatures,
		stopwords:   EnglishStopwords(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name returns the identifier of this vectorizer implementation.
func (v *Vectorizer) Name() string { return "tfidf" }

// Dimension returns the size of the fitted vocabulary.
func (v *Vectorizer) Dimension() int { return v.dimension }

// Vocabulary returns the fitted terms in column order.
func (v *Vectorizer) Vocabulary() []string {
	terms := make([]string, v.dimension)
	for term, idx := range v.vocabulary {
		terms[idx] = term
	}
	return terms
}

// FitTransform learns the vocabulary and IDF from corpus and returns one
// vector per document. On error the vectorizer keeps its previous fit.
func (v *Vectorizer) FitTransform(corpus []string) ([]domain.SparseVector, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}
	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	tf := make(map[string]int)
	for i, text := range corpus {
		tokens := v.tokenize(text)
		docs[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	switch len(terms) {
	case 0:
		return nil, ErrEmptyVocabulary
	case 1:
		return nil, ErrDegenerateVocabulary
	}
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}
	// Create stable ordering for vocabulary
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.vocabulary = vocabulary
	v.idf = idf
	v.dimension = len(terms)
	v.fitted = true

	out := make([]domain.SparseVector, len(docs))
	for i, tokens := range docs {
		out[i] = v.weigh(tokens)
	}
	return out, nil
}

// Transform projects text into the fitted space. Out-of-vocabulary terms
// are dropped; text with no known terms yields an empty vector.
func (v *Vectorizer) Transform(text string) (domain.SparseVector, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	return v.weigh(v.tokenize(text)), nil
}

func (v *Vectorizer) weigh(tokens []string) domain.SparseVector {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	vec := make(domain.SparseVector, len(counts))
	for idx, c := range counts {
		vec[idx] = float64(c) * v.idf[idx]
	}
	// L2 normalize
	norm := vec.Norm()
	if norm > 0 {
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

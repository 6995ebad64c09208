// Package memstore is the per-user memory core: an append-only document log
// per user, a TF-IDF similarity index rebuilt on every write, a query engine
// with recency fallback, and a trend reporter.
//
// A Store is safe for concurrent use. Writes for one user are serialised;
// different users never contend beyond a short map lookup.
package memstore

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"recall/internal/domain"
	"recall/internal/embedding/tfidf"
	"recall/internal/logging"
	"recall/internal/vectorstore"
	"recall/internal/vectorstore/memory"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultMinDocuments   = 2
	DefaultRelevanceFloor = 0.1
	DefaultLimit          = 5
	DefaultExcerptRunes   = 200
	DefaultSummaryField   = "llm_summary"
	DefaultTrendWindow    = 4
)

// Options configures a Store. Zero values select the defaults above.
type Options struct {
	MinDocuments   int
	RelevanceFloor float64
	DefaultLimit   int
	ExcerptRunes   int
	SummaryField   string
	TrendWindow    int

	// NewVectorizer builds an unfitted vectorizer for each rebuild.
	NewVectorizer func() domain.Vectorizer
	// NewStorage builds the vector store holding a rebuilt index.
	NewStorage vectorstore.Factory
	Logger     *slog.Logger
	Now        func() time.Time
}

func (o *Options) applyDefaults() {
	if o.MinDocuments <= 0 {
		o.MinDocuments = DefaultMinDocuments
	}
	if o.RelevanceFloor == 0 {
		o.RelevanceFloor = DefaultRelevanceFloor
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = DefaultLimit
	}
	if o.ExcerptRunes <= 0 {
		o.ExcerptRunes = DefaultExcerptRunes
	}
	if o.SummaryField == "" {
		o.SummaryField = DefaultSummaryField
	}
	if o.TrendWindow <= 0 {
		o.TrendWindow = DefaultTrendWindow
	}
	if o.NewVectorizer == nil {
		o.NewVectorizer = func() domain.Vectorizer { return tfidf.NewVectorizer() }
	}
	if o.NewStorage == nil {
		o.NewStorage = func() vectorstore.Storage { return memory.NewStorage() }
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Store holds every user's documents and indexes in process memory.
type Store struct {
	opts  Options
	log   *slog.Logger
	mu    sync.RWMutex
	users map[string]*userLog
}

type userLog struct {
	mu    sync.RWMutex
	docs  []domain.Document
	index *userIndex
}

// userIndex is one fitted vector space over the first size documents.
type userIndex struct {
	vectorizer domain.Vectorizer
	storage    domain.VectorStore
	size       int
}

// New creates an empty Store.
func New(opts Options) *Store {
	opts.applyDefaults()
	return &Store{
		opts:  opts,
		log:   logging.OrDiscard(opts.Logger).With("component", "memstore"),
		users: make(map[string]*userLog),
	}
}

// Store appends summary to userID's log and rebuilds that user's index.
// An empty docType stores the document as "general". The summary is copied,
// so later changes by the caller are not observed.
func (s *Store) Store(userID string, summary domain.Mapping, docType string) domain.Document {
	if docType == "" {
		docType = domain.DefaultDocumentType
	}
	ul := s.userLogFor(userID)

	ul.mu.Lock()
	defer ul.mu.Unlock()

	content := summary.Clone()
	doc := domain.Document{
		ID:        userID + "_" + strconv.Itoa(len(ul.docs)),
		UserID:    userID,
		Timestamp: s.opts.Now(),
		Type:      docType,
		Content:   content,
		Text:      Project(content),
	}
	ul.docs = append(ul.docs, doc)
	s.rebuild(userID, ul)

	s.log.Debug("stored document", "user_id", userID, "id", doc.ID, "type", docType)
	return cloneDocument(doc)
}

// Documents returns a copy of userID's log in insertion order.
func (s *Store) Documents(userID string) []domain.Document {
	ul := s.lookup(userID)
	if ul == nil {
		return nil
	}
	ul.mu.RLock()
	defer ul.mu.RUnlock()
	out := make([]domain.Document, len(ul.docs))
	for i, d := range ul.docs {
		out[i] = cloneDocument(d)
	}
	return out
}

// HasIndex reports whether userID currently has a usable similarity index.
func (s *Store) HasIndex(userID string) bool {
	ul := s.lookup(userID)
	if ul == nil {
		return false
	}
	ul.mu.RLock()
	defer ul.mu.RUnlock()
	return ul.index != nil
}

// Users returns every user with at least one document, sorted.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Store) lookup(userID string) *userLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID]
}

func (s *Store) userLogFor(userID string) *userLog {
	if ul := s.lookup(userID); ul != nil {
		return ul
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ul, ok := s.users[userID]
	if !ok {
		ul = &userLog{}
		s.users[userID] = ul
	}
	return ul
}

func cloneDocument(d domain.Document) domain.Document {
	d.Content = d.Content.Clone()
	return d
}

package memory

import (
	"errors"
	"sort"
	"sync"

	"recall/internal/domain"
)

var (
	// ErrInvalidDimension is returned by Init for non-positive dimensions.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrLengthMismatch is returned when positions and vectors disagree in length.
	ErrLengthMismatch = errors.New("positions and vectors length mismatch")
	// ErrDimensionMismatch is returned for vectors outside the initialised space.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	positions []int
	vectors   []domain.SparseVector
}

// NewStorage returns an uninitialised store.
func NewStorage() *Storage { return &Storage{} }

// Init resets the store to hold vectors of the given dimension.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.positions = nil
	s.vectors = nil
	return nil
}

// Upsert appends rows; positions identify the documents the vectors describe.
func (s *Storage) Upsert(positions []int, vectors []domain.SparseVector) error {
	if len(positions) != len(vectors) {
		return ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if v.MaxIndex() >= s.dimension {
			return ErrDimensionMismatch
		}
	}
	s.positions = append(s.positions, positions...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search scores every row against vector and returns the topK best, highest
// first. Equal scores keep row order. topK <= 0 returns every row.
func (s *Storage) Search(vector domain.SparseVector, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vector.MaxIndex() >= s.dimension {
		return nil, ErrDimensionMismatch
	}
	results := make([]domain.SearchResult, len(s.vectors))
	for i, row := range s.vectors {
		results[i] = domain.SearchResult{Position: s.positions[i], Score: row.Cosine(vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of stored rows.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Clear drops every row but keeps the dimension.
func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = nil
	s.vectors = nil
	return nil
}

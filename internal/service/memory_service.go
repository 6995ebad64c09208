package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recall/internal/domain"
	"recall/internal/logging"
)

// DefaultRememberType tags summaries produced by Remember when no type is given.
const DefaultRememberType = "voice_log"

// Content keys written by Remember.
const (
	SummaryKey  = "llm_summary"
	RawInputKey = "raw_input"
)

var (
	// ErrInvalidUserID is returned for blank user IDs.
	ErrInvalidUserID = errors.New("user id must not be empty")
	// ErrNoSummarizer is returned by Remember when no oracle is configured.
	ErrNoSummarizer = errors.New("no summarizer configured")
	// ErrOracle wraps failures of the summarization oracle.
	ErrOracle = errors.New("summarizer failed")
)

// Memory is the memory core the service drives.
type Memory interface {
	Store(userID string, summary domain.Mapping, docType string) domain.Document
	Query(userID, queryText string, limit int) domain.QueryResult
	Trends(userID string, weeks int) domain.TrendReport
}

// Options configures a MemoryService.
type Options struct {
	Summarizer domain.Summarizer
	// OracleTimeout bounds one Summarize call. Zero means no extra deadline.
	OracleTimeout time.Duration
	// TrendWindow is passed to Memory.Trends by Recall. Zero selects the store default.
	TrendWindow int
	Logger      *slog.Logger
}

// MemoryService is the application layer over the memory core.
type MemoryService struct {
	memory Memory
	opts   Options
	log    *slog.Logger
}

// RememberResult is what Remember stored.
type RememberResult struct {
	Document domain.Document `json:"document"`
	Summary  string          `json:"summary"`
}

// MemoryReport combines a query result with the user's trends.
type MemoryReport struct {
	Memory    string             `json:"memory"`
	Result    domain.QueryResult `json:"-"`
	Trends    domain.TrendReport `json:"trends"`
	QueryUsed *string            `json:"query_used"`
}

// NewMemoryService wires a service around memory.
func NewMemoryService(memory Memory, opts Options) *MemoryService {
	return &MemoryService{memory: memory, opts: opts, log: logging.OrDiscard(opts.Logger)}
}

// StoreSummary appends a structured summary to userID's log.
func (s *MemoryService) StoreSummary(ctx context.Context, userID string, summary domain.Mapping, docType string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Document{}, ErrInvalidUserID
	}
	doc := s.memory.Store(userID, summary, docType)
	s.log.Debug("summary stored", "user_id", userID, "doc_id", doc.ID, "type", doc.Type)
	return doc, nil
}

// Remember summarizes a raw activity log with the oracle and stores the
// result together with the raw input. Nothing is stored when the oracle fails.
func (s *MemoryService) Remember(ctx context.Context, userID, rawInput, docType string) (RememberResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RememberResult{}, ErrInvalidUserID
	}
	if s.opts.Summarizer == nil {
		return RememberResult{}, ErrNoSummarizer
	}
	if docType == "" {
		docType = DefaultRememberType
	}

	octx := ctx
	if s.opts.OracleTimeout > 0 {
		var cancel context.CancelFunc
		octx, cancel = context.WithTimeout(ctx, s.opts.OracleTimeout)
		defer cancel()
	}
	start := time.Now()
	summary, err := s.opts.Summarizer.Summarize(octx, rawInput)
	if err != nil {
		s.log.Warn("summarizer failed", "user_id", userID, "error", err)
		return RememberResult{}, fmt.Errorf("%w: %w", ErrOracle, err)
	}
	s.log.Debug("summarized activity log", "user_id", userID, "elapsed", time.Since(start))

	content := domain.MappingOf(SummaryKey, summary, RawInputKey, rawInput)
	doc, err := s.StoreSummary(ctx, userID, content, docType)
	if err != nil {
		return RememberResult{}, err
	}
	return RememberResult{Document: doc, Summary: summary}, nil
}

// Recall queries userID's memory and reports trends alongside. A blank query
// returns the most recent summaries.
func (s *MemoryService) Recall(ctx context.Context, userID, query string, limit int) MemoryReport {
	res := s.memory.Query(userID, query, limit)
	report := MemoryReport{
		Memory: res.Text(),
		Result: res,
		Trends: s.memory.Trends(userID, s.opts.TrendWindow),
	}
	if q := strings.TrimSpace(query); q != "" {
		report.QueryUsed = &q
	}
	s.log.Debug("memory recalled", "user_id", userID, "kind", res.Kind.String(), "reason", res.Reason.String(), "results", len(res.Documents))
	return report
}

// Trends reports userID's trends over the given window.
func (s *MemoryService) Trends(ctx context.Context, userID string, weeks int) domain.TrendReport {
	return s.memory.Trends(userID, weeks)
}

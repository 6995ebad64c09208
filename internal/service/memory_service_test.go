package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall/internal/domain"
	"recall/internal/memstore"
)

type stubSummarizer struct {
	out   string
	err   error
	calls int
	input string
	ctx   context.Context
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.calls++
	s.input = text
	s.ctx = ctx
	return s.out, s.err
}

func newTestService(t *testing.T, sum domain.Summarizer) (*MemoryService, *memstore.Store) {
	t.Helper()
	store := memstore.New(memstore.Options{
		Now: func() time.Time { return time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC) },
	})
	return NewMemoryService(store, Options{Summarizer: sum, OracleTimeout: time.Second}), store
}

func TestStoreSummary(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	doc, err := svc.StoreSummary(ctx, "u1", domain.MappingOf("llm_summary", "focus"), "analysis")
	require.NoError(t, err)
	assert.Equal(t, "u1_0", doc.ID)
	assert.Equal(t, "analysis", doc.Type)
	assert.Len(t, store.Documents("u1"), 1)

	_, err = svc.StoreSummary(ctx, "  ", domain.MappingOf("a", 1), "")
	assert.ErrorIs(t, err, ErrInvalidUserID)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.StoreSummary(cancelled, "u1", domain.MappingOf("a", 1), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, store.Documents("u1"), 1)
}

func TestRemember(t *testing.T) {
	sum := &stubSummarizer{out: "Focused coding morning."}
	svc, store := newTestService(t, sum)

	res, err := svc.Remember(context.Background(), "u1", "coded 9 to 12, no meetings", "")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.calls)
	assert.Equal(t, "coded 9 to 12, no meetings", sum.input)
	_, hasDeadline := sum.ctx.Deadline()
	assert.True(t, hasDeadline)

	assert.Equal(t, "Focused coding morning.", res.Summary)
	assert.Equal(t, DefaultRememberType, res.Document.Type)
	assert.Equal(t, []string{SummaryKey, RawInputKey}, res.Document.Content.Keys())
	assert.Equal(t, "llm_summary: Focused coding morning. raw_input: coded 9 to 12, no meetings", res.Document.Text)

	docs := store.Documents("u1")
	require.Len(t, docs, 1)
	assert.Equal(t, res.Document.ID, docs[0].ID)
}

func TestRemember_Errors(t *testing.T) {
	ctx := context.Background()

	svc, store := newTestService(t, &stubSummarizer{err: errors.New("rate limited")})
	_, err := svc.Remember(ctx, "u1", "log", "voice_log")
	assert.ErrorIs(t, err, ErrOracle)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Empty(t, store.Documents("u1"))

	_, err = svc.Remember(ctx, "", "log", "")
	assert.ErrorIs(t, err, ErrInvalidUserID)

	noOracle, _ := newTestService(t, nil)
	_, err = noOracle.Remember(ctx, "u1", "log", "")
	assert.ErrorIs(t, err, ErrNoSummarizer)
}

func TestRecall(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	empty := svc.Recall(ctx, "nobody", "focus", 5)
	assert.Equal(t, domain.NoDataMessage, empty.Memory)
	assert.True(t, empty.Trends.NoData)
	require.NotNil(t, empty.QueryUsed)
	assert.Equal(t, "focus", *empty.QueryUsed)

	for _, s := range []string{"Deep focus morning", "Meetings all afternoon", "Code review session"} {
		_, err := svc.StoreSummary(ctx, "u1", domain.MappingOf("llm_summary", s), "voice_log")
		require.NoError(t, err)
	}

	ranked := svc.Recall(ctx, "u1", "focus", 5)
	assert.Equal(t, domain.ResultRanked, ranked.Result.Kind)
	assert.Equal(t, "[2026-10-14] voice_log: Deep focus morning...", ranked.Memory)
	assert.Equal(t, 3, ranked.Trends.SummaryCount)

	recent := svc.Recall(ctx, "u1", " ", 2)
	assert.Nil(t, recent.QueryUsed)
	assert.Equal(t, domain.ResultFallback, recent.Result.Kind)
	assert.Equal(t, domain.FallbackNoQuery, recent.Result.Reason)
	assert.Equal(t, "[2026-10-14] voice_log: Meetings all afternoon...\n[2026-10-14] voice_log: Code review session...", recent.Memory)
}

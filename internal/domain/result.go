package domain

import (
	"encoding/json"
	"strings"
)

// NoDataMessage is rendered for users with nothing stored.
const NoDataMessage = "No previous data found."

// NoTrendDataMessage is reported by trends for users with nothing stored.
const NoTrendDataMessage = "No data available"

// ResultKind tells callers which branch produced a QueryResult.
type ResultKind int

const (
	// ResultNoData means the user has no stored documents.
	ResultNoData ResultKind = iota
	// ResultNoMatch means ranking ran but nothing cleared the relevance floor.
	ResultNoMatch
	// ResultRanked holds documents ordered by similarity.
	ResultRanked
	// ResultFallback holds the most recent documents.
	ResultFallback
)

func (k ResultKind) String() string {
	switch k {
	case ResultNoData:
		return "no_data"
	case ResultNoMatch:
		return "no_match"
	case ResultRanked:
		return "ranked"
	case ResultFallback:
		return "recent"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ResultKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// FallbackReason records why a query returned recent documents.
type FallbackReason int

const (
	FallbackNone FallbackReason = iota
	FallbackNoQuery
	FallbackNoIndex
	FallbackSimilarityFailed
)

func (r FallbackReason) String() string {
	switch r {
	case FallbackNone:
		return ""
	case FallbackNoQuery:
		return "no_query"
	case FallbackNoIndex:
		return "no_index"
	case FallbackSimilarityFailed:
		return "similarity_failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r FallbackReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// QueryResult is the outcome of a memory query. Documents, Scores and Lines
// are aligned; Scores is only populated for ResultRanked.
type QueryResult struct {
	Kind      ResultKind     `json:"kind"`
	Reason    FallbackReason `json:"reason,omitempty"`
	Documents []Document     `json:"documents"`
	Scores    []float64      `json:"scores,omitempty"`
	Lines     []string       `json:"lines"`
}

// Text renders the result as a newline-joined block.
func (r QueryResult) Text() string {
	if r.Kind == ResultNoData {
		return NoDataMessage
	}
	return strings.Join(r.Lines, "\n")
}

// TrendReport summarises a user's recent documents. When NoData is set the
// remaining fields are meaningless and the report encodes as an error object.
type TrendReport struct {
	NoData            bool
	ProductivityTrend string
	FocusPattern      string
	MeetingLoad       string
	ContextSwitches   string
	SummaryCount      int
	DataRange         string
}

// MarshalJSON implements json.Marshaler.
func (r TrendReport) MarshalJSON() ([]byte, error) {
	if r.NoData {
		return json.Marshal(map[string]string{"error": NoTrendDataMessage})
	}
	return json.Marshal(struct {
		ProductivityTrend string `json:"productivity_trend"`
		FocusPattern      string `json:"focus_pattern"`
		MeetingLoad       string `json:"meeting_load"`
		ContextSwitches   string `json:"context_switches"`
		SummaryCount      int    `json:"summary_count"`
		DataRange         string `json:"data_range"`
	}{r.ProductivityTrend, r.FocusPattern, r.MeetingLoad, r.ContextSwitches, r.SummaryCount, r.DataRange})
}

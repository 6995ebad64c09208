package memstore

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"recall/internal/domain"
)

// Trend labels.
const (
	TrendImproving  = "improving"
	TrendDeclining  = "declining"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
	TrendUnknown    = "unknown"
)

// stableBand is the relative change treated as no movement.
const stableBand = 0.05

// signal is one metric tracked across documents, looked up by any of keys.
type signal struct {
	keys    []string
	rising  string
	falling string
}

var (
	productivitySignal = signal{[]string{"productivity_score", "productivity"}, TrendImproving, TrendDeclining}
	focusSignal        = signal{[]string{"deep_work_hours", "focus_hours", "deep_work", "focus_time"}, TrendImproving, TrendDeclining}
	meetingSignal      = signal{[]string{"meeting_hours", "meetings", "meeting_time"}, TrendIncreasing, TrendDecreasing}
	switchSignal       = signal{[]string{"context_switches", "context_switching"}, TrendIncreasing, TrendDecreasing}
)

// nestedMeasureKeys are consulted when a signal key holds a mapping, such as
// {"deep_work": {"duration": "3 hours"}}.
var nestedMeasureKeys = []string{"duration", "count", "hours", "score"}

var leadingNumber = regexp.MustCompile(`^\s*([-+]?\d+(?:\.\d+)?)`)

// Trends reports coarse directions over userID's most recent weeks documents.
// The window is a document count. weeks <= 0 selects the default window.
func (s *Store) Trends(userID string, weeks int) domain.TrendReport {
	if weeks <= 0 {
		weeks = s.opts.TrendWindow
	}
	ul := s.lookup(userID)
	if ul == nil {
		return domain.TrendReport{NoData: true}
	}
	ul.mu.RLock()
	defer ul.mu.RUnlock()
	if len(ul.docs) == 0 {
		return domain.TrendReport{NoData: true}
	}

	start := len(ul.docs) - weeks
	if start < 0 {
		start = 0
	}
	recent := ul.docs[start:]
	return domain.TrendReport{
		ProductivityTrend: productivitySignal.direction(recent),
		FocusPattern:      focusSignal.direction(recent),
		MeetingLoad:       meetingSignal.direction(recent),
		ContextSwitches:   switchSignal.direction(recent),
		SummaryCount:      len(recent),
		DataRange:         fmt.Sprintf("Last %d summaries", weeks),
	}
}

func (sg signal) direction(docs []domain.Document) string {
	var series []float64
	for _, d := range docs {
		if x, ok := findMeasure(d.Content, sg.keys); ok {
			series = append(series, x)
		}
	}
	return classify(series, sg.rising, sg.falling)
}

// classify compares the mean of the later half of series with the earlier half.
func classify(series []float64, rising, falling string) string {
	n := len(series)
	if n < 2 {
		return TrendUnknown
	}
	half := n / 2
	earlier := mean(series[:half])
	later := mean(series[n-half:])
	base := math.Max(math.Abs(earlier), 1e-9)
	rel := (later - earlier) / base
	switch {
	case math.Abs(later-earlier) < 1e-12 || math.Abs(rel) <= stableBand:
		return TrendStable
	case rel > 0:
		return rising
	default:
		return falling
	}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// findMeasure searches m depth-first in field order for the first key in keys
// holding a numeric observation.
func findMeasure(m domain.Mapping, keys []string) (float64, bool) {
	for _, f := range m {
		if contains(keys, f.Key) {
			if x, ok := measure(f.Value); ok {
				return x, true
			}
		}
		if x, ok := findMeasureIn(f.Value, keys); ok {
			return x, true
		}
	}
	return 0, false
}

func findMeasureIn(v domain.Value, keys []string) (float64, bool) {
	if m, ok := v.AsMapping(); ok {
		return findMeasure(m, keys)
	}
	for _, it := range v.Items() {
		if x, ok := findMeasureIn(it, keys); ok {
			return x, true
		}
	}
	return 0, false
}

// measure reads a number from v: numbers directly, strings by their leading
// number ("7/10", "3 hours"), mappings through nestedMeasureKeys.
func measure(v domain.Value) (float64, bool) {
	if x, ok := v.AsNumber(); ok {
		return x, true
	}
	if s, ok := v.AsString(); ok {
		match := leadingNumber.FindStringSubmatch(s)
		if match == nil {
			return 0, false
		}
		x, err := strconv.ParseFloat(match[1], 64)
		return x, err == nil
	}
	if m, ok := v.AsMapping(); ok {
		for _, key := range nestedMeasureKeys {
			if inner, ok := m.Get(key); ok {
				if x, ok := measure(inner); ok {
					return x, true
				}
			}
		}
	}
	return 0, false
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

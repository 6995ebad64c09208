package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMapping_UnmarshalJSON_KeepsOrder(t *testing.T) {
	var m Mapping
	err := json.Unmarshal([]byte(`{"zeta": 1, "alpha": [true, null, 2.5], "mid": {"b": "x", "a": "y"}}`), &m)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	zeta, _ := m.Get("zeta")
	assert.Equal(t, KindInt, zeta.Kind())

	alpha, _ := m.Get("alpha")
	items := alpha.Items()
	require.Len(t, items, 3)
	assert.Equal(t, KindBool, items[0].Kind())
	assert.True(t, items[1].IsNull())
	f, ok := items[2].AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	mid, _ := m.Get("mid")
	inner, ok := mid.AsMapping()
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, inner.Keys())
}

func TestMapping_UnmarshalJSON_RejectsNonObject(t *testing.T) {
	var m Mapping
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"a":`), &m))
}

func TestMapping_UnmarshalYAML_KeepsOrder(t *testing.T) {
	src := `
llm_summary: Deep focus
hours: 3
ratio: 0.75
flag: yes_string
done: true
empty: ~
tags: [a, b]
nested:
  z: 1
  y: two
`
	var m Mapping
	require.NoError(t, yaml.Unmarshal([]byte(src), &m))
	assert.Equal(t, []string{"llm_summary", "hours", "ratio", "flag", "done", "empty", "tags", "nested"}, m.Keys())

	hours, _ := m.Get("hours")
	assert.Equal(t, KindInt, hours.Kind())
	ratio, _ := m.Get("ratio")
	assert.Equal(t, KindFloat, ratio.Kind())
	flag, _ := m.Get("flag")
	assert.Equal(t, KindString, flag.Kind())
	done, _ := m.Get("done")
	assert.Equal(t, KindBool, done.Kind())
	empty, _ := m.Get("empty")
	assert.True(t, empty.IsNull())

	nested, _ := m.Get("nested")
	assert.Equal(t, `{"z": 1, "y": "two"}`, nested.CompactJSON())
}

func TestMapping_UnmarshalYAML_RejectsSequence(t *testing.T) {
	var m Mapping
	assert.Error(t, yaml.Unmarshal([]byte("- a\n- b\n"), &m))
}

func TestValue_JSONRoundTrip(t *testing.T) {
	m := MappingOf("b", 1, "a", []any{"x", 2.5, false}, "c", MappingOf("k", nil))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":["x",2.5,false],"c":{"k":null}}`, string(data))

	var back Mapping
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Keys(), back.Keys())
	assert.Equal(t, Map(m).CompactJSON(), Map(back).CompactJSON())
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "plain", String("plain").Text())
	assert.Equal(t, "-4", Int(-4).Text())
	assert.Equal(t, "3.0", Float(3).Text())
	assert.Equal(t, "1e-07", Float(1e-7).Text())
	assert.Equal(t, "false", Bool(false).Text())
	assert.Equal(t, "null", Null().Text())
	assert.Equal(t, `["a", 1]`, List(String("a"), Int(1)).Text())
	assert.Equal(t, "null", List(Float(math.NaN())).Items()[0].CompactJSON())
}

func TestFromAny(t *testing.T) {
	v := FromAny(map[string]any{"b": 1, "a": "x"})
	m, ok := v.AsMapping()
	require.True(t, ok)
	// Go maps are unordered, so keys are sorted
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	assert.Equal(t, KindList, FromAny([]string{"a"}).Kind())
	assert.Equal(t, KindInt, FromAny(json.Number("12")).Kind())
	assert.Equal(t, KindFloat, FromAny(json.Number("1.5")).Kind())
	assert.Equal(t, KindInt, FromAny(uint8(3)).Kind())
	assert.Equal(t, KindString, FromAny(struct{ A int }{1}).Kind())
}

func TestMapping_WithAndClone(t *testing.T) {
	m := MappingOf("a", 1, "b", 2)
	m2 := m.With("a", String("x"))
	assert.Equal(t, []string{"a", "b"}, m2.Keys())

	orig, _ := m.Get("a")
	assert.Equal(t, KindInt, orig.Kind())

	m3 := m.With("c", Bool(true))
	assert.Equal(t, []string{"a", "b", "c"}, m3.Keys())

	nested := MappingOf("list", []any{"x"})
	c := nested.Clone()
	c[0].Value.list[0] = String("changed")
	s, _ := nested[0].Value.Items()[0].AsString()
	assert.Equal(t, "x", s)
}

func TestSparseVector(t *testing.T) {
	a := SparseVector{0: 3, 1: 4}
	b := SparseVector{1: 1}
	assert.Equal(t, 5.0, a.Norm())
	assert.Equal(t, 4.0, a.Dot(b))
	assert.InDelta(t, 0.8, a.Cosine(b), 1e-12)
	assert.Equal(t, 0.0, a.Cosine(SparseVector{}))
	assert.Equal(t, 1, a.MaxIndex())
	assert.Equal(t, -1, SparseVector{}.MaxIndex())
}

func TestQueryResultText(t *testing.T) {
	assert.Equal(t, NoDataMessage, QueryResult{Kind: ResultNoData}.Text())
	assert.Equal(t, "a\nb", QueryResult{Kind: ResultFallback, Lines: []string{"a", "b"}}.Text())
	assert.Equal(t, "recent", ResultFallback.String())
	assert.Equal(t, "similarity_failed", FallbackSimilarityFailed.String())
}

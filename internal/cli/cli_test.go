package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
- user_id: u1
  type: voice_log
  summary:
    llm_summary: Deep focus morning
- user_id: u1
  type: voice_log
  summary:
    llm_summary: Meetings all afternoon
- user_id: u1
  type: analysis
  summary:
    llm_summary: Code review session
`

type testEnv struct {
	config string
	seed   string
}

func newTestEnv(t *testing.T, configYAML string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{config: filepath.Join(dir, "config.yaml"), seed: filepath.Join(dir, "seed.yaml")}
	require.NoError(t, os.WriteFile(env.seed, []byte(seedYAML), 0o644))
	if configYAML != "" {
		require.NoError(t, os.WriteFile(env.config, []byte(configYAML), 0o644))
	}
	return env
}

func run(t *testing.T, env testEnv, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.config, "--seed", env.seed}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Flags(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"config", "seed", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"query", "trends", "remember", "serve", "tui"})
}

func TestQueryCmd_Ranked(t *testing.T) {
	out, err := run(t, newTestEnv(t, ""), "", "query", "--user", "u1", "deep", "focus")
	require.NoError(t, err)
	assert.Contains(t, out, "voice_log: Deep focus morning...")
	assert.NotContains(t, out, "Meetings")
}

func TestQueryCmd_RecentWithoutQuery(t *testing.T) {
	out, err := run(t, newTestEnv(t, ""), "", "query", "-u", "u1", "-n", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Meetings all afternoon")
	assert.Contains(t, lines[1], "analysis: Code review session")
}

func TestQueryCmd_NoMatchAndNoData(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := run(t, env, "", "query", "-u", "u1", "zebra")
	require.NoError(t, err)
	assert.Contains(t, out, "No relevant summaries found.")

	out, err = run(t, env, "", "query", "-u", "ghost", "focus")
	require.NoError(t, err)
	assert.Contains(t, out, "No previous data found.")
}

func TestQueryCmd_JSON(t *testing.T) {
	out, err := run(t, newTestEnv(t, ""), "", "query", "-u", "u1", "--json", "focus")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ranked", got["kind"])
	assert.Equal(t, "focus", got["query_used"])
	docs := got["documents"].([]any)
	require.Len(t, docs, 1)
	assert.Equal(t, "u1_0", docs[0].(map[string]any)["id"])
}

func TestQueryCmd_RequiresUser(t *testing.T) {
	_, err := run(t, newTestEnv(t, ""), "", "query", "focus")
	assert.ErrorIs(t, err, errNoUser)
}

func TestTrendsCmd(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := run(t, env, "", "trends", "-u", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Trends for u1")
	assert.Contains(t, out, "3 summaries (Last 4 summaries)")

	out, err = run(t, env, "", "trends", "-u", "ghost", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No data available"}`, out)

	out, err = run(t, env, "", "trends", "-u", "u1", "--weeks", "2", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.EqualValues(t, 2, got["summary_count"])
	assert.Equal(t, "Last 2 summaries", got["data_range"])
}

func TestRememberCmd(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := run(t, env, "", "remember", "-u", "u1", "Coded all morning.", "Felt great.")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored u1_3 (voice_log)")
	assert.Contains(t, out, "Coded all morning. Felt great.")

	out, err = run(t, env, "Reviewed pull requests.", "remember", "-u", "u2", "-t", "analysis")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored u2_0 (analysis)")

	_, err = run(t, env, "   ", "remember", "-u", "u2")
	assert.Error(t, err)
}

func TestRememberCmd_UnknownSummarizer(t *testing.T) {
	env := newTestEnv(t, "summarizer:\n  type: crystal_ball\n")
	_, err := run(t, env, "", "remember", "-u", "u1", "log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no summarizer configured")

	// queries still work without an oracle
	out, err := run(t, env, "", "query", "-u", "u1", "focus")
	require.NoError(t, err)
	assert.Contains(t, out, "Deep focus morning")
}

func TestSeedCmd_BadFile(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, os.WriteFile(env.seed, []byte("- type: voice_log\n"), 0o644))
	_, err := run(t, env, "", "query", "-u", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seed")
}

func TestServeCmd_StopsOnCancelledContext(t *testing.T) {
	env := newTestEnv(t, "")
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", env.config, "serve", "--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, cmd.ExecuteContext(ctx))
}

func TestVectorizerFactory_Stopwords(t *testing.T) {
	cfgNone := newTestEnv(t, "index:\n  stopwords: none\n  extra_stopwords: [morning]\n")
	out, err := run(t, cfgNone, "", "query", "-u", "u1", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Meetings all afternoon")

	out, err = run(t, cfgNone, "", "query", "-u", "u1", "morning")
	require.NoError(t, err)
	assert.Contains(t, out, "No relevant summaries found.")
}

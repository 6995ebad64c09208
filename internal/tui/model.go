package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recall/internal/domain"
	"recall/internal/service"
)

// MemoryPort is the TUI-facing subset of the memory service.
type MemoryPort interface {
	Recall(ctx context.Context, userID, query string, limit int) service.MemoryReport
}

// Model is the Bubble Tea model for browsing one user's memory.
type Model struct {
	service   MemoryPort
	userID    string
	limit     int
	input     textinput.Model
	viewport  viewport.Model
	report    service.MemoryReport
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a model for userID showing the most recent summaries.
func New(svc MemoryPort, userID string, limit int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter (empty for recent)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{service: svc, userID: userID, limit: limit, input: ti, viewport: vp}
	m.run("")
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + trends
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.run(strings.TrimSpace(m.input.Value()))
			return m, nil
		case "down":
			if n := len(m.report.Result.Documents); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if n := len(m.report.Result.Documents); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) run(q string) {
	m.report = m.service.Recall(context.Background(), m.userID, q, m.limit)
	m.cursor = 0
	m.lastQuery = q
	m.status = statusLine(m.report.Result, q)
	m.viewport.SetContent(m.renderCurrentResult())
}

func statusLine(res domain.QueryResult, q string) string {
	n := len(res.Documents)
	switch res.Kind {
	case domain.ResultNoData:
		return domain.NoDataMessage
	case domain.ResultNoMatch:
		return fmt.Sprintf("Nothing relevant to %q", q)
	case domain.ResultRanked:
		return fmt.Sprintf("%d results for %q", n, q)
	}
	switch res.Reason {
	case domain.FallbackNoIndex:
		return fmt.Sprintf("%d most recent (not enough summaries to rank)", n)
	case domain.FallbackSimilarityFailed:
		return fmt.Sprintf("%d most recent (ranking failed)", n)
	}
	return fmt.Sprintf("%d most recent", n)
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Recall: " + m.userID)
	trends := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(trendLine(m.report.Trends))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + trends + "\n" + results + "\n" + input + "\n" + status
}

func trendLine(t domain.TrendReport) string {
	if t.NoData {
		return domain.NoTrendDataMessage
	}
	return fmt.Sprintf("productivity %s · focus %s · meetings %s · context switches %s (%s)",
		t.ProductivityTrend, t.FocusPattern, t.MeetingLoad, t.ContextSwitches, t.DataRange)
}

func (m Model) renderCurrentResult() string {
	res := m.report.Result
	if len(res.Documents) == 0 {
		if res.Kind == domain.ResultNoData {
			return domain.NoDataMessage
		}
		return "No results."
	}
	d := res.Documents[m.cursor]
	title := fmt.Sprintf("Memory %d/%d  %s  %s", m.cursor+1, len(res.Documents), d.Timestamp.Format("2006-01-02 15:04"), d.Type)
	if m.cursor < len(res.Scores) {
		title += fmt.Sprintf("  score=%.3f", res.Scores[m.cursor])
	}
	body := highlightBestSentence(d.Text, m.lastQuery)
	return title + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence sharing most words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(trimAll(sentences), " ")
	}
	bestIdx, bestScore := 0, 0
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	out := trimAll(sentences)
	if bestScore > 0 {
		out[bestIdx] = highlightStyle.Render(out[bestIdx])
	}
	return strings.Join(out, " ")
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

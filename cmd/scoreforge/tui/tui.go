// Package tui is an interactive chord-analysis browser: it parses a
// notation file, segments it into chords, and lets the user scroll the
// result with a viewport while the current key stays pinned in the
// header. The header/content/footer layout and lipgloss color palette
// follow the teacher's internal/views.ViewStyles convention.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/schollz/scoreforge/internal/chordanalyzer"
	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/keytheory"
	"github.com/schollz/scoreforge/internal/notation"
	"github.com/schollz/scoreforge/internal/pitch"
)

type styles struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Normal  lipgloss.Style
	Tonic   lipgloss.Style
	Footer  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Normal: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Tonic:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Footer: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Model is the tea.Model driving the chord-analysis browser.
type Model struct {
	source   string
	key      keytheory.IdentifiedKey
	segments []chordanalyzer.Segment
	vp       viewport.Model
	styles   styles
	ready    bool
	err      error
}

// New parses text and builds the browser model.
func New(text string) Model {
	m := Model{source: text, styles: defaultStyles()}

	result, err := notation.ParseDefault(text)
	if err != nil {
		m.err = err
		return m
	}

	var pitches []int
	for _, e := range result.Events {
		if !e.IsRest() {
			pitches = append(pitches, e.Pitch)
		}
	}
	m.key = keytheory.IdentifyKey(chordtable.GetMask(pitches))
	m.segments = chordanalyzer.Analyze(result.Events)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 1
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.vp.SetContent(m.renderSegments())
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("parse error: %v\n", m.err)
	}
	if !m.ready {
		return "loading...\n"
	}

	header := m.styles.Header.Render(fmt.Sprintf("scoreforge  key: %s %s  ", pitch.NewClass(m.key.Key.Root), modeName(m.key.Key.IsMajor))) +
		renderConfidenceBar(m.key.Confidence, 20)
	footer := m.styles.Footer.Render("q: quit   up/down: scroll")

	return strings.Join([]string{header, m.vp.View(), footer}, "\n")
}

func (m Model) renderSegments() string {
	var b strings.Builder
	for _, seg := range m.segments {
		numeral := keytheory.Analyze(seg.Pitches, m.key.Key)
		label := m.styles.Label.Render(fmt.Sprintf("%6s", seg.Offset.String()))
		chord := m.styles.Normal.Render(fmt.Sprintf("%s%s", pitch.NewClass(seg.Chord.RootPC), seg.Chord.Quality))
		fmt.Fprintf(&b, "%s  %-12s %s\n", label, chord, m.styles.Tonic.Render(numeral.Text))
	}
	return b.String()
}

// renderConfidenceBar draws a filled/empty block bar colored from gray to
// green as key-identification confidence rises, via colorful.BlendHcl and
// termenv.Foreground -- the same color-blend-then-termenv-apply idiom as
// the teacher's createVerticalBar level meter, adapted to a single
// horizontal confidence gauge.
func renderConfidenceBar(confidence float64, width int) string {
	low, _ := colorful.Hex("#808080")
	high, _ := colorful.Hex("#29CC4A")
	t := confidence
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	fillColor := low.BlendHcl(high, t)

	filled := int(t*float64(width) + 0.5)
	profile := termenv.ColorProfile()
	bar := strings.Repeat("█", filled) + strings.Repeat("▒", width-filled)
	return termenv.String(bar).Foreground(profile.Color(fillColor.Hex())).String()
}

func modeName(isMajor bool) string {
	if isMajor {
		return "major"
	}
	return "minor"
}

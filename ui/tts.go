package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/voxdemo/internal/coordinator"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sahilm/fuzzy"
)

const (
	poweredBy       = "Powered by Eleven v3 (alpha)"
	pickerMaxHeight = 7
)

func (m model) ttsView() string {
	width := m.panelWidth()
	inner := max(10, width-6)

	var b strings.Builder
	fmt.Fprintln(&b, m.languageSelectorView())
	fmt.Fprintln(&b)

	if m.picker.active {
		fmt.Fprintln(&b, m.picker.view())
	} else {
		fmt.Fprintln(&b, m.sampleTextView(inner))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, m.playbackLine())
	fmt.Fprint(&b, lipgloss.PlaceHorizontal(inner, lipgloss.Center, poweredByStyle.Render(poweredBy)))

	return m.center(panelStyle.Width(width).Render(b.String()))
}

func (m model) languageSelectorView() string {
	if !m.started && len(m.snapshot.Languages) == 0 {
		return m.spinner.View() + " " + subtleStyle.Render("Loading languages"+ellipsis)
	}
	lang := m.snapshot.SelectedLanguage()
	return languageArrowStyle.Render("←") + " " +
		languageStyle.Render(lang.Label()) + " " +
		languageArrowStyle.Render("→") + "  " +
		subtleStyle.Render("l to pick")
}

func (m model) sampleTextView(width int) string {
	text := m.snapshot.Sample.Text
	if text == "" {
		if m.loading() {
			return subtleStyle.Render("Fetching sample" + ellipsis)
		}
		return subtleStyle.Render("No sample loaded.")
	}
	return sampleTextStyle.Render(wordwrap.String(text, width))
}

func (m model) playbackLine() string {
	switch {
	case m.snapshot.Resolving:
		return m.spinner.View() + " " + subtleStyle.Render("Loading sample"+ellipsis)
	case m.snapshot.IsPlaying:
		return playingStyle.Render("▶ Playing") + "  " + subtleStyle.Render("space to pause · d to download")
	case m.snapshot.Sample.Loaded():
		return "⏸ " + m.snapshot.Playback.String() + "  " + subtleStyle.Render("space to play · d to download")
	default:
		return subtleStyle.Render("⏸ nothing to play")
	}
}

// playbackNote is the status bar text when no message is showing.
func (m model) playbackNote() string {
	lang := m.snapshot.SelectedLanguage()
	switch {
	case m.snapshot.Resolving:
		return lang.Name + " · loading"
	case m.snapshot.IsPlaying:
		return lang.Name + " · ▶ playing"
	case m.snapshot.Sample.Loaded():
		return lang.Name + " · ⏸ " + m.snapshot.Playback.String()
	default:
		return lang.Name
	}
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.picker.close()
		return m, nil

	case key.Matches(msg, keys.Choose):
		lang, ok := m.picker.selected()
		m.picker.close()
		if !ok {
			return m, nil
		}
		return m, m.selectLanguage(lang.Code)

	case key.Matches(msg, keys.PickerUp):
		m.picker.moveCursor(-1)
		return m, nil

	case key.Matches(msg, keys.PickerDown):
		m.picker.moveCursor(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	m.picker.filter()
	return m, cmd
}

// pickerModel is the language list with a fuzzy filter.
type pickerModel struct {
	active    bool
	input     textinput.Model
	languages []coordinator.Language
	matches   []pickerMatch
	cursor    int
}

type pickerMatch struct {
	lang    coordinator.Language
	matched []int
}

// languageSource adapts a catalog to fuzzy.Source, matching on the name.
type languageSource []coordinator.Language

func (s languageSource) String(i int) string { return s[i].Name }
func (s languageSource) Len() int            { return len(s) }

func newPickerModel() pickerModel {
	ti := textinput.New()
	ti.Prompt = "Find: "
	ti.PromptStyle = subtleStyle
	ti.Cursor.Style = pickerCursorStyle
	ti.CharLimit = 30
	return pickerModel{input: ti}
}

func (p *pickerModel) open(langs []coordinator.Language, selected string) tea.Cmd {
	p.active = true
	p.languages = langs
	p.input.Reset()
	p.filter()
	for i, mt := range p.matches {
		if mt.lang.Code == selected {
			p.cursor = i
		}
	}
	return p.input.Focus()
}

func (p *pickerModel) close() {
	p.active = false
	p.input.Blur()
}

func (p *pickerModel) filter() {
	p.cursor = 0
	term := strings.TrimSpace(p.input.Value())
	if term == "" {
		p.matches = make([]pickerMatch, len(p.languages))
		for i, l := range p.languages {
			p.matches[i] = pickerMatch{lang: l}
		}
		return
	}

	found := fuzzy.FindFrom(term, languageSource(p.languages))
	p.matches = make([]pickerMatch, len(found))
	for i, f := range found {
		p.matches[i] = pickerMatch{lang: p.languages[f.Index], matched: f.MatchedIndexes}
	}
}

func (p *pickerModel) moveCursor(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = (p.cursor + delta + len(p.matches)) % len(p.matches)
}

func (p pickerModel) selected() (coordinator.Language, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return coordinator.Language{}, false
	}
	return p.matches[p.cursor].lang, true
}

func (p pickerModel) view() string {
	var b strings.Builder
	fmt.Fprintln(&b, p.input.View())

	if len(p.matches) == 0 {
		fmt.Fprint(&b, subtleStyle.Render("  no matches"))
		return b.String()
	}

	// Keep the cursor inside the visible window
	start := 0
	if p.cursor >= pickerMaxHeight {
		start = p.cursor - pickerMaxHeight + 1
	}
	end := min(len(p.matches), start+pickerMaxHeight)

	for i := start; i < end; i++ {
		mt := p.matches[i]
		prefix := "  "
		if i == p.cursor {
			prefix = pickerCursorStyle.Render("> ")
		}
		flag := ""
		if mt.lang.Flag != "" {
			flag = mt.lang.Flag + " "
		}
		fmt.Fprint(&b, prefix+flag+highlightMatches(mt.lang.Name, mt.matched))
		if i+1 < end {
			fmt.Fprintln(&b)
		}
	}
	return b.String()
}

func highlightMatches(s string, matched []int) string {
	if len(matched) == 0 {
		return pickerItemStyle.Render(s)
	}
	hit := make(map[int]struct{}, len(matched))
	for _, i := range matched {
		hit[i] = struct{}{}
	}
	var b strings.Builder
	for i, r := range s {
		if _, ok := hit[i]; ok {
			b.WriteString(pickerMatchStyle.Render(string(r)))
		} else {
			b.WriteString(pickerItemStyle.Render(string(r)))
		}
	}
	return b.String()
}

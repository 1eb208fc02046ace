package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

const (
	heroMarkdown = `# The most realistic voice AI platform

AI voice models and products powering millions of developers, creators, and
enterprises. From low-latency conversational agents to the leading AI voice
generator for voiceovers and audiobooks.
`
	heroFallback = "The most realistic voice AI platform"
	ctaText      = "EXPERIENCE THE FULL AUDIO AI PLATFORM"

	textToSpeechTab = 0
)

var (
	navLinks = []string{"Creative Platform", "Agents Platform", "Developers", "Resources", "Enterprise", "Pricing"}

	tabs = []string{
		"Text to Speech",
		"Agents",
		"Music",
		"Speech to Text",
		"Dubbing",
		"Voice Cloning",
		"ElevenReader",
	}
)

func (m model) shellView() string {
	var b strings.Builder

	fmt.Fprintln(&b, m.navView())
	fmt.Fprintln(&b, m.heroView())
	fmt.Fprintln(&b, m.tabBarView())
	fmt.Fprintln(&b)

	if m.activeTab == textToSpeechTab {
		fmt.Fprintln(&b, m.ttsView())
	} else {
		fmt.Fprintln(&b, m.placeholderView())
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, m.center(ctaStyle.Render(ctaText)+"  "+navPrimaryStyle.Render("SIGN UP")))

	// Push the status bar to the bottom when there is room for it
	body := b.String()
	footer := m.statusBarView()
	if m.showHelp {
		footer += "\n" + m.helpView()
	}
	if gap := m.common.height - lipgloss.Height(body) - lipgloss.Height(footer); gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + footer
}

func (m model) navView() string {
	left := logoView()
	right := navButtonStyle.Render("Log in") + " " + navPrimaryStyle.Render("Sign up")

	links := make([]string, len(navLinks))
	for i, l := range navLinks {
		links[i] = navLinkStyle.Render(l)
	}
	center := strings.Join(links, "  ")

	// Drop the links on narrow terminals
	w := m.common.width
	if ansi.PrintableRuneWidth(left)+ansi.PrintableRuneWidth(center)+ansi.PrintableRuneWidth(right)+4 > w {
		center = ""
	}
	padding := max(0, w-ansi.PrintableRuneWidth(left)-ansi.PrintableRuneWidth(center)-ansi.PrintableRuneWidth(right))
	lpad := padding / 2
	return left + strings.Repeat(" ", lpad) + center + strings.Repeat(" ", padding-lpad) + right
}

func (m model) heroView() string {
	if m.hero == "" {
		return "\n" + m.center(heroFallback) + "\n"
	}
	return m.hero
}

func (m model) tabBarView() string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if i == m.activeTab {
			rendered[i] = activeTabStyle.Render(label)
		} else {
			rendered[i] = tabStyle.Render(label)
		}
	}
	bar := strings.Join(rendered, " ")
	if w := m.common.width; w > 0 && ansi.PrintableRuneWidth(bar) > w {
		bar = truncate.StringWithTail(bar, uint(w), ellipsis) //nolint:gosec
	}
	return m.center(bar)
}

func (m model) placeholderView() string {
	s := placeholderTitleStyle.Render(tabs[m.activeTab]) + "\n\n" +
		subtleStyle.Render("Coming soon. This tab content is not implemented yet.")
	return m.center(panelStyle.Width(m.panelWidth()).Align(lipgloss.Center).Render(s))
}

func (m model) panelWidth() int {
	return max(20, min(m.common.width-4, 100))
}

func (m model) center(s string) string {
	if m.common.width == 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(m.common.width, lipgloss.Center, s)
}

func (m model) statusBarView() string {
	showStatusMessage := m.status.message != ""

	logo := logoView()

	var helpNote string
	if showStatusMessage && !m.status.isError {
		helpNote = statusBarMessageHelpStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	note := m.playbackNote()
	if showStatusMessage {
		note = m.status.message
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	style := statusBarNoteStyle
	switch {
	case showStatusMessage && m.status.isError:
		style = statusBarErrorStyle
	case showStatusMessage:
		style = statusBarMessageStyle
	}
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	return logo + note + emptySpace + helpNote
}

func (m model) helpView() string {
	var s string
	if m.picker.active {
		s = m.help.View(pickerKeyMap{keys})
	} else {
		s = m.help.View(keys)
	}
	if m.common.cfg.DownloadDir != "" {
		s += "\n\n" + "downloads go to " + m.common.cfg.DownloadDir
	}
	s = indent("\n"+s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// COMMANDS

func renderHero(common commonModel) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(common, heroMarkdown)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return heroRenderedMsg("")
		}
		return heroRenderedMsg(s)
	}
}

// This is where the magic happens.
func glamourRender(common commonModel, markdown string) (string, error) {
	if !common.cfg.GlamourEnabled {
		return markdown, nil
	}

	width := common.width
	if common.cfg.GlamourMaxWidth > 0 {
		width = min(int(common.cfg.GlamourMaxWidth), width) //nolint:gosec
	}

	r, err := glamour.NewTermRenderer(
		glamourStyle(common.cfg.GlamourStyle),
		glamour.WithWordWrap(max(0, width-4)),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// glamourStyle picks a renderer style from a style name or JSON path.
func glamourStyle(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == styles.AutoStyle:
		if termenv.HasDarkBackground() {
			return glamour.WithStandardStyle(styles.DarkStyle)
		}
		return glamour.WithStandardStyle(styles.LightStyle)
	case styles.DefaultStyles[style] != nil:
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}

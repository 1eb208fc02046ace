package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	normalFg    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#dddddd"}
	subtleFg    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	fuchsia     = lipgloss.Color("#EE6FF8")
	green       = lipgloss.Color("#04B575")
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	semiDimFg   = lipgloss.AdaptiveColor{Light: "#3C3C3C", Dark: "#9C9C9C"}
	tabActiveBg = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#3A3A3A"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.Color("#5A56E0")).
			Bold(true)

	navLinkStyle    = lipgloss.NewStyle().Foreground(semiDimFg)
	navButtonStyle  = lipgloss.NewStyle().Foreground(normalFg).Padding(0, 1)
	navPrimaryStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#444444"}).
			Padding(0, 1)

	ctaStyle = lipgloss.NewStyle().Bold(true).Foreground(normalFg)

	tabStyle       = lipgloss.NewStyle().Foreground(semiDimFg).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Foreground(normalFg).
			Background(tabActiveBg).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleFg).
			Padding(1, 2)

	poweredByStyle = lipgloss.NewStyle().Bold(true).Foreground(fuchsia)

	languageStyle         = lipgloss.NewStyle().Foreground(normalFg).Bold(true)
	languageArrowStyle    = lipgloss.NewStyle().Foreground(subtleFg)
	pickerCursorStyle     = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
	pickerItemStyle       = lipgloss.NewStyle().Foreground(semiDimFg)
	pickerMatchStyle      = lipgloss.NewStyle().Foreground(green).Underline(true)
	sampleTextStyle       = lipgloss.NewStyle().Foreground(normalFg)
	playingStyle          = lipgloss.NewStyle().Foreground(green)
	subtleStyle           = lipgloss.NewStyle().Foreground(subtleFg)
	errorTitleStyle       = lipgloss.NewStyle().Foreground(cream).Background(red).Padding(0, 1)
	spinnerStyle          = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8E8E8E", Dark: "#747373"})
	placeholderTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(normalFg)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#B6FFE4")).
					Background(green).
					Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

// useHighContrast swaps the dim foregrounds for the normal one.
func useHighContrast() {
	navLinkStyle = navLinkStyle.Foreground(normalFg)
	tabStyle = tabStyle.Foreground(normalFg)
	pickerItemStyle = pickerItemStyle.Foreground(normalFg)
	subtleStyle = subtleStyle.Foreground(normalFg)
	languageArrowStyle = languageArrowStyle.Foreground(normalFg)
}

func logoView() string {
	return logoStyle.Render(" IIVoxDemo ")
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}

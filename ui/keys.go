package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	JumpTab    key.Binding
	NextLang   key.Binding
	PrevLang   key.Binding
	Picker     key.Binding
	Toggle     key.Binding
	Download   key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
	PickerUp   key.Binding
	PickerDown key.Binding
	Choose     key.Binding
	Cancel     key.Binding
}

var keys = keyMap{
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev tab"),
	),
	JumpTab: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "jump to tab"),
	),
	NextLang: key.NewBinding(
		key.WithKeys("right", "L"),
		key.WithHelp("→", "next language"),
	),
	PrevLang: key.NewBinding(
		key.WithKeys("left", "H"),
		key.WithHelp("←", "prev language"),
	),
	Picker: key.NewBinding(
		key.WithKeys("l", "/"),
		key.WithHelp("l", "pick language"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "play/pause"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "download"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy text"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	PickerUp: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	PickerDown: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.PrevLang, k.NextLang, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Download, k.Copy},
		{k.PrevLang, k.NextLang, k.Picker},
		{k.NextTab, k.PrevTab, k.JumpTab},
		{k.Help, k.Quit},
	}
}

type pickerKeyMap struct{ keyMap }

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PickerUp, k.PickerDown, k.Choose, k.Cancel}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

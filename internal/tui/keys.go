package tui

import "github.com/charmbracelet/bubbles/key"

// gridKeyMap defines key bindings for the grid screen
type gridKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Add    key.Binding
	Delete key.Binding
	Reload key.Binding
	Next   key.Binding
	Prev   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k gridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Add, k.Delete, k.Reload, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k gridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev},
		{k.Edit, k.Add, k.Delete, k.Reload},
		{k.Help, k.Quit},
	}
}

// formKeyMap defines key bindings for the edit form
type formKeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Choose  key.Binding
	Cycle   key.Binding
	Suggest key.Binding
	Save    key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Suggest, k.Choose, k.Save, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Cycle},
		{k.Suggest, k.Choose},
		{k.Save, k.Cancel},
	}
}

// confirmKeyMap defines key bindings for the delete confirmation
type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

// FullHelp returns keybindings for the expanded help view
func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Yes, k.No}}
}

type keyMap struct {
	Grid    gridKeyMap
	Form    formKeyMap
	Confirm confirmKeyMap
}

func newKeyMap() keyMap {
	return keyMap{
		Grid: gridKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter/e", "edit")),
			Add:    key.NewBinding(key.WithKeys("a", "insert"), key.WithHelp("a", "add")),
			Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
			Reload: key.NewBinding(key.WithKeys("r", "f5"), key.WithHelp("r", "reload")),
			Next:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
			Prev:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "previous page")),
			Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
			Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		Form: formKeyMap{
			Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
			Choose:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
			Cycle:   key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "change option")),
			Suggest: key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "suggestions")),
			Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		Confirm: confirmKeyMap{
			Yes: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
			No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep")),
		},
	}
}

package views

import "github.com/charmbracelet/bubbles/key"

// BoardKeyMap holds the board view bindings.
type BoardKeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Move   key.Binding
	Drop   key.Binding
	Cancel key.Binding
	Add    key.Binding
	Open   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

// DefaultBoardKeys returns the standard board bindings.
func DefaultBoardKeys() BoardKeyMap {
	return BoardKeyMap{
		Left:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "right")),
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Move:   key.NewBinding(key.WithKeys("m", " "), key.WithHelp("m/space", "move")),
		Drop:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "drop")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Add:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// DetailKeyMap holds the detail dialog bindings.
type DetailKeyMap struct {
	Save       key.Binding
	Delete     key.Binding
	Cancel     key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	PrevStatus key.Binding
	NextStatus key.Binding
}

// DefaultDetailKeys returns the standard detail dialog bindings.
func DefaultDetailKeys() DetailKeyMap {
	return DetailKeyMap{
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab")),
		PrevStatus: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "status")),
		NextStatus: key.NewBinding(key.WithKeys("right", "l")),
	}
}

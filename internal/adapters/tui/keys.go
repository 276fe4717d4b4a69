package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle      key.Binding
	Close       key.Binding
	Quit        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Reload      key.Binding
	Up          key.Binding
	Down        key.Binding
	Increase    key.Binding
	Decrease    key.Binding
	Save        key.Binding
	Reset       key.Binding
	Authorize   key.Binding
	RepayAll    key.Binding
	Consolidate key.Binding
	Start       key.Binding
	Stop        key.Binding
	Query       key.Binding
	Forget      key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	Confirm     key.Binding
	Deny        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:      key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "toggle")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Increase:    key.NewBinding(key.WithKeys("right", "l", "+"), key.WithHelp("→/l", "increase")),
		Decrease:    key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/h", "decrease")),
		Save:        key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Reset:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "reset")),
		Authorize:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "authorize")),
		RepayAll:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "repay all")),
		Consolidate: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "consolidate")),
		Start:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Query:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "query")),
		Forget:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forget")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Confirm:     key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Deny:        key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
	}
}

// tabIndex maps the digit keys 1-9 onto tab positions.
func tabIndex(keyStr string) (int, bool) {
	if len(keyStr) != 1 || keyStr[0] < '1' || keyStr[0] > '9' {
		return 0, false
	}
	return int(keyStr[0] - '1'), true
}

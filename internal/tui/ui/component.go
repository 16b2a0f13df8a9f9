package ui

// MenuHint is one key shortcut shown in the header.
type MenuHint struct {
	Key         string
	Description string
}

// Component is a page of the TUI.
type Component interface {
	// Name labels the page in the breadcrumb bar.
	Name() string
	Hints() []MenuHint
}

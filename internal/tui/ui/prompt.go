package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects how prompt input is interpreted.
type PromptMode int

const (
	// PromptCommand runs ":" commands.
	PromptCommand PromptMode = iota
	// PromptFilter searches contacts by name.
	PromptFilter
	// PromptAttach asks for a file path to stage.
	PromptAttach
)

// Prompt is the one-line input shown above the pages.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

func NewPrompt(theme *Theme) *Prompt {
	input := tview.NewInputField()
	input.SetBorder(true)
	input.SetBorderColor(theme.Border)
	input.SetBackgroundColor(theme.Bg)
	input.SetFieldBackgroundColor(theme.Bg)
	input.SetFieldTextColor(theme.Fg)
	input.SetLabelColor(theme.Key)

	p := &Prompt{InputField: input}
	input.SetDoneFunc(func(key tcell.Key) {
		text := p.GetText()
		p.SetText("")
		switch key {
		case tcell.KeyEnter:
			if p.onSubmit != nil {
				p.onSubmit(p.mode, text)
			}
		case tcell.KeyEscape:
			if p.onCancel != nil {
				p.onCancel()
			}
		}
	})
	return p
}

func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) { p.onSubmit = fn }
func (p *Prompt) SetOnCancel(fn func())                             { p.onCancel = fn }

// Activate clears the input and labels it for mode.
func (p *Prompt) Activate(mode PromptMode) {
	p.mode = mode
	p.SetText("")
	switch mode {
	case PromptCommand:
		p.SetLabel(":")
		p.SetTitle(" Comando ")
	case PromptFilter:
		p.SetLabel("/")
		p.SetTitle(" Buscar contato ")
	case PromptAttach:
		p.SetLabel("arquivo: ")
		p.SetTitle(" Anexar ")
	}
}

func (p *Prompt) Mode() PromptMode { return p.mode }

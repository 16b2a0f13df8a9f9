package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"
)

// FlashLevel is the severity of a notice.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// Notice is a transient message shown under the pages.
type Notice struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// Flash holds the current notice. Safe for concurrent use.
type Flash struct {
	mu      sync.RWMutex
	current Notice
	now     func() time.Time
}

func NewFlash() *Flash {
	return &Flash{now: time.Now}
}

func (f *Flash) Info(msg string) { f.set(msg, FlashInfo, 4*time.Second) }
func (f *Flash) Warn(msg string) { f.set(msg, FlashWarn, 6*time.Second) }
func (f *Flash) Err(err error)   { f.set(err.Error(), FlashErr, 8*time.Second) }

func (f *Flash) set(msg string, level FlashLevel, d time.Duration) {
	f.mu.Lock()
	f.current = Notice{Text: msg, Level: level, Expires: f.now().Add(d)}
	f.mu.Unlock()
}

// Current returns the live notice, or false once it expired.
func (f *Flash) Current() (Notice, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.current.Expires) {
		return Notice{}, false
	}
	return f.current, true
}

// FlashBar renders a Flash.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.Bg)
	return &FlashBar{TextView: tv, theme: theme}
}

// Update shows n, or clears the bar when ok is false.
func (fb *FlashBar) Update(n Notice, ok bool) {
	fb.Clear()
	if !ok {
		return
	}
	color := fb.theme.Info
	switch n.Level {
	case FlashWarn:
		color = fb.theme.Warn
	case FlashErr:
		color = fb.theme.Err
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", Tag(color), tview.Escape(n.Text))
}

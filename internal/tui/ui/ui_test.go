package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestFlashExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFlash()
	f.now = func() time.Time { return now }

	_, ok := f.Current()
	assert.False(t, ok)

	f.Err(errors.New("boom"))
	n, ok := f.Current()
	assert.True(t, ok)
	assert.Equal(t, "boom", n.Text)
	assert.Equal(t, FlashErr, n.Level)

	now = now.Add(9 * time.Second)
	_, ok = f.Current()
	assert.False(t, ok)
}

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, n := range []string{"a", "b", "c"} {
		p.AddPage(n, tview.NewBox(), true, false)
	}
	var changes [][]string
	p.SetOnChange(func(s []string) { changes = append(changes, s) })

	p.Reset("a")
	p.Push("b")
	p.Push("b")
	p.Push("c")
	assert.Equal(t, []string{"a", "b", "c"}, p.Stack())

	assert.Equal(t, "c", p.Pop())
	assert.Equal(t, "b", p.Current())
	assert.Equal(t, "b", p.Pop())
	assert.Equal(t, "", p.Pop())
	assert.Equal(t, "a", p.Current())
	assert.Len(t, changes, 5)
}

func TestTag(t *testing.T) {
	assert.Equal(t, "#123456", Tag(tcell.NewHexColor(0x123456)))
	assert.NotEmpty(t, Tag(tcell.ColorOrange))
}

func TestUptime(t *testing.T) {
	assert.Equal(t, "5m", Uptime(5*time.Minute+10*time.Second))
	assert.Equal(t, "2h3m", Uptime(2*time.Hour+3*time.Minute))
}

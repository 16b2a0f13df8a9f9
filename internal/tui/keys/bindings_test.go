package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func runeEvent(ch rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, ch, tcell.ModNone)
}

func TestHandlePrefersPageBinding(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.Rune(GlobalScope, 'q', "Sair", func() { got = append(got, "global") })
	r.Rune("conversa", 'q', "Fechar", func() { got = append(got, "page") })

	assert.True(t, r.Handle("conversa", runeEvent('q')))
	assert.True(t, r.Handle("contatos", runeEvent('q')))
	assert.False(t, r.Handle("contatos", runeEvent('z')))
	assert.Equal(t, []string{"page", "global"}, got)
}

func TestBindReplacesSameKey(t *testing.T) {
	r := NewRegistry()
	n := 0
	r.Rune("p", 'x', "um", func() { n = 1 })
	r.Rune("p", 'x', "dois", func() { n = 2 })
	r.Handle("p", runeEvent('x'))
	assert.Equal(t, 2, n)
	assert.Len(t, r.Hints("p"), 1)
}

func TestSpecialKeys(t *testing.T) {
	r := NewRegistry()
	hit := false
	r.Bind("p", &Action{Key: tcell.KeyEscape, Handler: func() { hit = true }})
	assert.False(t, r.Handle("p", runeEvent('e')))
	assert.True(t, r.Handle("p", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, hit)
	assert.Empty(t, r.Hints("p"))
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	r.Rune(GlobalScope, '?', "Ajuda", func() {})
	r.Rune("p", 'b', "B", func() {})
	r.Rune("p", 'a', "A", func() {})
	hints := r.Hints("p")
	assert.Equal(t, "b", hints[0].Key)
	assert.Equal(t, "a", hints[1].Key)
	assert.Equal(t, "?", hints[2].Key)
	assert.Len(t, r.Hints(GlobalScope), 1)
}

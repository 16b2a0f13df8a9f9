package present

import (
	"testing"
	"time"

	"github.com/matheus3301/conversa/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func at(y int, mo time.Month, d, h, mi int) store.Message {
	return store.Message{CreatedAt: time.Date(y, mo, d, h, mi, 0, 0, saoPaulo).UnixMilli()}
}

func TestGroupByDateTodayYesterday(t *testing.T) {
	f := NewFormatter("pt-BR", saoPaulo)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, saoPaulo)

	msgs := []store.Message{
		at(2024, 3, 9, 23, 0),
		at(2024, 3, 10, 10, 0),
		at(2024, 3, 10, 11, 0),
	}
	groups := f.GroupByDate(msgs, now)
	require.Len(t, groups, 2)
	assert.Equal(t, "Ontem", groups[0].Label)
	assert.Len(t, groups[0].Messages, 1)
	assert.Equal(t, "Hoje", groups[1].Label)
	assert.Len(t, groups[1].Messages, 2)
}

func TestGroupByDateOlderAndInterleaved(t *testing.T) {
	f := NewFormatter("pt-BR", saoPaulo)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, saoPaulo)

	msgs := []store.Message{
		at(2024, 2, 1, 9, 0),
		at(2024, 3, 10, 9, 0),
		at(2024, 2, 1, 10, 0),
	}
	groups := f.GroupByDate(msgs, now)
	require.Len(t, groups, 3)
	assert.Equal(t, "01/02/2024", groups[0].Label)
	assert.Equal(t, "Hoje", groups[1].Label)
	assert.Equal(t, "01/02/2024", groups[2].Label)
}

func TestGroupByDateEmpty(t *testing.T) {
	assert.Empty(t, NewFormatter("pt-BR", saoPaulo).GroupByDate(nil, time.Now()))
}

func TestDayLabelUsesConfiguredZone(t *testing.T) {
	f := NewFormatter("pt-BR", saoPaulo)
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, saoPaulo)
	// 02:30 UTC on the 10th is 23:30 on the 9th in BRT.
	assert.Equal(t, "Ontem", f.DayLabel(time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC), now))
}

func TestLocales(t *testing.T) {
	ts := time.Date(2024, 3, 10, 15, 4, 0, 0, saoPaulo)
	now := ts.Add(48 * time.Hour)

	br := NewFormatter("pt-BR", saoPaulo)
	assert.Equal(t, "pt-BR", br.Locale())
	assert.Equal(t, "15:04", br.Time(ts))
	assert.Equal(t, "10/03/2024", br.DayLabel(ts, now))

	us := NewFormatter("en-US", saoPaulo)
	assert.Equal(t, "3:04 PM", us.Time(ts))
	assert.Equal(t, "3/10/2024", us.DayLabel(ts, now))
	assert.Equal(t, "Today", us.DayLabel(ts, ts))

	fallback := NewFormatter("not a locale", saoPaulo)
	assert.Equal(t, "pt-BR", fallback.Locale())
}

func TestGroupReactions(t *testing.T) {
	rs := []store.Reaction{
		{SenderID: "ana", Emoji: "👍"},
		{SenderID: "me", Emoji: "❤️"},
		{SenderID: "me", Emoji: "👍"},
	}
	groups := GroupReactions(rs, "me")
	require.Len(t, groups, 2)
	assert.Equal(t, ReactionGroup{Emoji: "👍", Count: 2, Users: []string{"ana", "me"}, Mine: true}, groups[0])
	assert.Equal(t, ReactionGroup{Emoji: "❤️", Count: 1, Users: []string{"me"}, Mine: true}, groups[1])

	assert.False(t, GroupReactions(rs[:1], "me")[0].Mine)
}

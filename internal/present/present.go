// Package present derives render buckets from an ordered message list.
package present

import (
	"time"

	"github.com/matheus3301/conversa/internal/store"
	"golang.org/x/text/language"
)

type layout struct {
	today     string
	yesterday string
	date      string
	clock     string
}

var supported = []language.Tag{
	language.BrazilianPortuguese,
	language.EuropeanPortuguese,
	language.AmericanEnglish,
	language.BritishEnglish,
	language.Spanish,
}

var layouts = map[language.Tag]layout{
	language.BrazilianPortuguese: {"Hoje", "Ontem", "02/01/2006", "15:04"},
	language.EuropeanPortuguese:  {"Hoje", "Ontem", "02/01/2006", "15:04"},
	language.AmericanEnglish:     {"Today", "Yesterday", "1/2/2006", "3:04 PM"},
	language.BritishEnglish:      {"Today", "Yesterday", "02/01/2006", "15:04"},
	language.Spanish:             {"Hoy", "Ayer", "2/1/2006", "15:04"},
}

var matcher = language.NewMatcher(supported)

// Formatter labels dates and times for one locale and time zone.
type Formatter struct {
	tag    language.Tag
	loc    *time.Location
	layout layout
}

// NewFormatter matches locale against the supported locales, falling back to
// pt-BR. A nil loc means time.Local.
func NewFormatter(locale string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	idx := 0
	if tag, err := language.Parse(locale); err == nil {
		_, idx, _ = matcher.Match(tag)
	}
	tag := supported[idx]
	return &Formatter{tag: tag, loc: loc, layout: layouts[tag]}
}

// Locale returns the matched locale.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Time formats t as hour and minute.
func (f *Formatter) Time(t time.Time) string {
	return t.In(f.loc).Format(f.layout.clock)
}

// DayLabel is "Hoje" for now's calendar day, "Ontem" for the day before and
// the localized date otherwise.
func (f *Formatter) DayLabel(t, now time.Time) string {
	t = t.In(f.loc)
	now = now.In(f.loc)
	switch {
	case sameDay(t, now):
		return f.layout.today
	case sameDay(t, now.AddDate(0, 0, -1)):
		return f.layout.yesterday
	default:
		return t.Format(f.layout.date)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Group is a run of consecutive messages sharing a day label.
type Group struct {
	Label    string
	Messages []store.Message
}

// GroupByDate walks msgs in order and starts a new group whenever the label
// differs from the previous message's label. Interleaved days therefore
// produce repeated labels.
func (f *Formatter) GroupByDate(msgs []store.Message, now time.Time) []Group {
	var groups []Group
	for _, m := range msgs {
		label := f.DayLabel(time.UnixMilli(m.CreatedAt), now)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, Group{Label: label, Messages: []store.Message{m}})
	}
	return groups
}

// ReactionGroup aggregates the reactions of one message sharing an emoji.
type ReactionGroup struct {
	Emoji string
	Count int
	Users []string
	Mine  bool
}

// GroupReactions groups by emoji in first-seen order.
func GroupReactions(rs []store.Reaction, self string) []ReactionGroup {
	var out []ReactionGroup
	pos := make(map[string]int)
	for _, r := range rs {
		i, ok := pos[r.Emoji]
		if !ok {
			i = len(out)
			pos[r.Emoji] = i
			out = append(out, ReactionGroup{Emoji: r.Emoji})
		}
		out[i].Count++
		out[i].Users = append(out[i].Users, r.SenderID)
		if r.SenderID == self {
			out[i].Mine = true
		}
	}
	return out
}

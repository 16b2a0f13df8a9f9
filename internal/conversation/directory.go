package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/store"
)

// Profile statuses and the filter that matches both.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAll     = "todos"
)

// Contact is a profile with the number of unread messages it sent to self.
type Contact struct {
	store.Profile
	Unread int
}

// ContactFilter narrows Contacts.
type ContactFilter struct {
	// Status is StatusOnline, StatusOffline, or StatusAll (also the default).
	Status string
	// Search matches names ignoring case and diacritics.
	Search string
}

// Contacts lists every profile but self, ordered by name.
func (m *Manager) Contacts(ctx context.Context, f ContactFilter) ([]Contact, error) {
	q := store.ProfileQuery{Exclude: []string{m.opts.Self}}
	if f.Status == StatusOnline || f.Status == StatusOffline {
		q.Status = f.Status
	}
	profiles, err := m.be.ListProfiles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	unread, err := m.be.UnreadCounts(ctx, m.opts.Self)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}

	needle := strings.ToLower(content.Fold(strings.TrimSpace(f.Search)))
	out := make([]Contact, 0, len(profiles))
	for _, p := range profiles {
		if needle != "" && !strings.Contains(strings.ToLower(content.Fold(p.Name)), needle) {
			continue
		}
		out = append(out, Contact{Profile: p, Unread: unread[p.ID]})
	}
	return out, nil
}

// MediaItem is one media message of a conversation.
type MediaItem struct {
	MessageID string
	Kind      content.Kind
	URL       string
	Caption   string
	Name      string
	Class     content.AttachmentClass
	CreatedAt int64
}

// SharedMedia splits the media exchanged with a peer by kind, oldest first.
type SharedMedia struct {
	Images      []MediaItem
	Audios      []MediaItem
	Attachments []MediaItem
}

// SharedMedia lists the media exchanged between self and peer.
func (m *Manager) SharedMedia(ctx context.Context, peer string) (SharedMedia, error) {
	msgs, err := m.be.ListMessages(ctx, store.MessageQuery{
		Self:  m.opts.Self,
		Peer:  peer,
		Kinds: []content.Kind{content.Image, content.Audio, content.Attachment},
	})
	if err != nil {
		return SharedMedia{}, fmt.Errorf("list media: %w", err)
	}
	var out SharedMedia
	for _, msg := range msgs {
		p := content.Decode(msg.Content)
		name := content.AttachmentName(p.Body)
		item := MediaItem{
			MessageID: msg.ID,
			Kind:      msg.Kind,
			URL:       p.Body,
			Caption:   p.Caption,
			Name:      name,
			Class:     content.ClassOf(name),
			CreatedAt: msg.CreatedAt,
		}
		switch msg.Kind {
		case content.Image:
			out.Images = append(out.Images, item)
		case content.Audio:
			out.Audios = append(out.Audios, item)
		default:
			out.Attachments = append(out.Attachments, item)
		}
	}
	return out, nil
}

// SetOnline sets the presence status of self's profile.
func (m *Manager) SetOnline(ctx context.Context, online bool) error {
	status := StatusOffline
	if online {
		status = StatusOnline
	}
	return m.be.SetProfileStatus(ctx, m.opts.Self, status)
}

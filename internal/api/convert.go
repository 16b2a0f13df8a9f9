package api

import (
	"fmt"

	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/store"
)

func contactToRPC(p store.Profile, unread int) rpc.Contact {
	return rpc.Contact{ID: p.ID, Name: p.Name, PhotoURL: p.PhotoURL, Status: p.Status, Unread: unread}
}

func messageToRPC(mv conversation.MessageView) rpc.Message {
	m := mv.Message
	out := rpc.Message{
		ID:                 m.ID,
		SenderID:           m.SenderID,
		RecipientID:        m.RecipientID,
		Kind:               string(m.Kind),
		Body:               mv.Payload.Body,
		Caption:            mv.Payload.Caption,
		Time:               mv.Time,
		CreatedAtUnixMs:    m.CreatedAt,
		Read:               m.Read,
		Mine:               mv.Mine,
		ReplyToID:          m.ReplyToID,
		ReplyLabel:         mv.ReplyLabel,
		Forwarded:          m.Forwarded(),
		OriginalSenderName: m.OriginalSenderName,
		Attachment:         mv.Attachment,
	}
	if m.Forwarded() && out.OriginalSenderName == "" {
		out.OriginalSenderName = "Desconhecido"
	}
	if m.Kind.IsMedia() {
		if mv.Payload.Caption != "" {
			out.HTML = content.RenderHTML(mv.Payload.Caption)
		}
	} else {
		out.HTML = content.RenderHTML(mv.Payload.Body)
	}
	for _, a := range mv.Actions {
		out.Actions = append(out.Actions, string(a))
	}
	for _, g := range mv.Reactions {
		out.Reactions = append(out.Reactions, rpc.ReactionGroup{Emoji: g.Emoji, Count: g.Count, Users: g.Users, Mine: g.Mine})
	}
	return out
}

func composerToRPC(v composer.View) rpc.ComposerState {
	out := rpc.ComposerState{
		State:     v.State.String(),
		Text:      v.Text,
		EditingID: v.EditingID,
		Recording: v.Recording,
		Affordances: rpc.Affordances{
			Attach: v.Affordances.Attach,
			Camera: v.Affordances.Camera,
			Mic:    v.Affordances.Mic,
			Send:   v.Affordances.Send,
		},
		Failed: v.Failed,
	}
	if v.Draft != nil {
		out.DraftKind = string(v.Draft.Kind())
	}
	if m, caption, ok := composer.MediaOf(v.Draft); ok {
		out.DraftURL = m.URL
		out.DraftLocal = m.Local()
		out.Caption = caption
		if m.File != nil {
			out.DraftName = m.File.Name
		} else {
			out.DraftName = content.AttachmentName(m.URL)
		}
	}
	if v.Reply != nil {
		out.ReplyTo = &rpc.ReplyTarget{ID: v.Reply.ID, SenderID: v.Reply.SenderID, Label: v.Reply.Label}
	}
	return out
}

func viewToRPC(s conversation.Snapshot) rpc.ConversationView {
	out := rpc.ConversationView{
		Peer:       contactToRPC(s.Peer, 0),
		PeerStatus: s.PeerStatus,
		Composer:   composerToRPC(s.Composer),
		Overlay:    rpc.OverlayState{Selected: s.Overlay.Selected, Highlighted: s.Overlay.Highlighted},
		Groups:     make([]rpc.DateGroup, 0, len(s.Groups)),
	}
	for _, g := range s.Groups {
		dg := rpc.DateGroup{Label: g.Label, Messages: make([]rpc.Message, len(g.Messages))}
		for i, mv := range g.Messages {
			dg.Messages[i] = messageToRPC(mv)
		}
		out.Groups = append(out.Groups, dg)
	}
	return out
}

func mediaToRPC(items []conversation.MediaItem) []rpc.MediaItem {
	out := make([]rpc.MediaItem, len(items))
	for i, it := range items {
		out[i] = rpc.MediaItem{
			MessageID:       it.MessageID,
			Kind:            string(it.Kind),
			URL:             it.URL,
			Caption:         it.Caption,
			Name:            it.Name,
			Class:           string(it.Class),
			CreatedAtUnixMs: it.CreatedAt,
		}
	}
	return out
}

func parseStyle(s string) (content.Style, error) {
	switch s {
	case "bold":
		return content.Bold, nil
	case "italic":
		return content.Italic, nil
	case "underline":
		return content.Underline, nil
	case "color":
		return content.Color, nil
	default:
		return 0, fmt.Errorf("style %q: %w", s, errInvalidArgument)
	}
}

func parseSource(s string) (composer.Source, error) {
	switch s {
	case "", "picker":
		return composer.SourcePicker, nil
	case "attachment":
		return composer.SourcePickerAttachment, nil
	case "camera":
		return composer.SourceCamera, nil
	case "paste":
		return composer.SourcePaste, nil
	default:
		return 0, fmt.Errorf("source %q: %w", s, errInvalidArgument)
	}
}

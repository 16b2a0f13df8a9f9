package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/overlay"
	"github.com/matheus3301/conversa/internal/presence"
	"github.com/matheus3301/conversa/internal/present"
	"github.com/matheus3301/conversa/internal/store"
	convsync "github.com/matheus3301/conversa/internal/sync"
	"go.uber.org/zap"
)

// View is one open conversation.
type View struct {
	peer store.Profile
	mgr  *Manager

	rec      *convsync.Reconciler
	composer *composer.Composer
	overlay  *overlay.Overlay
	typing   *presence.Channel

	mu         sync.Mutex
	peerStatus string
}

// Peer returns the profile of the other participant.
func (v *View) Peer() store.Profile { return v.peer }

// Composer returns the draft state machine of the view.
func (v *View) Composer() *composer.Composer { return v.composer }

// Overlay returns the action menu of the view.
func (v *View) Overlay() *overlay.Overlay { return v.overlay }

// Sync runs the reconciler once.
func (v *View) Sync(ctx context.Context) (convsync.Result, error) {
	return v.rec.Sync(ctx)
}

// Messages returns the ordered message list.
func (v *View) Messages() []store.Message {
	return v.rec.Snapshot()
}

// Message returns a message of this conversation by id.
func (v *View) Message(ctx context.Context, id string) (store.Message, error) {
	return v.mgr.message(ctx, v.peer.ID, id)
}

// PeerStatus is the typing status the peer holds towards self.
func (v *View) PeerStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.peerStatus
}

func (v *View) setPeerStatus(s string) {
	v.mu.Lock()
	v.peerStatus = s
	v.mu.Unlock()
	v.changed()
}

func (v *View) changed() {
	v.mgr.publish(bus.ConversationChanged, Changed{Peer: v.peer.ID})
}

// React toggles emoji on message id.
func (v *View) React(ctx context.Context, id, emoji string) (bool, error) {
	m, err := v.Message(ctx, id)
	if err != nil {
		return false, err
	}
	return v.overlay.ToggleReaction(ctx, m, emoji)
}

// Delete removes message id when self sent it.
func (v *View) Delete(ctx context.Context, id string) (bool, error) {
	m, err := v.Message(ctx, id)
	if err != nil {
		return false, err
	}
	return v.overlay.Delete(ctx, m)
}

// BeginEdit loads message id into the composer when self sent it.
func (v *View) BeginEdit(ctx context.Context, id string) (bool, error) {
	m, err := v.Message(ctx, id)
	if err != nil {
		return false, err
	}
	ok := v.overlay.Edit(m)
	v.changed()
	return ok, nil
}

// ReplyTo makes message id the reply target.
func (v *View) ReplyTo(ctx context.Context, id string) error {
	m, err := v.Message(ctx, id)
	if err != nil {
		return err
	}
	v.overlay.Reply(m)
	v.changed()
	return nil
}

// JumpToReply highlights the reply target of message id.
func (v *View) JumpToReply(ctx context.Context, id string) (string, error) {
	m, err := v.Message(ctx, id)
	if err != nil {
		return "", err
	}
	if m.ReplyToID == "" {
		return "", nil
	}
	v.overlay.Highlight(m.ReplyToID)
	return m.ReplyToID, nil
}

// Touch publishes a change after a composer mutation made by the caller.
func (v *View) Touch() { v.changed() }

func (v *View) close(ctx context.Context) {
	v.rec.Stop()
	v.overlay.Close()
	v.composer.Close(ctx)
	if err := v.typing.Clear(ctx); err != nil {
		v.mgr.logger.Debug("clear typing on close failed", zap.String("peer", v.peer.ID), zap.Error(err))
	}
	v.typing.Close()
}

// MessageView is a message prepared for rendering.
type MessageView struct {
	Message    store.Message
	Payload    content.Payload
	Time       string
	Mine       bool
	Actions    []overlay.Action
	Reactions  []present.ReactionGroup
	ReplyLabel string
	// Attachment is the file name for attachment messages.
	Attachment string
}

// Group is a run of messages under one day label.
type Group struct {
	Label    string
	Messages []MessageView
}

// Snapshot is everything needed to render the view.
type Snapshot struct {
	Peer       store.Profile
	PeerStatus string
	Groups     []Group
	Composer   composer.View
	Overlay    overlay.State
}

// Snapshot renders the current state, grouping days relative to now.
func (v *View) Snapshot(now time.Time) Snapshot {
	self := v.mgr.opts.Self
	f := v.mgr.formatter
	msgs := v.rec.Snapshot()

	var groups []Group
	for _, g := range f.GroupByDate(msgs, now) {
		out := Group{Label: g.Label, Messages: make([]MessageView, len(g.Messages))}
		for i, m := range g.Messages {
			mv := MessageView{
				Message:   m,
				Payload:   content.Decode(m.Content),
				Time:      f.Time(time.UnixMilli(m.CreatedAt)),
				Mine:      m.SenderID == self,
				Actions:   overlay.Actions(m, self),
				Reactions: present.GroupReactions(m.Reactions, self),
			}
			if m.Reply != nil {
				mv.ReplyLabel = content.ReplyLabel(m.Reply.Kind, m.Reply.Content)
			}
			if m.Kind == content.Attachment {
				mv.Attachment = content.AttachmentName(mv.Payload.Body)
			}
			out.Messages[i] = mv
		}
		groups = append(groups, out)
	}

	return Snapshot{
		Peer:       v.peer,
		PeerStatus: v.PeerStatus(),
		Groups:     groups,
		Composer:   v.composer.Snapshot(),
		Overlay:    v.overlay.State(),
	}
}

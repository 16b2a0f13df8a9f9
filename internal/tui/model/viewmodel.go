// Package model caches daemon state for the TUI and turns user intents into
// daemon calls.
package model

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matheus3301/conversa/internal/rpc"
	"google.golang.org/grpc"
)

// ErrNoConversation is returned by conversation actions before Open.
var ErrNoConversation = errors.New("no conversation open")

// Daemon is the part of rpc.Client the TUI uses.
type Daemon interface {
	GetSessionStatus(ctx context.Context, in *rpc.GetSessionStatusRequest, opts ...grpc.CallOption) (*rpc.SessionStatus, error)
	ListContacts(ctx context.Context, in *rpc.ListContactsRequest, opts ...grpc.CallOption) (*rpc.ListContactsResponse, error)
	OpenConversation(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.ConversationView, error)
	CloseConversation(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	GetView(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.ConversationView, error)
	SetText(ctx context.Context, in *rpc.SetTextRequest, opts ...grpc.CallOption) (*rpc.ComposerState, error)
	StageFile(ctx context.Context, in *rpc.StageFileRequest, opts ...grpc.CallOption) (*rpc.ComposerState, error)
	SetCaption(ctx context.Context, in *rpc.SetCaptionRequest, opts ...grpc.CallOption) (*rpc.ActionResponse, error)
	CancelDraft(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.ComposerState, error)
	ReplyTo(ctx context.Context, in *rpc.MessageRequest, opts ...grpc.CallOption) (*rpc.ComposerState, error)
	BeginEdit(ctx context.Context, in *rpc.MessageRequest, opts ...grpc.CallOption) (*rpc.ActionResponse, error)
	Send(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.SendResponse, error)
	RestoreFailed(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.ActionResponse, error)
	React(ctx context.Context, in *rpc.ReactRequest, opts ...grpc.CallOption) (*rpc.ReactResponse, error)
	Delete(ctx context.Context, in *rpc.MessageRequest, opts ...grpc.CallOption) (*rpc.ActionResponse, error)
	JumpToReply(ctx context.Context, in *rpc.MessageRequest, opts ...grpc.CallOption) (*rpc.JumpResponse, error)
	Forward(ctx context.Context, in *rpc.ForwardRequest, opts ...grpc.CallOption) (*rpc.ForwardResponse, error)
	ForwardCandidates(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.ListContactsResponse, error)
	SharedMedia(ctx context.Context, in *rpc.PeerRequest, opts ...grpc.CallOption) (*rpc.SharedMediaResponse, error)
	SearchEmoji(ctx context.Context, in *rpc.SearchEmojiRequest, opts ...grpc.CallOption) (*rpc.SearchEmojiResponse, error)
	GetProfile(ctx context.Context, in *rpc.GetProfileRequest, opts ...grpc.CallOption) (*rpc.Contact, error)
	UpdateProfile(ctx context.Context, in *rpc.UpdateProfileRequest, opts ...grpc.CallOption) (*rpc.Contact, error)
	WatchEvents(ctx context.Context, in *rpc.WatchEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[rpc.EventEnvelope], error)
}

// ViewModel caches daemon state and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	d          Daemon
	status     *rpc.SessionStatus
	contacts   []rpc.Contact
	statusFilt string
	search     string
	active     string
	view       *rpc.ConversationView
	selected   string

	refreshCh chan struct{}
}

// NewViewModel creates a view model backed by d.
func NewViewModel(d Daemon) *ViewModel {
	return &ViewModel{
		d:          d,
		statusFilt: "todos",
		refreshCh:  make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// LoadStatus fetches the daemon status.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	resp, err := vm.d.GetSessionStatus(ctx, &rpc.GetSessionStatusRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = resp
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// SetContactFilter changes the status filter (online, offline, todos) and
// search text used by LoadContacts.
func (vm *ViewModel) SetContactFilter(status, search string) {
	vm.mu.Lock()
	if status != "" {
		vm.statusFilt = status
	}
	vm.search = search
	vm.mu.Unlock()
}

// ContactFilter returns the active status filter and search text.
func (vm *ViewModel) ContactFilter() (string, string) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.statusFilt, vm.search
}

// LoadContacts fetches contacts with the current filter.
func (vm *ViewModel) LoadContacts(ctx context.Context) error {
	st, search := vm.ContactFilter()
	resp, err := vm.d.ListContacts(ctx, &rpc.ListContactsRequest{Status: st, Search: search})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.contacts = resp.Contacts
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// Open makes peer the active conversation, closing the previous one.
func (vm *ViewModel) Open(ctx context.Context, peer string) error {
	view, err := vm.d.OpenConversation(ctx, &rpc.PeerRequest{Peer: peer})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	prev := vm.active
	vm.active = peer
	vm.view = view
	vm.selected = lastID(view)
	vm.mu.Unlock()
	if prev != "" && prev != peer {
		_, _ = vm.d.CloseConversation(ctx, &rpc.PeerRequest{Peer: prev})
	}
	vm.signalRefresh()
	return nil
}

// CloseActive leaves the active conversation.
func (vm *ViewModel) CloseActive(ctx context.Context) {
	vm.mu.Lock()
	peer := vm.active
	vm.active, vm.view, vm.selected = "", nil, ""
	vm.mu.Unlock()
	if peer != "" {
		_, _ = vm.d.CloseConversation(ctx, &rpc.PeerRequest{Peer: peer})
	}
	vm.signalRefresh()
}

// Refresh re-reads the active conversation.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	peer := vm.Active()
	if peer == "" {
		return nil
	}
	view, err := vm.d.GetView(ctx, &rpc.PeerRequest{Peer: peer})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.active == peer {
		atEnd := vm.selected == "" || vm.selected == lastID(vm.view)
		vm.view = view
		if atEnd || !hasMessage(view, vm.selected) {
			vm.selected = lastID(view)
		}
	}
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

func (vm *ViewModel) activePeer() (string, error) {
	peer := vm.Active()
	if peer == "" {
		return "", ErrNoConversation
	}
	return peer, nil
}

// setComposer stores a composer state returned by a daemon call.
func (vm *ViewModel) setComposer(peer string, cs *rpc.ComposerState) {
	vm.mu.Lock()
	if vm.active == peer && vm.view != nil && cs != nil {
		vm.view.Composer = *cs
	}
	vm.mu.Unlock()
	vm.signalRefresh()
}

// SetText mirrors the composer input, which also signals typing to the peer.
func (vm *ViewModel) SetText(ctx context.Context, text string) error {
	peer, err := vm.activePeer()
	if err != nil {
		return err
	}
	cs, err := vm.d.SetText(ctx, &rpc.SetTextRequest{Peer: peer, Text: text})
	if err != nil {
		return err
	}
	vm.setComposer(peer, cs)
	return nil
}

// Submit sends the composer content. When a media draft is staged, text
// becomes its caption.
func (vm *ViewModel) Submit(ctx context.Context, text string) (string, error) {
	peer, err := vm.activePeer()
	if err != nil {
		return "", err
	}
	if vm.Composer().DraftKind != "" {
		if _, err := vm.d.SetCaption(ctx, &rpc.SetCaptionRequest{Peer: peer, Caption: text}); err != nil {
			return "", err
		}
	} else if _, err := vm.d.SetText(ctx, &rpc.SetTextRequest{Peer: peer, Text: text}); err != nil {
		return "", err
	}
	resp, err := vm.d.Send(ctx, &rpc.PeerRequest{Peer: peer})
	if rerr := vm.Refresh(ctx); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return "", err
	}
	return resp.MessageID, nil
}

// Retry re-stages the last failed send.
func (vm *ViewModel) Retry(ctx context.Context) (bool, error) {
	peer, err := vm.activePeer()
	if err != nil {
		return false, err
	}
	resp, err := vm.d.RestoreFailed(ctx, &rpc.PeerRequest{Peer: peer})
	if err != nil {
		return false, err
	}
	vm.setComposer(peer, &resp.Composer)
	return resp.Applied, nil
}

// Attach stages the file at path.
func (vm *ViewModel) Attach(ctx context.Context, path string) error {
	peer, err := vm.activePeer()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	mt := detectMIME(path, data)
	source := "attachment"
	if strings.HasPrefix(mt, "image/") {
		source = "picker"
	}
	cs, err := vm.d.StageFile(ctx, &rpc.StageFileRequest{
		Peer: peer, Source: source, Name: filepath.Base(path), MIME: mt, Data: data,
	})
	if err != nil {
		return err
	}
	vm.setComposer(peer, cs)
	return nil
}

// CancelDraft drops a staged draft or an edit in progress.
func (vm *ViewModel) CancelDraft(ctx context.Context) error {
	peer, err := vm.activePeer()
	if err != nil {
		return err
	}
	cs, err := vm.d.CancelDraft(ctx, &rpc.PeerRequest{Peer: peer})
	if err != nil {
		return err
	}
	vm.setComposer(peer, cs)
	return nil
}

// ReplyToSelected quotes the selected message in the composer.
func (vm *ViewModel) ReplyToSelected(ctx context.Context) error {
	peer, id, err := vm.target()
	if err != nil {
		return err
	}
	cs, err := vm.d.ReplyTo(ctx, &rpc.MessageRequest{Peer: peer, MessageID: id})
	if err != nil {
		return err
	}
	vm.setComposer(peer, cs)
	return nil
}

// EditSelected loads the selected message into the composer. It reports
// false when the message belongs to the peer.
func (vm *ViewModel) EditSelected(ctx context.Context) (bool, error) {
	peer, id, err := vm.target()
	if err != nil {
		return false, err
	}
	resp, err := vm.d.BeginEdit(ctx, &rpc.MessageRequest{Peer: peer, MessageID: id})
	if err != nil {
		return false, err
	}
	vm.setComposer(peer, &resp.Composer)
	return resp.Applied, nil
}

// ReactSelected toggles emoji on the selected message.
func (vm *ViewModel) ReactSelected(ctx context.Context, emoji string) (bool, error) {
	peer, id, err := vm.target()
	if err != nil {
		return false, err
	}
	resp, err := vm.d.React(ctx, &rpc.ReactRequest{Peer: peer, MessageID: id, Emoji: emoji})
	if err != nil {
		return false, err
	}
	return resp.Added, vm.Refresh(ctx)
}

// DeleteSelected deletes the selected message when it is ours.
func (vm *ViewModel) DeleteSelected(ctx context.Context) (bool, error) {
	peer, id, err := vm.target()
	if err != nil {
		return false, err
	}
	resp, err := vm.d.Delete(ctx, &rpc.MessageRequest{Peer: peer, MessageID: id})
	if err != nil {
		return false, err
	}
	return resp.Applied, vm.Refresh(ctx)
}

// JumpToReply selects the message the selected one replies to.
func (vm *ViewModel) JumpToReply(ctx context.Context) (bool, error) {
	peer, id, err := vm.target()
	if err != nil {
		return false, err
	}
	resp, err := vm.d.JumpToReply(ctx, &rpc.MessageRequest{Peer: peer, MessageID: id})
	if err != nil {
		return false, err
	}
	if resp.Target == "" {
		return false, nil
	}
	vm.mu.Lock()
	vm.selected = resp.Target
	vm.mu.Unlock()
	return true, vm.Refresh(ctx)
}

// ForwardCandidates lists contacts the selected message can go to.
func (vm *ViewModel) ForwardCandidates(ctx context.Context) ([]rpc.Contact, error) {
	peer, err := vm.activePeer()
	if err != nil {
		return nil, err
	}
	resp, err := vm.d.ForwardCandidates(ctx, &rpc.PeerRequest{Peer: peer})
	if err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// ForwardSelected copies the selected message to recipients.
func (vm *ViewModel) ForwardSelected(ctx context.Context, recipients []string) (*rpc.ForwardResponse, error) {
	peer, id, err := vm.target()
	if err != nil {
		return nil, err
	}
	return vm.d.Forward(ctx, &rpc.ForwardRequest{Peer: peer, MessageID: id, Recipients: recipients})
}

// SharedMedia lists media of the active conversation.
func (vm *ViewModel) SharedMedia(ctx context.Context) (*rpc.SharedMediaResponse, error) {
	peer, err := vm.activePeer()
	if err != nil {
		return nil, err
	}
	return vm.d.SharedMedia(ctx, &rpc.PeerRequest{Peer: peer})
}

// SearchEmoji queries the emoji catalog.
func (vm *ViewModel) SearchEmoji(ctx context.Context, query string) (*rpc.SearchEmojiResponse, error) {
	return vm.d.SearchEmoji(ctx, &rpc.SearchEmojiRequest{Query: query})
}

// Profile returns the signed-in user's profile.
func (vm *ViewModel) Profile(ctx context.Context) (*rpc.Contact, error) {
	return vm.d.GetProfile(ctx, &rpc.GetProfileRequest{})
}

// UpdateProfile saves the settings form. An empty avatarPath keeps the
// current picture.
func (vm *ViewModel) UpdateProfile(ctx context.Context, name, status, avatarPath string) (*rpc.Contact, error) {
	req := &rpc.UpdateProfileRequest{Name: name, Status: status}
	if avatarPath != "" {
		data, err := os.ReadFile(avatarPath)
		if err != nil {
			return nil, err
		}
		req.AvatarName = filepath.Base(avatarPath)
		req.AvatarMIME = detectMIME(avatarPath, data)
		req.AvatarData = data
	}
	me, err := vm.d.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	vm.signalRefresh()
	return me, nil
}

// Watch refreshes cached state as daemon events arrive until ctx is done.
func (vm *ViewModel) Watch(ctx context.Context) error {
	stream, err := vm.d.WatchEvents(ctx, &rpc.WatchEventsRequest{
		Kinds: []string{"conversation.", "typing.", "profile.", "message.read", "session."},
	})
	if err != nil {
		return fmt.Errorf("watch events: %w", err)
	}
	for {
		env, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch {
		case strings.HasPrefix(env.Kind, "conversation."), strings.HasPrefix(env.Kind, "typing."):
			_ = vm.Refresh(ctx)
		case strings.HasPrefix(env.Kind, "session."):
			_ = vm.LoadStatus(ctx)
		default:
			_ = vm.LoadContacts(ctx)
		}
	}
}

// SelectNext moves the message selection by delta, clamped to the list.
func (vm *ViewModel) SelectNext(delta int) {
	vm.mu.Lock()
	ids := messageIDs(vm.view)
	if len(ids) > 0 {
		i := indexOf(ids, vm.selected) + delta
		i = max(0, min(i, len(ids)-1))
		vm.selected = ids[i]
	}
	vm.mu.Unlock()
	vm.signalRefresh()
}

func (vm *ViewModel) target() (string, string, error) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.active == "" {
		return "", "", ErrNoConversation
	}
	if vm.selected == "" {
		return "", "", errors.New("no message selected")
	}
	return vm.active, vm.selected, nil
}

// Status returns the cached daemon status.
func (vm *ViewModel) Status() *rpc.SessionStatus {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Contacts returns the cached contact list.
func (vm *ViewModel) Contacts() []rpc.Contact {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.contacts
}

// Active returns the peer of the open conversation.
func (vm *ViewModel) Active() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// View returns the cached conversation view.
func (vm *ViewModel) View() *rpc.ConversationView {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.view
}

// Composer returns the composer state of the open conversation.
func (vm *ViewModel) Composer() rpc.ComposerState {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.view == nil {
		return rpc.ComposerState{}
	}
	return vm.view.Composer
}

// Selected returns the id of the selected message.
func (vm *ViewModel) Selected() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.selected
}

func detectMIME(path string, data []byte) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}

func messageIDs(v *rpc.ConversationView) []string {
	if v == nil {
		return nil
	}
	var ids []string
	for _, g := range v.Groups {
		for _, m := range g.Messages {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func lastID(v *rpc.ConversationView) string {
	ids := messageIDs(v)
	if len(ids) == 0 {
		return ""
	}
	return ids[len(ids)-1]
}

func hasMessage(v *rpc.ConversationView, id string) bool {
	return indexOf(messageIDs(v), id) >= 0
}

func indexOf(ids []string, id string) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

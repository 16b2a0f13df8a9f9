// Package composer holds the draft state of one conversation: the text field,
// a staged media draft, the reply target, the message being edited and an
// audio capture in progress.
package composer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/presence"
	"github.com/matheus3301/conversa/internal/schedule"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
)

var (
	ErrFileTooLarge  = errors.New("file too large")
	ErrNothingToSend = errors.New("nothing to send")
	ErrNotRecording  = errors.New("not recording")
	ErrNoMicrophone  = errors.New("no microphone available")
	ErrNotOwner      = backend.ErrNotOwner
)

// DefaultMaxUpload is the largest file accepted for upload.
const DefaultMaxUpload int64 = 50 << 20

// State is the composer state derived from its fields.
type State int

const (
	Idle State = iota
	ComposingText
	StagingDraft
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case ComposingText:
		return "COMPOSING_TEXT"
	case StagingDraft:
		return "STAGING_DRAFT"
	case Editing:
		return "EDITING"
	default:
		return "UNKNOWN"
	}
}

// Source is where a chosen file came from. It decides the draft kind.
type Source int

const (
	// SourcePicker is the image picker.
	SourcePicker Source = iota
	// SourcePickerAttachment is the generic file picker.
	SourcePickerAttachment
	// SourceCamera is a camera capture.
	SourceCamera
	// SourcePaste is a clipboard paste; the kind follows the MIME type.
	SourcePaste
)

func (s Source) kind(mime string) content.Kind {
	switch s {
	case SourcePicker, SourceCamera:
		return content.Image
	case SourcePickerAttachment:
		return content.Attachment
	default:
		return content.KindForMIME(mime)
	}
}

// Backend is the subset of the backend client used to send.
type Backend interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	InsertMessage(ctx context.Context, m *store.Message) error
	UpdateMessage(ctx context.Context, actor, id, conteudo string) error
}

// Presence receives the local typing status.
type Presence interface {
	SetStatus(ctx context.Context, status string) error
}

// Notifier shows a user-facing notice.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// Options configures a Composer.
type Options struct {
	Self           string
	Peer           string
	MaxUploadBytes int64
	Clock          schedule.Clock
}

// Affordances lists the controls offered in the current state.
type Affordances struct {
	Attach bool
	Camera bool
	Mic    bool
	Send   bool
}

// ReplyTarget is the message being replied to.
type ReplyTarget struct {
	ID       string
	SenderID string
	Label    string
}

// Failed is the content of the last send that did not go through.
type Failed struct {
	Text      string
	Draft     Draft
	Reply     *store.Message
	EditingID string
	Err       error
}

// View is a copy of the composer state.
type View struct {
	State       State
	Text        string
	Draft       Draft
	Reply       *ReplyTarget
	EditingID   string
	Recording   bool
	Affordances Affordances
	Failed      bool
}

// Composer is the draft state machine of one conversation.
type Composer struct {
	be       Backend
	typing   Presence
	notifier Notifier
	recorder Recorder
	urls     *ObjectURLs
	opts     Options
	logger   *zap.Logger

	sendMu sync.Mutex

	mu         sync.Mutex
	text       string
	draft      Draft
	reply      *store.Message
	editing    string
	recording  Recording
	lastFailed *Failed
}

// New creates an idle composer. typing, notifier and recorder may be nil.
func New(be Backend, typing Presence, notifier Notifier, recorder Recorder, opts Options, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUpload
	}
	if opts.Clock == nil {
		opts.Clock = schedule.Real{}
	}
	return &Composer{
		be:       be,
		typing:   typing,
		notifier: notifier,
		recorder: recorder,
		urls:     NewObjectURLs(),
		opts:     opts,
		logger:   logger.With(zap.String("peer", opts.Peer)),
	}
}

// URLs returns the registry of local object URLs.
func (c *Composer) URLs() *ObjectURLs { return c.urls }

// State returns the current state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Composer) state() State {
	switch {
	case c.editing != "":
		return Editing
	case c.draft != nil:
		return StagingDraft
	case c.text != "":
		return ComposingText
	default:
		return Idle
	}
}

func (c *Composer) affordances() Affordances {
	if c.recording != nil {
		return Affordances{Mic: true}
	}
	switch c.state() {
	case Idle:
		return Affordances{Attach: true, Camera: true, Mic: true}
	case ComposingText:
		return Affordances{Attach: true, Send: true}
	default:
		return Affordances{Send: true}
	}
}

// Affordances returns the controls offered in the current state.
func (c *Composer) Affordances() Affordances {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.affordances()
}

// Snapshot returns a copy of the composer state.
func (c *Composer) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		State:       c.state(),
		Text:        c.text,
		Draft:       c.draft,
		EditingID:   c.editing,
		Recording:   c.recording != nil,
		Affordances: c.affordances(),
		Failed:      c.lastFailed != nil,
	}
	if v.Draft == nil && c.text != "" {
		v.Draft = TextDraft{Body: c.text}
	}
	if c.reply != nil {
		v.Reply = &ReplyTarget{
			ID:       c.reply.ID,
			SenderID: c.reply.SenderID,
			Label:    content.ReplyLabel(c.reply.Kind, c.reply.Content),
		}
	}
	return v
}

// SetText replaces the text field. A non-empty text marks self as typing.
func (c *Composer) SetText(ctx context.Context, text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	if text != "" {
		c.signal(ctx, presence.Typing)
	}
}

// FormatText wraps the [start, end) rune selection of the text field with
// markup for st.
func (c *Composer) FormatText(start, end int, st content.Style, color string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := content.Format(c.text, start, end, st, color)
	if err != nil {
		return c.text, err
	}
	c.text = out
	return out, nil
}

// ChooseFile stages f as a media draft. A file over the upload ceiling is
// rejected with a notice and ErrFileTooLarge and leaves the state untouched.
// The caption of a previous draft carries over.
func (c *Composer) ChooseFile(src Source, f *File) error {
	if err := c.checkSize(f); err != nil {
		return err
	}
	c.stage(src.kind(f.MIME), f)
	return nil
}

func (c *Composer) checkSize(f *File) error {
	if f.Size() <= c.opts.MaxUploadBytes {
		return nil
	}
	if c.notifier != nil {
		c.notifier.Notify(fmt.Sprintf("Arquivo muito grande. O limite é %d MB.", c.opts.MaxUploadBytes>>20))
	}
	c.logger.Info("file rejected",
		zap.String("name", f.Name),
		zap.Int64("size", f.Size()),
		zap.Int64("max", c.opts.MaxUploadBytes))
	return ErrFileTooLarge
}

func (c *Composer) stage(k content.Kind, f *File) {
	url := c.urls.Create(f)
	c.mu.Lock()
	defer c.mu.Unlock()
	var caption string
	if c.draft != nil {
		_, caption, _ = MediaOf(c.draft)
		c.revoke(c.draft)
	}
	c.draft = mediaDraft(k, Media{URL: url, File: f}, caption)
}

// SetCaption sets the caption of the staged draft. It reports false when no
// media draft is staged.
func (c *Composer) SetCaption(caption string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, _, ok := MediaOf(c.draft); !ok {
		return false
	}
	c.draft = withCaption(c.draft, caption)
	return true
}

// CancelDraft drops the staged draft and releases its local URL. Cancelling
// the draft of a message being edited cancels the edit.
func (c *Composer) CancelDraft(ctx context.Context) {
	c.mu.Lock()
	if c.draft != nil {
		c.revoke(c.draft)
		c.draft = nil
	}
	if c.editing != "" {
		c.editing = ""
		c.text = ""
	}
	c.mu.Unlock()
	c.signal(ctx, "")
}

// ReplyTo sets the reply target. It coexists with any draft.
func (c *Composer) ReplyTo(m store.Message) {
	c.mu.Lock()
	c.reply = &m
	c.mu.Unlock()
}

// ClearReply drops the reply target.
func (c *Composer) ClearReply() {
	c.mu.Lock()
	c.reply = nil
	c.mu.Unlock()
}

// BeginEdit loads m for editing. Text messages fill the text field; media
// messages become a draft reusing the remote URL.
func (c *Composer) BeginEdit(m store.Message) error {
	if m.SenderID != c.opts.Self {
		return ErrNotOwner
	}
	p := content.Decode(m.Content)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft != nil {
		c.revoke(c.draft)
	}
	c.reply = nil
	c.editing = m.ID
	if m.Kind.IsMedia() {
		c.text = ""
		c.draft = mediaDraft(m.Kind, Media{URL: p.Body}, p.Caption)
	} else {
		c.text = p.Body
		c.draft = nil
	}
	return nil
}

// CancelEdit leaves Editing and clears what the edit loaded.
func (c *Composer) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == "" {
		return
	}
	c.editing = ""
	c.text = ""
	if c.draft != nil {
		c.revoke(c.draft)
		c.draft = nil
	}
}

// StartRecording begins an audio capture and returns it so the caller can
// feed it. A capture already running is returned as is.
func (c *Composer) StartRecording(ctx context.Context) (Recording, error) {
	if c.recorder == nil {
		return nil, ErrNoMicrophone
	}
	c.mu.Lock()
	if c.recording != nil {
		rec := c.recording
		c.mu.Unlock()
		return rec, nil
	}
	c.mu.Unlock()

	rec, err := c.recorder.Start(ctx)
	if err != nil {
		c.logger.Warn("microphone unavailable", zap.Error(err))
		return nil, err
	}
	c.mu.Lock()
	c.recording = rec
	c.mu.Unlock()
	c.signal(ctx, presence.Recording)
	return rec, nil
}

// StopRecording ends the capture and stages it as an audio draft. It never
// sends.
func (c *Composer) StopRecording(ctx context.Context) error {
	c.mu.Lock()
	rec := c.recording
	c.recording = nil
	c.mu.Unlock()
	if rec == nil {
		return ErrNotRecording
	}
	c.signal(ctx, "")

	f, err := rec.Stop()
	if err != nil {
		return fmt.Errorf("stop recording: %w", err)
	}
	if f.Name == "" {
		f.Name = fmt.Sprintf("audio-%d.webm", c.opts.Clock.Now().UnixMilli())
	}
	if f.MIME == "" {
		f.MIME = "audio/webm"
	}
	if err := c.checkSize(f); err != nil {
		return err
	}
	c.stage(content.Audio, f)
	return nil
}

// CancelRecording drops the capture in progress.
func (c *Composer) CancelRecording(ctx context.Context) {
	c.mu.Lock()
	rec := c.recording
	c.recording = nil
	c.mu.Unlock()
	if rec != nil {
		rec.Cancel()
		c.signal(ctx, "")
	}
}

// Send delivers the staged draft, or the text field when no draft is staged.
// A local file is uploaded first. While editing, the edited row is updated
// instead of inserting a new one. Whether delivery succeeds or not, the
// composer is reset afterwards; a failure is kept for RestoreFailed.
// It returns the id of the inserted or updated message.
func (c *Composer) Send(ctx context.Context) (string, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	out := Failed{Text: c.text, Draft: c.draft, Reply: c.reply, EditingID: c.editing}
	c.mu.Unlock()
	if out.Draft == nil && strings.TrimSpace(out.Text) == "" {
		return "", ErrNothingToSend
	}

	id, err := c.deliver(ctx, out)
	c.reset(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		out.Err = err
		c.lastFailed = &out
		return "", err
	}
	c.lastFailed = nil
	return id, nil
}

func (c *Composer) deliver(ctx context.Context, d Failed) (string, error) {
	kind := content.Text
	body := d.Text
	if m, caption, ok := MediaOf(d.Draft); ok {
		kind = d.Draft.Kind()
		url := m.URL
		if m.Local() {
			key := content.ObjectKey(kind, c.opts.Clock.Now(), m.File.Name)
			var err error
			url, err = c.be.Upload(ctx, key, m.File.Reader(), m.File.Size(), m.File.MIME)
			if err != nil {
				c.logger.Warn("upload failed", zap.String("key", key), zap.Error(err))
				return "", fmt.Errorf("upload: %w", err)
			}
		}
		body = content.Encode(url, caption)
	}

	if d.EditingID != "" {
		if err := c.be.UpdateMessage(ctx, c.opts.Self, d.EditingID, body); err != nil {
			c.logger.Warn("edit failed", zap.String("msg_id", d.EditingID), zap.Error(err))
			return "", fmt.Errorf("update message: %w", err)
		}
		return d.EditingID, nil
	}

	m := &store.Message{
		SenderID:    c.opts.Self,
		RecipientID: c.opts.Peer,
		Content:     body,
		Kind:        kind,
	}
	if d.Reply != nil {
		m.ReplyToID = d.Reply.ID
	}
	if err := c.be.InsertMessage(ctx, m); err != nil {
		c.logger.Warn("send failed", zap.Error(err))
		return "", fmt.Errorf("insert message: %w", err)
	}
	return m.ID, nil
}

func (c *Composer) reset(ctx context.Context) {
	c.mu.Lock()
	if c.draft != nil {
		c.revoke(c.draft)
	}
	if c.recording != nil {
		c.recording.Cancel()
	}
	c.text = ""
	c.draft = nil
	c.reply = nil
	c.editing = ""
	c.recording = nil
	c.mu.Unlock()
	c.signal(ctx, "")
}

// LastFailed returns the content of the last failed send, if any.
func (c *Composer) LastFailed() *Failed {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFailed == nil {
		return nil
	}
	f := *c.lastFailed
	return &f
}

// RestoreFailed stages the content of the last failed send again, replacing
// the current state. It reports false when there is nothing to restore.
func (c *Composer) RestoreFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.lastFailed
	if f == nil {
		return false
	}
	if c.draft != nil {
		c.revoke(c.draft)
	}
	c.text = f.Text
	c.reply = f.Reply
	c.editing = f.EditingID
	c.draft = f.Draft
	if m, caption, ok := MediaOf(f.Draft); ok && m.Local() {
		m.URL = c.urls.Create(m.File)
		c.draft = mediaDraft(f.Draft.Kind(), m, caption)
	}
	c.lastFailed = nil
	return true
}

// Close releases local URLs and any capture in progress.
func (c *Composer) Close(ctx context.Context) {
	c.CancelRecording(ctx)
	c.mu.Lock()
	if c.draft != nil {
		c.revoke(c.draft)
		c.draft = nil
	}
	c.mu.Unlock()
}

// revoke releases the local URL of d. Caller holds c.mu.
func (c *Composer) revoke(d Draft) {
	if m, _, ok := MediaOf(d); ok && m.Local() {
		c.urls.Revoke(m.URL)
	}
}

func (c *Composer) signal(ctx context.Context, status string) {
	if c.typing == nil {
		return
	}
	if err := c.typing.SetStatus(ctx, status); err != nil {
		c.logger.Debug("typing status update failed", zap.String("status", status), zap.Error(err))
	}
}

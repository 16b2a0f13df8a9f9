package composer

import (
	"bytes"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/matheus3301/conversa/internal/content"
)

// File is a local file picked, captured, pasted or recorded by the user.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the byte length of the file.
func (f *File) Size() int64 { return int64(len(f.Data)) }

// Reader returns a fresh reader over the file contents.
func (f *File) Reader() io.Reader { return bytes.NewReader(f.Data) }

// Media points at the bytes of a media draft. File is nil when URL is a
// remote URL reused from an edited message.
type Media struct {
	URL  string
	File *File
}

// Local reports whether the media still has to be uploaded.
func (m Media) Local() bool { return m.File != nil }

// Draft is a staged message. Exactly one of TextDraft, ImageDraft,
// AudioDraft or AttachmentDraft.
type Draft interface {
	Kind() content.Kind
	isDraft()
}

// TextDraft is plain text, possibly with markup.
type TextDraft struct {
	Body string
}

// ImageDraft is an image with an optional caption.
type ImageDraft struct {
	Media   Media
	Caption string
}

// AudioDraft is a recorded or picked audio clip with an optional caption.
type AudioDraft struct {
	Media   Media
	Caption string
}

// AttachmentDraft is any other file with an optional caption.
type AttachmentDraft struct {
	Media   Media
	Caption string
}

func (TextDraft) Kind() content.Kind       { return content.Text }
func (ImageDraft) Kind() content.Kind      { return content.Image }
func (AudioDraft) Kind() content.Kind      { return content.Audio }
func (AttachmentDraft) Kind() content.Kind { return content.Attachment }

func (TextDraft) isDraft()       {}
func (ImageDraft) isDraft()      {}
func (AudioDraft) isDraft()      {}
func (AttachmentDraft) isDraft() {}

func mediaDraft(k content.Kind, m Media, caption string) Draft {
	switch k {
	case content.Image:
		return ImageDraft{Media: m, Caption: caption}
	case content.Audio:
		return AudioDraft{Media: m, Caption: caption}
	default:
		return AttachmentDraft{Media: m, Caption: caption}
	}
}

// MediaOf returns the media and caption of a media draft.
func MediaOf(d Draft) (Media, string, bool) {
	switch d := d.(type) {
	case ImageDraft:
		return d.Media, d.Caption, true
	case AudioDraft:
		return d.Media, d.Caption, true
	case AttachmentDraft:
		return d.Media, d.Caption, true
	default:
		return Media{}, "", false
	}
}

func withCaption(d Draft, caption string) Draft {
	m, _, ok := MediaOf(d)
	if !ok {
		return d
	}
	return mediaDraft(d.Kind(), m, caption)
}

// ObjectURLs hands out local URLs for staged files. Every URL stays valid
// until revoked.
type ObjectURLs struct {
	mu    sync.Mutex
	files map[string]*File
}

// NewObjectURLs returns an empty registry.
func NewObjectURLs() *ObjectURLs {
	return &ObjectURLs{files: make(map[string]*File)}
}

// Create registers f and returns its local URL.
func (o *ObjectURLs) Create(f *File) string {
	url := "blob:conversa/" + uuid.New().String()
	o.mu.Lock()
	o.files[url] = f
	o.mu.Unlock()
	return url
}

// Resolve returns the file behind a local URL.
func (o *ObjectURLs) Resolve(url string) (*File, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.files[url]
	return f, ok
}

// Revoke releases url. Unknown URLs are ignored.
func (o *ObjectURLs) Revoke(url string) {
	o.mu.Lock()
	delete(o.files, url)
	o.mu.Unlock()
}

// Len returns the number of live URLs.
func (o *ObjectURLs) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.files)
}

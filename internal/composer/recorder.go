package composer

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// ErrRecordingClosed is returned when writing to a stopped recording.
var ErrRecordingClosed = errors.New("recording closed")

// Recorder starts audio captures.
type Recorder interface {
	Start(ctx context.Context) (Recording, error)
}

// Recording is a capture in progress.
type Recording interface {
	// Stop ends the capture and assembles it into one file.
	Stop() (*File, error)
	// Cancel ends the capture and drops the buffer.
	Cancel()
}

// Microphone is a Recorder fed with encoded chunks by the client that owns
// the device.
type Microphone struct {
	MIME string
}

// Start implements Recorder.
func (m Microphone) Start(context.Context) (Recording, error) {
	mime := m.MIME
	if mime == "" {
		mime = "audio/webm"
	}
	return &Buffer{mime: mime}, nil
}

// Buffer collects chunks of one capture in memory.
type Buffer struct {
	mime string

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

// Write appends a chunk.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrRecordingClosed
	}
	return b.buf.Write(p)
}

// Stop implements Recording.
func (b *Buffer) Stop() (*File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrRecordingClosed
	}
	b.closed = true
	data := append([]byte(nil), b.buf.Bytes()...)
	b.buf.Reset()
	return &File{MIME: b.mime, Data: data}, nil
}

// Cancel implements Recording.
func (b *Buffer) Cancel() {
	b.mu.Lock()
	b.closed = true
	b.buf.Reset()
	b.mu.Unlock()
}

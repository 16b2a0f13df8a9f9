// Package forward copies a message into other conversations, keeping the
// sender it originally came from.
package forward

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheus3301/conversa/internal/metrics"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UnknownSender names an original sender without a profile.
const UnknownSender = "Desconhecido"

// ErrNoRecipients is returned when Forward is called with no recipient.
var ErrNoRecipients = errors.New("no recipients")

// Backend is the subset of the backend client used to forward.
type Backend interface {
	InsertMessage(ctx context.Context, m *store.Message) error
	GetProfile(ctx context.Context, id string) (*store.Profile, error)
	ListProfiles(ctx context.Context, q store.ProfileQuery) ([]store.Profile, error)
}

// Result describes a completed forward.
type Result struct {
	Messages           []store.Message
	OriginalSenderID   string
	OriginalSenderName string
	// Navigate is the chat to open next; set only for a single recipient.
	Navigate string
}

// Forwarder forwards messages on behalf of self.
type Forwarder struct {
	be     Backend
	self   string
	logger *zap.Logger
}

// New creates a Forwarder.
func New(be Backend, self string, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{be: be, self: self, logger: logger}
}

// Candidates lists the profiles m can be forwarded to from the chat with peer.
func (f *Forwarder) Candidates(ctx context.Context, peer string) ([]store.Profile, error) {
	return f.be.ListProfiles(ctx, store.ProfileQuery{Exclude: []string{f.self, peer}})
}

// Forward inserts a copy of m for every recipient. The copies carry the
// original sender of m when m was itself forwarded, and its sender otherwise.
// Inserts run concurrently; the first failure cancels the rest.
func (f *Forwarder) Forward(ctx context.Context, m store.Message, recipients []string) (Result, error) {
	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return Result{}, ErrNoRecipients
	}

	origin := m.OriginalSenderID
	if origin == "" {
		origin = m.SenderID
	}
	res := Result{OriginalSenderID: origin, OriginalSenderName: f.senderName(ctx, origin)}

	copies := make([]store.Message, len(recipients))
	g, gctx := errgroup.WithContext(ctx)
	for i, to := range recipients {
		i, to := i, to
		g.Go(func() error {
			c := store.Message{
				SenderID:         f.self,
				RecipientID:      to,
				Content:          m.Content,
				Kind:             m.Kind,
				OriginalSenderID: origin,
			}
			if err := f.be.InsertMessage(gctx, &c); err != nil {
				return fmt.Errorf("forward to %s: %w", to, err)
			}
			c.OriginalSenderName = res.OriginalSenderName
			copies[i] = c
			metrics.Forwards.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		f.logger.Warn("forward failed", zap.String("msg_id", m.ID), zap.Error(err))
		return Result{}, err
	}

	res.Messages = copies
	if len(recipients) == 1 {
		res.Navigate = recipients[0]
	}
	f.logger.Info("message forwarded",
		zap.String("msg_id", m.ID),
		zap.Int("recipients", len(recipients)))
	return res, nil
}

func (f *Forwarder) senderName(ctx context.Context, id string) string {
	p, err := f.be.GetProfile(ctx, id)
	if err != nil {
		f.logger.Debug("original sender lookup failed", zap.String("id", id), zap.Error(err))
		return UnknownSender
	}
	if p == nil || p.Name == "" {
		return UnknownSender
	}
	return p.Name
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

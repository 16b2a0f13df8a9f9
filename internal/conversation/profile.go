package conversation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
)

// Statuses self can pick besides StatusOnline.
const (
	StatusAway = "ausente"
	StatusBusy = "ocupado"
)

// ErrInvalidProfile is returned for an unknown status or a non-image avatar.
var ErrInvalidProfile = errors.New("invalid profile update")

// Avatar is a new profile picture.
type Avatar struct {
	Name string
	MIME string
	Data []byte
}

// ProfileUpdate edits self's profile. Empty fields keep their stored value.
type ProfileUpdate struct {
	Name   string
	Status string
	Avatar *Avatar
}

// SelectableStatus reports whether s can be picked in the profile settings.
func SelectableStatus(s string) bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy:
		return true
	}
	return false
}

// Profile returns self's profile.
func (m *Manager) Profile(ctx context.Context) (store.Profile, error) {
	p, err := m.be.GetProfile(ctx, m.opts.Self)
	if err != nil {
		return store.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return store.Profile{}, fmt.Errorf("self %s: %w", m.opts.Self, backend.ErrNotFound)
	}
	return *p, nil
}

// UpdateProfile uploads the avatar under avatares/<self>-<ms> when one is
// given, then stores the new name, status and photo URL.
func (m *Manager) UpdateProfile(ctx context.Context, u ProfileUpdate) (store.Profile, error) {
	p, err := m.Profile(ctx)
	if err != nil {
		return store.Profile{}, err
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		p.Name = name
	}
	if u.Status != "" {
		if !SelectableStatus(u.Status) {
			return store.Profile{}, fmt.Errorf("status %q: %w", u.Status, ErrInvalidProfile)
		}
		p.Status = u.Status
	}
	if a := u.Avatar; a != nil {
		if !strings.HasPrefix(a.MIME, "image/") {
			return store.Profile{}, fmt.Errorf("avatar type %q: %w", a.MIME, ErrInvalidProfile)
		}
		if m.opts.MaxUploadBytes > 0 && int64(len(a.Data)) > m.opts.MaxUploadBytes {
			return store.Profile{}, composer.ErrFileTooLarge
		}
		key := fmt.Sprintf("avatares/%s-%d", m.opts.Self, m.opts.Clock.Now().UnixMilli())
		url, err := m.be.Upload(ctx, key, bytes.NewReader(a.Data), int64(len(a.Data)), a.MIME)
		if err != nil {
			return store.Profile{}, err
		}
		p.PhotoURL = url
	}
	if err := m.be.UpsertProfile(ctx, &p); err != nil {
		return store.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	m.logger.Info("profile updated", zap.String("status", p.Status), zap.Bool("avatar", u.Avatar != nil))
	return p, nil
}

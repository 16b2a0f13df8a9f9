package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/matheus3301/conversa/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch, unsub := f.bus.Subscribe("profile.", 4)
	defer unsub()

	p, err := f.mgr.UpdateProfile(ctx, ProfileUpdate{
		Name:   "  Eu Mesmo ",
		Status: StatusBusy,
		Avatar: &Avatar{Name: "eu.png", MIME: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Eu Mesmo", p.Name)
	assert.Equal(t, StatusBusy, p.Status)
	assert.True(t, strings.HasPrefix(p.PhotoURL, "http://media.test/avatares/me-"), p.PhotoURL)

	select {
	case evt := <-ch:
		assert.Equal(t, bus.ProfileUpdated, evt.Kind)
	default:
		t.Fatal("no profile event published")
	}

	stored, err := f.mgr.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, stored)

	p, err = f.mgr.UpdateProfile(ctx, ProfileUpdate{Status: StatusAway})
	require.NoError(t, err)
	assert.Equal(t, "Eu Mesmo", p.Name, "empty name keeps the stored one")
	assert.Equal(t, stored.PhotoURL, p.PhotoURL)
	assert.Equal(t, StatusAway, p.Status)
}

func TestUpdateProfileRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.UpdateProfile(ctx, ProfileUpdate{Status: "invisivel"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = f.mgr.UpdateProfile(ctx, ProfileUpdate{Avatar: &Avatar{Name: "a.pdf", MIME: "application/pdf", Data: []byte("x")}})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	stored, err := f.mgr.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Eu", stored.Name)
	assert.Equal(t, StatusOnline, stored.Status)
	assert.Empty(t, stored.PhotoURL)
}

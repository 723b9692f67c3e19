package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bragforgood-api/models"
)

type stubCounter struct {
	visible, all int64
}

func (s stubCounter) CountByUser(_ context.Context, _ string, includeHidden bool) (int64, error) {
	if includeHidden {
		return s.all, nil
	}
	return s.visible, nil
}

func TestUserService_Profile(t *testing.T) {
	accounts := newMemoryAccounts(&models.User{ID: "u1", Name: "Ana", Handle: "ana", CurrentStreak: 3, LongestStreak: 5})
	svc := NewUserService(accounts, stubCounter{visible: 4, all: 5}, stubKarma{"u1": 55})

	public, err := svc.Profile(context.Background(), Viewer{ID: "u2"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(55), public.Karma)
	assert.Equal(t, GlowSilver, public.GlowTier)
	assert.Equal(t, int64(4), public.DeedCount)
	assert.Equal(t, 3, public.User.CurrentStreak)

	own, err := svc.Profile(context.Background(), Viewer{ID: "u1"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), own.DeedCount)

	_, err = svc.Profile(context.Background(), Viewer{}, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	accounts := newMemoryAccounts(&models.User{ID: "u1", Name: "Ana", PreferredLang: "en"})
	svc := NewUserService(accounts, stubCounter{}, stubKarma{})
	viewer := Viewer{ID: "u1"}

	lang := "es"
	bio := "  gardener  "
	p, err := svc.UpdateProfile(context.Background(), viewer, ProfileUpdate{PreferredLang: &lang, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "es", p.User.PreferredLang)
	assert.Equal(t, "gardener", p.User.Bio)
	assert.Equal(t, "Ana", p.User.Name)

	empty := "   "
	_, err = svc.UpdateProfile(context.Background(), viewer, ProfileUpdate{Name: &empty})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Field)
}

func TestUserService_DeleteAccount(t *testing.T) {
	accounts := newMemoryAccounts(&models.User{ID: "u1"})
	svc := NewUserService(accounts, stubCounter{}, stubKarma{})

	require.NoError(t, svc.DeleteAccount(context.Background(), Viewer{ID: "u1"}))
	assert.ErrorIs(t, svc.DeleteAccount(context.Background(), Viewer{ID: "u1"}), ErrUserNotFound)
}

package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bragforgood-api/models"
)

var errFull = errors.New("full")

func capacityCheck(deed *models.Deed, participants int64) error {
	if deed.MaxSpots != nil && participants >= int64(*deed.MaxSpots) {
		return errFull
	}
	return nil
}

func TestParticipantRepository_JoinCapacity(t *testing.T) {
	db := newTestDB(t)
	repo := NewParticipantRepository(db)
	ctx := context.Background()
	for _, id := range []string{"host", "a", "b", "c"} {
		seedUser(t, db, id)
	}
	spots := 2
	seedDeed(t, db, "ev", "host", time.Now().UTC(), callToAction(time.Now().UTC().Add(72*time.Hour), &spots))

	join := func(id, user string) (int64, error) {
		return repo.Join(ctx, &models.Participant{ID: id, DeedID: "ev", UserID: user, IsPublic: true}, capacityCheck)
	}

	n, err := join("p1", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = join("p1b", "a")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	n, err = join("p2", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = join("p3", "c")
	assert.ErrorIs(t, err, errFull)

	count, err := repo.Count(ctx, "ev")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	n, err = repo.Leave(ctx, "ev", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Leave(ctx, "ev", "a")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	n, err = join("p3", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.Join(ctx, &models.Participant{ID: "px", DeedID: "nope", UserID: "a"}, capacityCheck)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestParticipantRepository_ListPrivacy(t *testing.T) {
	db := newTestDB(t)
	repo := NewParticipantRepository(db)
	ctx := context.Background()
	for _, id := range []string{"host", "a", "b", "c"} {
		seedUser(t, db, id)
	}
	seedDeed(t, db, "ev", "host", time.Now().UTC(), callToAction(time.Now().UTC().Add(72*time.Hour), nil))

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, p := range []models.Participant{
		{ID: "p1", UserID: "a", IsPublic: true},
		{ID: "p2", UserID: "b", IsPublic: false},
		{ID: "p3", UserID: "c", IsPublic: true},
	} {
		p.DeedID = "ev"
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&p).Error)
	}
	// The default on is_public would turn a false into true on insert.
	require.NoError(t, db.Model(&models.Participant{}).Where("id = ?", "p2").Update("is_public", false).Error)

	participantIDs := func(p Page[models.Participant]) []string {
		out := []string{}
		for _, item := range p.Items {
			out = append(out, item.ID)
		}
		return out
	}

	public, err := repo.ListByDeed(ctx, "ev", "", false, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, participantIDs(public))

	own, err := repo.ListByDeed(ctx, "ev", "b", false, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, participantIDs(own))

	first, err := repo.ListByDeed(ctx, "ev", "host", true, PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, participantIDs(first))
	require.NotNil(t, first.NextCursor)

	rest, err := repo.ListByDeed(ctx, "ev", "host", true, PageRequest{Cursor: *first.NextCursor, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, participantIDs(rest))
	assert.Nil(t, rest.NextCursor)
}

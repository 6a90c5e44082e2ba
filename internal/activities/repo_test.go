package activities

import (
	"context"
	"testing"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() *Repo {
	return NewRepo(store.NewTestStore())
}

func TestRepo_AddAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	now := time.Now().UTC()

	added, err := repo.Add(ctx, "u1", Draft{
		Type:      TypeRunning,
		Name:      "morning run",
		Duration:  30,
		Calories:  250,
		Intensity: IntensityHigh,
		Notes:     "felt great",
	}, now)
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	assert.Equal(t, "u1", added.UserID)
	assert.Equal(t, now, added.Date)

	listed := repo.List(ctx, "u1")
	require.Len(t, listed, 1)
	assert.Equal(t, *added, listed[0])
}

func TestRepo_ListFiltersByUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, err := repo.Add(ctx, "u1", Draft{Name: "run", Duration: 30}, time.Now())
	require.NoError(t, err)
	_, err = repo.Add(ctx, "u2", Draft{Name: "swim", Duration: 45}, time.Now())
	require.NoError(t, err)
	_, err = repo.Add(ctx, "u1", Draft{Name: "yoga", Duration: 20}, time.Now())
	require.NoError(t, err)

	u1Activities := repo.List(ctx, "u1")
	require.Len(t, u1Activities, 2)
	for _, a := range u1Activities {
		assert.Equal(t, "u1", a.UserID)
	}
	// insertion order preserved
	assert.Equal(t, "run", u1Activities[0].Name)
	assert.Equal(t, "yoga", u1Activities[1].Name)

	assert.Len(t, repo.List(ctx, "u2"), 1)
	assert.Empty(t, repo.List(ctx, "unknown"))
}

func TestRepo_AddValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	testCases := []struct {
		name  string
		draft Draft
	}{
		{name: "empty name", draft: Draft{Duration: 30}},
		{name: "zero duration", draft: Draft{Name: "run", Duration: 0}},
		{name: "negative duration", draft: Draft{Name: "run", Duration: -5}},
		{name: "unknown type", draft: Draft{Name: "run", Duration: 30, Type: "parkour"}},
		{name: "unknown intensity", draft: Draft{Name: "run", Duration: 30, Intensity: "extreme"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Add(ctx, "u1", tc.draft, time.Now())
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// failed adds leave the collection untouched
	assert.Empty(t, repo.List(ctx, "u1"))
}

func TestRepo_AddDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	added, err := repo.Add(ctx, "u1", Draft{Name: "something", Duration: 10, Calories: -100}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, TypeOther, added.Type)
	assert.Equal(t, IntensityMedium, added.Intensity)
	assert.Equal(t, 0, added.Calories)
}

func TestRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	added, err := repo.Add(ctx, "u1", Draft{
		Name:     "run",
		Duration: 30,
		Calories: 200,
		Notes:    "old notes",
	}, time.Now().UTC())
	require.NoError(t, err)

	newDuration := 45
	newNotes := "new notes"
	updated, err := repo.Update(ctx, added.ID, Partial{
		Duration: &newDuration,
		Notes:    &newNotes,
	})
	require.NoError(t, err)

	// patched fields reflected, the rest untouched
	assert.Equal(t, 45, updated.Duration)
	assert.Equal(t, "new notes", updated.Notes)
	assert.Equal(t, "run", updated.Name)
	assert.Equal(t, 200, updated.Calories)
	assert.Equal(t, added.Date, updated.Date)

	got, err := repo.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)
}

func TestRepo_UpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	name := "whatever"
	_, err := repo.Update(ctx, "missing", Partial{Name: &name})
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestRepo_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	added, err := repo.Add(ctx, "u1", Draft{Name: "run", Duration: 30}, time.Now())
	require.NoError(t, err)
	_, err = repo.Add(ctx, "u1", Draft{Name: "swim", Duration: 40}, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, added.ID))
	assert.Len(t, repo.List(ctx, "u1"), 1)

	// deleting again changes nothing and is not an error
	require.NoError(t, repo.Delete(ctx, added.ID))
	assert.Len(t, repo.List(ctx, "u1"), 1)
}

func TestRepo_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	now := time.Now()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		added, err := repo.Add(ctx, "u1", Draft{Name: "run", Duration: 30}, now)
		require.NoError(t, err)
		assert.False(t, seen[added.ID])
		seen[added.ID] = true
	}
}

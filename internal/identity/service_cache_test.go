package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahay/internal/identity"
	"sahay/internal/identity/cache"
	"sahay/internal/profile"
)

func TestGetByID_ServesFromCacheWithinTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	viewCache := cache.NewMemory(cache.WithTTL(5*time.Second), cache.WithClock(func() time.Time { return clock() }))
	f := newFixture(t, identity.WithViewCache(viewCache))

	view := register(t, f)

	first, err := f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)

	// Mutate the store behind the service's back. Within the TTL the
	// cached view keeps being served.
	prof, err := f.profiles.FindByAccount(context.Background(), view.Account.ID)
	require.NoError(t, err)
	prof.FullName = "Changed Behind Cache"
	require.NoError(t, f.profiles.Save(context.Background(), prof))

	cached, err := f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Profile.FullName, cached.Profile.FullName)

	// Past the TTL the fresh value comes through.
	clock = func() time.Time { return now.Add(6 * time.Second) }
	fresh, err := f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed Behind Cache", fresh.Profile.FullName)
}

func TestUpsertProfile_InvalidatesCache(t *testing.T) {
	viewCache := cache.NewMemory(cache.WithTTL(time.Hour))
	f := newFixture(t, identity.WithViewCache(viewCache))

	view := register(t, f)

	_, err := f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)

	age := 29
	_, err = f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{Age: &age})
	require.NoError(t, err)

	// The write invalidated the entry, so the long TTL does not matter.
	fresh, err := f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.Profile.Age)
	assert.Equal(t, 29, *fresh.Profile.Age)
}

func TestSetSelection_InvalidatesCache(t *testing.T) {
	viewCache := cache.NewMemory(cache.WithTTL(time.Hour))
	f := newFixture(t, identity.WithViewCache(viewCache))

	view := register(t, f)
	age := 30
	marital := "married"
	members := 4
	_, err := f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{
		Age: &age, MaritalStatus: &marital, FamilyMembers: &members,
	})
	require.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)

	_, err = f.svc.SetSelection(context.Background(), view.Account.ID, true, 91.0)
	require.NoError(t, err)

	fresh, err := f.svc.GetByID(context.Background(), view.Account.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Profile.Selected)
}

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahay/internal/account"
	"sahay/internal/identity"
	"sahay/internal/profile"
	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/platform/audit"
	"sahay/pkg/platform/audit/publisher"
	auditmem "sahay/pkg/platform/audit/store/memory"
)

type fixture struct {
	svc        *identity.Service
	accounts   *account.InMemory
	profiles   *profile.InMemory
	auditStore *auditmem.InMemoryStore
}

func newFixture(t *testing.T, opts ...identity.Option) *fixture {
	t.Helper()

	accounts := account.NewInMemory()
	profiles := profile.NewInMemory()
	auditStore := auditmem.NewInMemoryStore()
	pub := publisher.NewPublisher(auditStore)
	t.Cleanup(pub.Close)

	opts = append([]identity.Option{identity.WithAuditPublisher(pub)}, opts...)
	return &fixture{
		svc:        identity.New(accounts, profiles, opts...),
		accounts:   accounts,
		profiles:   profiles,
		auditStore: auditStore,
	}
}

func newAccountID(t *testing.T) id.AccountID {
	t.Helper()
	return id.NewAccountID()
}

func register(t *testing.T, f *fixture) *identity.CombinedView {
	t.Helper()
	view, err := f.svc.Register(context.Background(), identity.RegisterInput{
		Email:    "asha@example.com",
		Mobile:   "9876543210",
		Password: "correct horse",
		FullName: "Asha Devi",
		Gender:   "female",
	})
	require.NoError(t, err)
	return view
}

func TestRegister_CreatesAccountAndProfileStub(t *testing.T) {
	f := newFixture(t)

	view := register(t, f)

	assert.Equal(t, "asha@example.com", view.Account.Email)
	assert.Equal(t, "9876543210", view.Account.Mobile)
	assert.NotEqual(t, "correct horse", view.Account.PasswordHash)
	require.NotNil(t, view.Profile)
	assert.Equal(t, "Asha Devi", view.Profile.FullName)
	assert.False(t, view.ProfileComplete())

	events, err := f.auditStore.ListByAccount(context.Background(), view.Account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventAccountRegistered), events[0].Action)
}

func TestRegister_DerivesNameFromEmailWhenMissing(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Register(context.Background(), identity.RegisterInput{
		Email:    "meena.kumari@example.com",
		Mobile:   "9876501234",
		Password: "long enough password",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meena Kumari", view.Profile.FullName)
}

func TestRegister_NormalizesEmailCase(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Register(context.Background(), identity.RegisterInput{
		Email:    "Asha@Example.COM",
		Mobile:   "9876543210",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", view.Account.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	register(t, f)

	_, err := f.svc.Register(context.Background(), identity.RegisterInput{
		Email:    "asha@example.com",
		Mobile:   "1112223334",
		Password: "another pass",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
}

func TestRegister_DuplicateMobile(t *testing.T) {
	f := newFixture(t)
	register(t, f)

	_, err := f.svc.Register(context.Background(), identity.RegisterInput{
		Email:    "other@example.com",
		Mobile:   "9876543210",
		Password: "another pass",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		in   identity.RegisterInput
	}{
		{"missing email", identity.RegisterInput{Mobile: "9876543210", Password: "long enough"}},
		{"malformed email", identity.RegisterInput{Email: "not-an-email", Mobile: "9876543210", Password: "long enough"}},
		{"missing mobile", identity.RegisterInput{Email: "a@example.com", Password: "long enough"}},
		{"short password", identity.RegisterInput{Email: "a@example.com", Mobile: "9876543210", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tc.in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestAuthenticate_ByEmail(t *testing.T) {
	f := newFixture(t)
	registered := register(t, f)

	view, err := f.svc.Authenticate(context.Background(), "asha@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, view.Account.ID)
}

func TestAuthenticate_ByMobile(t *testing.T) {
	f := newFixture(t)
	registered := register(t, f)

	view, err := f.svc.Authenticate(context.Background(), "9876543210", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, view.Account.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	f := newFixture(t)
	view := register(t, f)

	_, err := f.svc.Authenticate(context.Background(), "asha@example.com", "wrong password")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	events, listErr := f.auditStore.ListByAccount(context.Background(), view.Account.ID)
	require.NoError(t, listErr)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventAuthFailed))
}

func TestAuthenticate_UnknownIdentifierSameCode(t *testing.T) {
	f := newFixture(t)
	register(t, f)

	_, unknownErr := f.svc.Authenticate(context.Background(), "nobody@example.com", "whatever!")
	_, wrongErr := f.svc.Authenticate(context.Background(), "asha@example.com", "wrong password")

	// Lookup misses and hash mismatches must be indistinguishable.
	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, dErrors.CodeOf(unknownErr), dErrors.CodeOf(wrongErr))
	assert.Equal(t, dErrors.MessageOf(unknownErr), dErrors.MessageOf(wrongErr))
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), newAccountID(t))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpsertProfile_MergesPartialUpdates(t *testing.T) {
	f := newFixture(t)
	view := register(t, f)

	age := 32
	_, err := f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{Age: &age})
	require.NoError(t, err)

	marital := "married"
	members := 5
	prof, err := f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{
		MaritalStatus: &marital,
		FamilyMembers: &members,
	})
	require.NoError(t, err)

	// The first submission's field survives the second.
	require.NotNil(t, prof.Age)
	assert.Equal(t, 32, *prof.Age)
	assert.True(t, prof.Complete())
}

func TestUpsertProfile_PreservesSelection(t *testing.T) {
	f := newFixture(t)
	view := register(t, f)

	age := 32
	marital := "married"
	members := 5
	_, err := f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{
		Age: &age, MaritalStatus: &marital, FamilyMembers: &members,
	})
	require.NoError(t, err)

	_, err = f.svc.SetSelection(context.Background(), view.Account.ID, true, 87.5)
	require.NoError(t, err)

	// A later form submission must not clobber the scoring outcome.
	newAge := 33
	prof, err := f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{Age: &newAge})
	require.NoError(t, err)
	assert.True(t, prof.Selected)
	require.NotNil(t, prof.PredictionPercentage)
	assert.Equal(t, 87.5, *prof.PredictionPercentage)
}

func TestUpsertProfile_RejectsTooManySkills(t *testing.T) {
	f := newFixture(t)
	view := register(t, f)

	_, err := f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{
		Skills: []profile.Skill{
			{Name: "tailoring", Rating: 4, Years: 3},
			{Name: "cooking", Rating: 5, Years: 10},
			{Name: "weaving", Rating: 3, Years: 2},
			{Name: "driving", Rating: 2, Years: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestUpsertProfile_AccountGone(t *testing.T) {
	f := newFixture(t)

	age := 40
	_, err := f.svc.UpsertProfile(context.Background(), newAccountID(t), &profile.Update{Age: &age})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSetSelection_ValidatesRange(t *testing.T) {
	f := newFixture(t)
	view := register(t, f)

	_, err := f.svc.SetSelection(context.Background(), view.Account.ID, true, 140)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestIsProfileComplete_Transitions(t *testing.T) {
	f := newFixture(t)
	view := register(t, f)

	complete, err := f.svc.IsProfileComplete(context.Background(), view.Account.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	age := 28
	marital := "single"
	members := 3
	_, err = f.svc.UpsertProfile(context.Background(), view.Account.ID, &profile.Update{
		Age: &age, MaritalStatus: &marital, FamilyMembers: &members,
	})
	require.NoError(t, err)

	complete, err = f.svc.IsProfileComplete(context.Background(), view.Account.ID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestAuthenticate_ClockThroughOption(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newFixture(t, identity.WithClock(func() time.Time { return fixed }))

	view := register(t, f)
	assert.Equal(t, fixed, view.Account.CreatedAt)
	assert.Equal(t, fixed, view.Profile.CreatedAt)
}

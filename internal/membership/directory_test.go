package membership

import (
	"context"
	"encoding/json"
	"testing"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/journal"
	"stufflending/internal/ledger"
	"stufflending/internal/pkg/shortid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) (*Directory, *journal.Journal) {
	t.Helper()
	j := journal.New()
	return NewDirectory(WithRecorder(j)), j
}

func register(t *testing.T, d *Directory, username, email, phone string) *Member {
	t.Helper()
	m, err := d.Register(context.Background(), username, "password1", email, phone)
	require.NoError(t, err)
	return m
}

func TestRegisterEnforcesUniqueEmailAndPhone(t *testing.T) {
	d, j := newTestDirectory(t)
	ctx := context.Background()

	vanja := register(t, d, "vanja", "Vanja@Mail.com", "0701234567")
	assert.Equal(t, RoleMember, vanja.Role())
	assert.Len(t, vanja.ID(), 6)

	_, err := d.Register(ctx, "other", "password1", "vanja@mail.com", "0701234568")
	assert.ErrorIs(t, err, ErrNonUniqueIdentity)

	_, err = d.Register(ctx, "other", "password1", "other@mail.com", "0701234567")
	assert.ErrorIs(t, err, ErrNonUniqueIdentity)

	assert.False(t, d.IsEmailUnique("VANJA@mail.com"))
	require.Len(t, d.Users(), 1)
	assert.Same(t, vanja, d.Users()[0])
	assert.Equal(t, 1, j.Len())
}

func TestAddFailsSilentlyOnDuplicate(t *testing.T) {
	d := NewDirectory()
	first, err := NewMember("first", "password1", "same@mail.com", "0701234567")
	require.NoError(t, err)
	second, err := NewMember("second", "password1", "SAME@mail.com", "0709999999")
	require.NoError(t, err)

	assert.True(t, d.Add(first))
	assert.False(t, d.Add(second))
	assert.Len(t, d.Members(), 1)
}

func TestRegisterValidatesFields(t *testing.T) {
	d := NewDirectory()
	ctx := context.Background()

	_, err := d.Register(ctx, "ab", "password1", "a@b.se", "0701234567")
	assert.ErrorIs(t, err, ErrInvalidUsername)
	_, err = d.Register(ctx, "abc", "short", "a@b.se", "0701234567")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = d.Register(ctx, "abc", "password1", "not-an-email", "0701234567")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = d.Register(ctx, "abc", "password1", "a@b.se", "12345")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Empty(t, d.Users())
}

func TestRemoveKeepsIndexesInStep(t *testing.T) {
	d := NewDirectory()
	m := register(t, d, "vanja", "vanja@mail.com", "0701234567")

	assert.True(t, d.Remove(m))
	assert.False(t, d.Remove(m))
	assert.True(t, d.IsEmailUnique("vanja@mail.com"))
	assert.True(t, d.IsPhoneUnique("0701234567"))
}

func TestValidateCredentials(t *testing.T) {
	d := NewDirectory()
	admin, err := NewAdministrator("admin", "aaaaaaaa", "admin@mail.com", "0701234777")
	require.NoError(t, err)
	require.True(t, d.Add(admin))
	m := register(t, d, "vanja", "vanja@mail.com", "0701234567")

	id, err := d.ValidateCredentials("vanja", "password1")
	require.NoError(t, err)
	assert.Equal(t, m.ID(), id)

	id, err = d.ValidateCredentials("admin", "aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, AdministratorID, id)

	_, err = d.ValidateCredentials("vanja", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateCredentialsLastMatchWins(t *testing.T) {
	d := NewDirectory()
	register(t, d, "twin", "first@mail.com", "0701234567")
	second := register(t, d, "twin", "second@mail.com", "0701234568")

	id, err := d.ValidateCredentials("twin", "password1")
	require.NoError(t, err)
	assert.Equal(t, second.ID(), id)
}

func TestValidateCredentialsIsRateLimited(t *testing.T) {
	d := NewDirectory(WithLoginLimit(2))
	register(t, d, "vanja", "vanja@mail.com", "0701234567")

	_, err := d.ValidateCredentials("nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = d.ValidateCredentials("nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = d.ValidateCredentials("vanja", "password1")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestChangeEmailAndPhone(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	a := register(t, d, "alice", "alice@mail.com", "0701234567")
	b := register(t, d, "bob", "bob@mail.com", "0701234568")

	assert.ErrorIs(t, d.ChangeEmail(ctx, a, "BOB@mail.com"), ErrNonUniqueIdentity)
	assert.ErrorIs(t, d.ChangeEmail(ctx, a, "nope"), ErrInvalidEmail)

	require.NoError(t, d.ChangeEmail(ctx, a, "alice2@mail.com"))
	assert.Equal(t, "alice2@mail.com", a.Email())
	assert.True(t, d.IsEmailUnique("alice@mail.com"))
	assert.False(t, d.IsEmailUnique("alice2@mail.com"))

	require.NoError(t, d.ChangeEmail(ctx, a, "Alice2@mail.com"))

	assert.ErrorIs(t, d.ChangePhone(ctx, a, b.Phone()), ErrNonUniqueIdentity)
	require.NoError(t, d.ChangePhone(ctx, a, "+46701234569"))
	assert.True(t, d.IsPhoneUnique("0701234567"))
	assert.False(t, d.IsPhoneUnique("+46701234569"))

	require.NoError(t, d.ChangeUsername(a, "alicia"))
	assert.Equal(t, "alicia", a.Username())
	assert.ErrorIs(t, d.ChangeUsername(a, "al"), ErrInvalidUsername)

	require.NoError(t, d.ChangePassword(a, "new-password"))
	id, err := d.ValidateCredentials("alicia", "new-password")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), id)
}

func TestItemsAndDerivedViews(t *testing.T) {
	d := NewDirectory()
	lender := register(t, d, "vanja", "vanja@mail.com", "0701234567")
	borrower := register(t, d, "sheila", "sheila@mail.com", "0701234447")
	today := calendar.MustNew(1, 1, 2024)

	ball, err := catalog.NewItem("Ball", 50, "Nice red ball", catalog.CategorySport)
	require.NoError(t, err)
	bike, err := catalog.NewItem("Bike", 10, "Nice red bike", catalog.CategorySport)
	require.NoError(t, err)

	lender.AddItem(ball, today)
	lender.AddItem(bike, today)
	assert.Equal(t, 2*ListingBonus, lender.Credits())
	assert.Equal(t, today, ball.RegisteredOn)
	assert.Equal(t, 2, lender.NumberOfItems())

	c := ledger.NewContract(calendar.MustNew(2, 1, 2024), calendar.MustNew(4, 1, 2024), bike.ID, bike.Name,
		ledger.Party{ID: lender.ID()}, ledger.Party{ID: borrower.ID()})
	bike.Reserve(c)

	assert.Len(t, d.AllItems(), 2)
	assert.Len(t, d.AllContracts(), 1)

	owner, ok := d.FindByItemOwnerID(bike.ID)
	require.True(t, ok)
	assert.Same(t, lender, owner)

	found, ok := d.ItemByID(ball.ID)
	require.True(t, ok)
	assert.Same(t, ball, found)

	assert.True(t, lender.DeleteItem(bike.ID))
	assert.False(t, lender.DeleteItem(bike.ID))
	assert.Empty(t, bike.Reservations())
	assert.Empty(t, d.AllContracts())
	_, ok = d.FindByItemOwnerID(bike.ID)
	assert.False(t, ok)
}

func TestTrackBorrowedIsIdempotent(t *testing.T) {
	m, err := NewMember("sheila", "password1", "sheila@mail.com", "0701234447")
	require.NoError(t, err)
	item, err := catalog.NewItem("Bike", 10, "Nice red bike", catalog.CategorySport)
	require.NoError(t, err)

	assert.True(t, m.TrackBorrowed(item))
	assert.False(t, m.TrackBorrowed(item))
	assert.Len(t, m.BorrowedItems(), 1)
	assert.True(t, m.UntrackBorrowed(item.ID))
	assert.False(t, m.HasBorrowed(item.ID))
}

func TestUnregister(t *testing.T) {
	d, j := newTestDirectory(t)
	ctx := context.Background()
	m := register(t, d, "vanja", "vanja@mail.com", "0701234567")
	item, err := catalog.NewItem("Ball", 50, "Nice red ball", catalog.CategorySport)
	require.NoError(t, err)
	d.AddItem(m, item, calendar.MustNew(1, 1, 2024))
	item.Reserve(ledger.NewContract(calendar.MustNew(2, 1, 2024), calendar.MustNew(3, 1, 2024), item.ID, item.Name,
		ledger.Party{ID: m.ID()}, ledger.Party{ID: "someone"}))
	item.Reserve(ledger.NewContract(calendar.MustNew(5, 1, 2024), calendar.MustNew(6, 1, 2024), item.ID, item.Name,
		ledger.Party{ID: m.ID()}, ledger.Party{ID: "someone"}))
	assert.Equal(t, 2, item.ReservationCount())

	require.NoError(t, d.Unregister(ctx, m.ID()))
	assert.Empty(t, d.Users())
	assert.Empty(t, d.AllItems())
	assert.True(t, d.IsEmailUnique("vanja@mail.com"))

	_, err = d.FindByID(m.ID())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, d.Unregister(ctx, m.ID()), ErrUserNotFound)

	events, err := j.LoadEvents(ctx, m.ID(), 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "MemberRemoved", events[1].EventType)

	var removed MemberRemovedEvent
	require.NoError(t, json.Unmarshal(events[1].EventData, &removed))
	assert.Equal(t, 1, removed.ItemsRemoved)
	assert.Equal(t, 2, removed.ContractsRemoved)
	assert.Equal(t, ListingBonus, removed.CreditsLost)
}

func TestDeleteItemUntracksBorrowers(t *testing.T) {
	d := NewDirectory()
	lender := register(t, d, "vanja", "vanja@mail.com", "0701234567")
	borrower := register(t, d, "sheila", "sheila@mail.com", "0701234447")
	bike, err := catalog.NewItem("Bike", 10, "Nice red bike", catalog.CategorySport)
	require.NoError(t, err)
	d.AddItem(lender, bike, calendar.MustNew(1, 1, 2024))
	borrower.TrackBorrowed(bike)

	assert.False(t, d.DeleteItem(borrower, bike.ID))
	assert.True(t, borrower.HasBorrowed(bike.ID))

	assert.True(t, d.DeleteItem(lender, bike.ID))
	assert.False(t, borrower.HasBorrowed(bike.ID))
	assert.Empty(t, d.AllItems())
}

func TestUnregisterUntracksBorrowers(t *testing.T) {
	d := NewDirectory()
	ctx := context.Background()
	lender := register(t, d, "vanja", "vanja@mail.com", "0701234567")
	borrower := register(t, d, "sheila", "sheila@mail.com", "0701234447")
	bike, err := catalog.NewItem("Bike", 10, "Nice red bike", catalog.CategorySport)
	require.NoError(t, err)
	d.AddItem(lender, bike, calendar.MustNew(1, 1, 2024))
	borrower.TrackBorrowed(bike)

	require.NoError(t, d.Unregister(ctx, lender.ID()))
	assert.Empty(t, borrower.BorrowedItems())
}

func TestAddItemReassignsTakenID(t *testing.T) {
	d := NewDirectory()
	m := register(t, d, "vanja", "vanja@mail.com", "0701234567")
	today := calendar.MustNew(1, 1, 2024)
	ball, err := catalog.NewItem("Ball", 50, "Nice red ball", catalog.CategorySport)
	require.NoError(t, err)
	bike, err := catalog.NewItem("Bike", 10, "Nice red bike", catalog.CategorySport)
	require.NoError(t, err)

	d.AddItem(m, ball, today)
	bike.ID = ball.ID
	d.AddItem(m, bike, today)

	assert.NotEqual(t, ball.ID, bike.ID)
	assert.Len(t, bike.ID, 6)
	found, ok := d.ItemByID(bike.ID)
	require.True(t, ok)
	assert.Same(t, bike, found)
}

func TestRegisterReassignsTakenID(t *testing.T) {
	d := NewDirectory()
	vanja := register(t, d, "vanja", "vanja@mail.com", "0701234567")

	t.Cleanup(func() { newID = shortid.New })
	newID = func() string { return vanja.ID() }

	sheila := register(t, d, "sheila", "sheila@mail.com", "0701234447")
	assert.NotEqual(t, vanja.ID(), sheila.ID())
	assert.Len(t, sheila.ID(), shortid.Length)
	found, err := d.FindMember(sheila.ID())
	require.NoError(t, err)
	assert.Same(t, sheila, found)
}

func TestUsernameIsTrimmedOnCreate(t *testing.T) {
	d := NewDirectory()
	m, err := d.Register(context.Background(), "  vanja  ", "password1", "vanja@mail.com", "0701234567")
	require.NoError(t, err)
	assert.Equal(t, "vanja", m.Username())

	id, err := d.ValidateCredentials("vanja", "password1")
	require.NoError(t, err)
	assert.Equal(t, m.ID(), id)
}

func TestFindMemberRejectsAdministrator(t *testing.T) {
	d := NewDirectory()
	admin, err := NewAdministrator("admin", "aaaaaaaa", "admin@mail.com", "0701234777")
	require.NoError(t, err)
	d.Add(admin)

	u, err := d.FindByID(AdministratorID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdministrator, u.Role())

	_, err = d.FindMember(AdministratorID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/circulation"
	"stufflending/internal/journal"
	"stufflending/internal/membership"
	"stufflending/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	dir    *membership.Directory
	engine circulation.Service
	clock  *calendar.Clock
}

func newSession(t *testing.T) *session {
	t.Helper()
	j := journal.New()
	dir := membership.NewDirectory(membership.WithRecorder(j))
	clock := calendar.NewClockAt(calendar.MustNew(14, 12, 2023))
	require.NoError(t, seed.Administrator(dir, "admin", "aaaaaaaa", "admin@mail.com", "0701234777"))
	require.NoError(t, seed.DemoData(context.Background(), dir, clock.Today()))
	return &session{dir: dir, engine: circulation.NewService(dir, clock, j), clock: clock}
}

func (s *session) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, New(in, &out, s.dir, s.engine, nil).Run(context.Background()))
	return out.String()
}

func (s *session) item(t *testing.T, name string) *catalog.Item {
	t.Helper()
	for _, item := range s.dir.AllItems() {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("no item named %s", name)
	return nil
}

func (s *session) member(t *testing.T, username string) *membership.Member {
	t.Helper()
	for _, m := range s.dir.Members() {
		if m.Username() == username {
			return m
		}
	}
	t.Fatalf("no member named %s", username)
	return nil
}

func TestBorrowItem(t *testing.T) {
	s := newSession(t)
	ball := s.item(t, "Ball")

	out := s.run(t,
		"2", "sheila", "ssssssss",
		"1", "5", ball.ID,
		"15", "12", "2023",
		"17", "12", "2023",
		"-1", "3", "0",
	)

	assert.Contains(t, out, "Welcome sheila!")
	assert.Contains(t, out, "costs 100 credits")
	assert.Contains(t, out, "Contract created!")
	assert.Contains(t, out, "Quitting...")
	assert.Equal(t, 0, s.member(t, "sheila").Credits())
	assert.Equal(t, 600, s.member(t, "vanja").Credits())
	assert.Len(t, ball.Reservations(), 1)
	// Once when signed, then Bike and Ball under My Contracts.
	assert.Equal(t, 3, strings.Count(out, "Borrower: sheila"))
}

func TestBorrowRepromptsForPastStartDate(t *testing.T) {
	s := newSession(t)
	ball := s.item(t, "Ball")

	out := s.run(t,
		"2", "sheila", "ssssssss",
		"1", "5", ball.ID,
		"13", "12", "2023",
		"14", "13", "12", "2023",
		"14", "12", "2023",
		"0",
	)

	assert.Contains(t, out, "Start date has already passed!")
	assert.Contains(t, out, "Enter a number between 1 and 12")
	assert.Contains(t, out, "Contract created!")
	assert.Equal(t, 100, s.member(t, "sheila").Credits())
	assert.False(t, ball.Available)
}

func TestBorrowRejectsConflict(t *testing.T) {
	s := newSession(t)
	bike := s.item(t, "Bike")

	out := s.run(t,
		"2", "tea1", "tttttttt",
		"1", "5", bike.ID,
		"16", "12", "2023",
		"20", "12", "2023",
		"0",
	)

	assert.Contains(t, out, "Time conflict with an existing contract!")
	assert.Equal(t, 100, s.member(t, "tea1").Credits())
	assert.Len(t, bike.Reservations(), 1)
}

func TestMenuRepromptsAndFailedLogin(t *testing.T) {
	s := newSession(t)

	out := s.run(t, "x", "7", "2", "sheila", "wrong-password", "0")

	assert.Equal(t, 2, strings.Count(out, "Not a menu option."))
	assert.Contains(t, out, "Login failed")
	assert.NotContains(t, out, "Welcome sheila!")
}

func TestAdministratorMenu(t *testing.T) {
	s := newSession(t)
	bike := s.item(t, "Bike")

	out := s.run(t,
		"2", "admin", "aaaaaaaa",
		"1", "2", "4", "5",
		"6", "0",
	)

	assert.Contains(t, out, "vanja | vanja@mail.com | 500 credits | 2 items")
	assert.Contains(t, out, "  ["+bike.ID+"] Bike")
	assert.Contains(t, out, "Lender: vanja")
	assert.Contains(t, out, "Current date: 15/12/2023")
	assert.Equal(t, calendar.MustNew(15, 12, 2023), s.clock.Today())
	assert.False(t, bike.Available)
}

func TestRegisterThenViewCredits(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"1", "ab", "newbie", "password1", "newbie@mail.com", "0701111111",
		"2", "newbie", "password1",
		"2", "2", "0",
	)

	assert.Contains(t, out, "Registration successful!")
	assert.Contains(t, out, "Please try again.")
	assert.Contains(t, out, "You have 0 credits.")
	assert.Len(t, s.dir.Members(), 4)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newSession(t)

	out := s.run(t, "1", "other", "password1", "VANJA@mail.com", "0701111111", "0")

	assert.Contains(t, out, "Registration failed")
	assert.Len(t, s.dir.Members(), 3)
}

func TestAddAndDeleteItem(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"2", "sheila", "ssssssss",
		"1", "1", "Drill", "0", "5", "Powerful drill", "9", "tool",
		"3", "nope",
		"0",
	)

	sheila := s.member(t, "sheila")
	require.Equal(t, 1, sheila.NumberOfItems())
	drill := sheila.OwnedItems()[0]
	assert.Equal(t, catalog.CategoryTool, drill.Category)
	assert.Equal(t, 5, drill.CostPerDay)
	assert.Equal(t, calendar.MustNew(14, 12, 2023), drill.RegisteredOn)
	assert.Equal(t, 200, sheila.Credits())
	assert.Contains(t, out, "Item added:")
	assert.Contains(t, out, `You have no item with id "nope".`)

	s.run(t,
		"2", "sheila", "ssssssss",
		"1", "4", drill.ID,
		"0",
	)
	assert.Equal(t, 0, sheila.NumberOfItems())
}

func TestDeleteBorrowedItemUntracksBorrower(t *testing.T) {
	s := newSession(t)
	bike := s.item(t, "Bike")
	sheila := s.member(t, "sheila")
	require.True(t, sheila.HasBorrowed(bike.ID))

	out := s.run(t,
		"2", "vanja", "vvvvvvvv",
		"1", "4", bike.ID,
		"0",
	)

	assert.Contains(t, out, "Item "+bike.ID+" deleted.")
	assert.Empty(t, sheila.BorrowedItems())
	assert.Empty(t, s.dir.AllContracts())
}

func TestEditItem(t *testing.T) {
	s := newSession(t)
	ball := s.item(t, "Ball")

	s.run(t,
		"2", "vanja", "vvvvvvvv",
		"1", "3", ball.ID,
		"1", "Football",
		"2", "75",
		"4", "2",
		"-1", "-1", "0",
	)

	assert.Equal(t, "Football", ball.Name)
	assert.Equal(t, 75, ball.CostPerDay)
	assert.Equal(t, catalog.CategoryVehicle, ball.Category)
}

func TestChangeProfileAndDeleteAccount(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"2", "vanja", "vvvvvvvv",
		"2", "5", "tea@mail.com",
		"5", "vanja2@mail.com",
		"6", "0709876543",
		"1",
		"7", "yes",
		"0",
	)

	assert.Contains(t, out, "Email not changed")
	assert.Contains(t, out, "Email changed.")
	assert.Contains(t, out, "Phone number changed.")
	assert.Contains(t, out, "Email: vanja2@mail.com")
	assert.Contains(t, out, "Your account has been deleted.")
	assert.Len(t, s.dir.Members(), 2)
	assert.Empty(t, s.dir.AllItems())
	assert.True(t, s.dir.IsEmailUnique("vanja2@mail.com"))
}

func TestEndOfInputQuits(t *testing.T) {
	s := newSession(t)

	out := s.run(t, "2", "sheila")

	assert.Contains(t, out, "Quitting...")
}

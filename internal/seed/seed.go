// Package seed loads the accounts every session starts with.
package seed

import (
	"context"
	"fmt"
	"log"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/ledger"
	"stufflending/internal/membership"
)

// Administrator adds the single administrator account.
func Administrator(dir *membership.Directory, username, password, email, phone string) error {
	admin, err := membership.NewAdministrator(username, password, email, phone)
	if err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}
	if !dir.Add(admin) {
		return fmt.Errorf("failed to add administrator: %w", membership.ErrNonUniqueIdentity)
	}
	return nil
}

type demoMember struct {
	username, password, email, phone string
	credits                          int
}

var demoMembers = []demoMember{
	{"vanja", "vvvvvvvv", "vanja@mail.com", "0701234567", 300},
	{"tea1", "tttttttt", "tea@mail.com", "0701224567", 100},
	{"sheila", "ssssssss", "sheila@mail.com", "0701234447", 100},
}

// DemoData registers three members, lists two items for the first one and
// books the bike for the third from tomorrow for three days. The booking is
// placed directly on the item, so no credits change hands for it.
func DemoData(ctx context.Context, dir *membership.Directory, today calendar.Date) error {
	members := make([]*membership.Member, 0, len(demoMembers))
	for _, dm := range demoMembers {
		m, err := dir.Register(ctx, dm.username, dm.password, dm.email, dm.phone)
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", dm.username, err)
		}
		m.AddCredits(dm.credits)
		members = append(members, m)
	}
	vanja, sheila := members[0], members[2]

	ball, err := catalog.NewItem("Ball", 50, "Nice red ball", catalog.CategorySport)
	if err != nil {
		return err
	}
	bike, err := catalog.NewItem("Bike", 10, "Nice red bike", catalog.CategorySport)
	if err != nil {
		return err
	}
	dir.AddItem(vanja, ball, today)
	dir.AddItem(vanja, bike, today)

	bike.Reserve(ledger.NewContract(
		today.AddDays(1), today.AddDays(3),
		bike.ID, bike.Name,
		ledger.Party{ID: vanja.ID(), Username: vanja.Username()},
		ledger.Party{ID: sheila.ID(), Username: sheila.Username()},
	))
	sheila.TrackBorrowed(bike)

	log.Printf("Loaded demo data: %d members, 2 items, 1 contract", len(members))
	return nil
}

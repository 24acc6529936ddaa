package console

import (
	"context"
	"fmt"

	"stufflending/internal/calendar"
)

func (c *Console) adminScreen(ctx context.Context) (screen, error) {
	action, err := c.in.choose(adminMenu)
	if err != nil {
		return screenExit, err
	}

	switch action {
	case actMembersSimple:
		c.locked(func() {
			for _, m := range c.directory.Members() {
				writeMemberSimple(c.out, m)
			}
		})
	case actMembersVerbose:
		c.locked(func() {
			for _, m := range c.directory.Members() {
				writeMemberVerbose(c.out, m)
			}
		})
	case actAllItems:
		c.locked(func() {
			for _, item := range c.directory.AllItems() {
				writeItem(c.out, item)
			}
		})
	case actAllContracts:
		c.locked(func() {
			for _, contract := range c.directory.AllContracts() {
				writeContract(c.out, contract)
			}
		})
	case actAdvanceDay:
		c.locked(func() {
			var today calendar.Date
			today, err = c.engine.AdvanceDay(ctx, 1)
			if err == nil {
				fmt.Fprintf(c.out, "The day count has been advanced by one day.\nCurrent date: %s\n", today)
			}
		})
		if err != nil {
			fmt.Fprintf(c.out, "Could not advance the clock: %v\n", err)
		}
	case actAdminLogout, Back:
		return c.logout(), nil
	default:
		return screenExit, nil
	}
	return screenAdmin, nil
}

package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/circulation"
)

// Years outside this window are rejected when entering contract dates.
const (
	minYear = 2023
	maxYear = 2123
)

func (c *Console) itemsScreen(ctx context.Context) (screen, error) {
	action, err := c.in.choose(itemsMenu)
	if err != nil {
		return screenExit, err
	}

	switch action {
	case actAddItem:
		return screenItems, c.addItem()
	case actViewMyItems:
		c.locked(c.listMyItems)
		return screenItems, nil
	case actEditMyItem:
		return c.pickItemToEdit()
	case actDeleteMyItem:
		return screenItems, c.deleteItem()
	case actBrowseAndBorrow:
		return c.borrow(ctx)
	case Back:
		return screenMain, nil
	default:
		return screenExit, nil
	}
}

func validName(s string) error {
	if len(s) < catalog.MinNameLength {
		return catalog.ErrInvalidName
	}
	return nil
}

func validDescription(s string) error {
	if len(s) < catalog.MinDescriptionLength {
		return catalog.ErrInvalidDescription
	}
	return nil
}

func (c *Console) askCost() (int, error) {
	return c.in.number(fmt.Sprintf("Cost per day (%d-%d): ", catalog.MinCostPerDay, catalog.MaxCostPerDay),
		catalog.MinCostPerDay, catalog.MaxCostPerDay)
}

func (c *Console) askCategory() (catalog.Category, error) {
	for i, cat := range catalog.Categories {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, cat)
	}
	s, err := c.in.text("Category: ", func(s string) error {
		_, err := catalog.ParseCategory(s)
		return err
	})
	if err != nil {
		return "", err
	}
	return catalog.ParseCategory(s)
}

func (c *Console) addItem() error {
	fmt.Fprintln(c.out, "Add a new item")
	name, err := c.in.text("Name: ", validName)
	if err != nil {
		return err
	}
	cost, err := c.askCost()
	if err != nil {
		return err
	}
	description, err := c.in.text("Description: ", validDescription)
	if err != nil {
		return err
	}
	category, err := c.askCategory()
	if err != nil {
		return err
	}

	item, err := catalog.NewItem(name, cost, description, category)
	if err != nil {
		fmt.Fprintf(c.out, "Could not add item: %v\n", err)
		return nil
	}
	c.locked(func() {
		c.directory.AddItem(c.member(), item, c.engine.Today())
	})
	log.Printf("Member %s listed item %s", c.user.ID(), item.ID)
	fmt.Fprintln(c.out, "Item added:")
	writeItem(c.out, item)
	return nil
}

func (c *Console) listMyItems() {
	items := c.member().OwnedItems()
	if len(items) == 0 {
		fmt.Fprintln(c.out, "You have no items.")
	}
	for _, item := range items {
		writeItem(c.out, item)
	}
}

func (c *Console) pickItemToEdit() (screen, error) {
	c.locked(c.listMyItems)
	id, err := c.in.line("Id of the item to edit: ")
	if err != nil {
		return screenExit, err
	}

	var found bool
	c.locked(func() {
		c.editing, found = c.member().ItemByID(id)
	})
	if !found {
		fmt.Fprintf(c.out, "You have no item with id %q.\n", id)
		return screenItems, nil
	}
	return screenEditItem, nil
}

func (c *Console) deleteItem() error {
	c.locked(c.listMyItems)
	id, err := c.in.line("Id of the item to delete: ")
	if err != nil {
		return err
	}

	var deleted bool
	c.locked(func() {
		deleted = c.directory.DeleteItem(c.member(), id)
	})
	if !deleted {
		fmt.Fprintf(c.out, "You have no item with id %q.\n", id)
		return nil
	}
	log.Printf("Member %s deleted item %s", c.user.ID(), id)
	fmt.Fprintf(c.out, "Item %s deleted.\n", id)
	return nil
}

func (c *Console) editItemScreen(context.Context) (screen, error) {
	action, err := c.in.choose(editMenu)
	if err != nil {
		return screenExit, err
	}

	var apply func(*catalog.Item) error
	switch action {
	case actEditName:
		name, err := c.in.text("New name: ", validName)
		if err != nil {
			return screenExit, err
		}
		apply = func(i *catalog.Item) error { return i.Rename(name) }
	case actEditCost:
		cost, err := c.askCost()
		if err != nil {
			return screenExit, err
		}
		apply = func(i *catalog.Item) error { return i.Reprice(cost) }
	case actEditDescription:
		description, err := c.in.text("New description: ", validDescription)
		if err != nil {
			return screenExit, err
		}
		apply = func(i *catalog.Item) error { return i.Describe(description) }
	case actEditCategory:
		category, err := c.askCategory()
		if err != nil {
			return screenExit, err
		}
		apply = func(i *catalog.Item) error { return i.Recategorize(category) }
	case Back:
		c.editing = nil
		return screenItems, nil
	default:
		return screenExit, nil
	}

	c.locked(func() { err = apply(c.editing) })
	if err != nil {
		fmt.Fprintf(c.out, "Could not update item: %v\n", err)
		return screenEditItem, nil
	}
	fmt.Fprintf(c.out, "Item updated: %s\n", action.Label)
	return screenEditItem, nil
}

// borrow lists the available items, then walks the member through picking
// one and entering the dates.
func (c *Console) borrow(ctx context.Context) (screen, error) {
	c.locked(func() {
		items := c.engine.AvailableItems()
		if len(items) == 0 {
			fmt.Fprintln(c.out, "No items are available right now.")
		}
		for _, item := range items {
			writeItem(c.out, item)
		}
	})

	id, err := c.in.line("Id of the item to borrow (-1 to go back, 0 to exit): ")
	if err != nil {
		return screenExit, err
	}
	switch id {
	case "0":
		return screenExit, nil
	case "-1":
		return screenItems, nil
	}

	var item *catalog.Item
	var found bool
	c.locked(func() { item, found = c.directory.ItemByID(id) })
	if !found {
		fmt.Fprintf(c.out, "There is no item with id %q.\n", id)
		return screenItems, nil
	}

	start, err := c.askDate("start", func(d calendar.Date) error {
		var err error
		c.locked(func() { err = c.engine.ValidateStartDate(d) })
		return err
	})
	if err != nil {
		return screenExit, err
	}
	end, err := c.askDate("return", func(d calendar.Date) error {
		return c.engine.ValidateEndDate(start, d)
	})
	if err != nil {
		return screenExit, err
	}

	req := circulation.BorrowRequest{ItemID: item.ID, BorrowerID: c.user.ID(), Start: start, End: end}
	c.locked(func() {
		var cost int
		cost, err = c.engine.Quote(item.ID, start, end)
		if err != nil {
			return
		}
		fmt.Fprintf(c.out, "Borrowing %s from %s to %s costs %d credits.\n", item.Name, start, end, cost)
		contract, signErr := c.engine.SignContract(ctx, req)
		if signErr != nil {
			err = signErr
			return
		}
		fmt.Fprintln(c.out, "Contract created!")
		writeContract(c.out, contract)
	})
	if err != nil {
		fmt.Fprintln(c.out, rejectionMessage(err))
	}
	return screenItems, nil
}

// askDate asks for a day, a month and a year until they form a real date
// that check accepts.
func (c *Console) askDate(kind string, check func(calendar.Date) error) (calendar.Date, error) {
	for {
		day, err := c.in.number(fmt.Sprintf("Enter the day of the %s date: ", kind), 1, 31)
		if err != nil {
			return calendar.Date{}, err
		}
		month, err := c.in.number(fmt.Sprintf("Enter the month of the %s date: ", kind), 1, 12)
		if err != nil {
			return calendar.Date{}, err
		}
		year, err := c.in.number(fmt.Sprintf("Enter the year of the %s date: ", kind), minYear, maxYear)
		if err != nil {
			return calendar.Date{}, err
		}

		d, err := calendar.New(day, month, year)
		if err == nil {
			err = check(d)
		}
		if err != nil {
			fmt.Fprintf(c.out, "%s Please enter a valid %s date.\n", rejectionMessage(err), kind)
			continue
		}
		return d, nil
	}
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, circulation.ErrItemNotFound):
		return "Item not found!"
	case errors.Is(err, circulation.ErrMemberNotFound):
		return "Member not found!"
	case errors.Is(err, circulation.ErrInsufficientCredits):
		return "Not enough credits!"
	case errors.Is(err, circulation.ErrDateRangeConflict):
		return "Time conflict with an existing contract!"
	case errors.Is(err, circulation.ErrStartDateInPast):
		return "Start date has already passed!"
	case errors.Is(err, circulation.ErrEndDateBeforeStart):
		return "Return date is before start date!"
	case errors.Is(err, calendar.ErrInvalidDate):
		return "That day does not exist!"
	default:
		return capitalize(err.Error()) + "!"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

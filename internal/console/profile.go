package console

import (
	"context"
	"fmt"
	"log"
	"strings"

	"stufflending/internal/membership"
)

func (c *Console) profileScreen(ctx context.Context) (screen, error) {
	action, err := c.in.choose(profileMenu)
	if err != nil {
		return screenExit, err
	}

	m := c.member()
	switch action {
	case actProfileDetails:
		c.locked(func() {
			fmt.Fprintf(c.out, "Id: %s\nUsername: %s\nEmail: %s\nPhone number: %s\nCredits: %d\nItems owned: %d\nItems borrowed: %d\n",
				m.ID(), m.Username(), m.Email(), m.Phone(), m.Credits(), m.NumberOfItems(), len(m.BorrowedItems()))
		})
	case actCredits:
		c.locked(func() {
			fmt.Fprintf(c.out, "You have %d credits.\n", m.Credits())
		})
	case actChangeUsername:
		username, err := c.in.text("New username: ", membership.ValidateUsername)
		if err != nil {
			return screenExit, err
		}
		c.update("Username", func() error { return c.directory.ChangeUsername(m, username) })
	case actChangePassword:
		password, err := c.in.text("New password: ", membership.ValidatePassword)
		if err != nil {
			return screenExit, err
		}
		c.update("Password", func() error { return c.directory.ChangePassword(m, password) })
	case actChangeEmail:
		email, err := c.in.text("New email: ", membership.ValidateEmail)
		if err != nil {
			return screenExit, err
		}
		c.update("Email", func() error { return c.directory.ChangeEmail(ctx, m, email) })
	case actChangePhone:
		phone, err := c.in.text("New phone number: ", membership.ValidatePhone)
		if err != nil {
			return screenExit, err
		}
		c.update("Phone number", func() error { return c.directory.ChangePhone(ctx, m, phone) })
	case actDeleteAccount:
		return c.deleteAccount(ctx)
	case Back:
		return screenMain, nil
	default:
		return screenExit, nil
	}
	return screenProfile, nil
}

func (c *Console) update(what string, fn func() error) {
	var err error
	c.locked(func() { err = fn() })
	if err != nil {
		fmt.Fprintf(c.out, "%s not changed: %v\n", what, err)
		return
	}
	fmt.Fprintf(c.out, "%s changed.\n", what)
}

func (c *Console) deleteAccount(ctx context.Context) (screen, error) {
	answer, err := c.in.line("This removes your account and all your items. Type yes to confirm: ")
	if err != nil {
		return screenExit, err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(c.out, "Account kept.")
		return screenProfile, nil
	}

	id := c.user.ID()
	c.locked(func() { err = c.directory.Unregister(ctx, id) })
	if err != nil {
		fmt.Fprintf(c.out, "Could not delete account: %v\n", err)
		return screenProfile, nil
	}
	log.Printf("Member %s deleted their account", id)
	fmt.Fprintln(c.out, "Your account has been deleted.")
	return c.logout(), nil
}

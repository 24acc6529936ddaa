// Package console is the text front end of the lending system.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"stufflending/internal/catalog"
	"stufflending/internal/circulation"
	"stufflending/internal/membership"
)

// Console runs one interactive session at a time against the directory and
// the circulation engine.
type Console struct {
	in        *prompter
	out       io.Writer
	directory *membership.Directory
	engine    circulation.Service
	mu        sync.Locker

	user    membership.User
	editing *catalog.Item
}

// New creates a console reading answers from in and writing to out. mu is
// held while the session touches shared state; pass the same locker to any
// other front end serving the same directory.
func New(in io.Reader, out io.Writer, directory *membership.Directory, engine circulation.Service, mu sync.Locker) *Console {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Console{
		in:        newPrompter(in, out),
		out:       out,
		directory: directory,
		engine:    engine,
		mu:        mu,
	}
}

// Run shows the menus until the user exits, the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Welcome to the Stuff Lending System!")
	c.locked(func() {
		fmt.Fprintf(c.out, "Current date: %s\n", c.engine.Today())
	})

	handlers := map[screen]func(context.Context) (screen, error){
		screenAuth:     c.authScreen,
		screenMain:     c.mainScreen,
		screenItems:    c.itemsScreen,
		screenEditItem: c.editItemScreen,
		screenProfile:  c.profileScreen,
		screenAdmin:    c.adminScreen,
	}

	current := screenAuth
	for current != screenExit {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Availability follows the clock on every menu entry.
		c.locked(func() { c.engine.Refresh() })

		next, err := handlers[current](ctx)
		if errors.Is(err, errEndOfInput) {
			break
		}
		if err != nil {
			return err
		}
		current = next
	}

	fmt.Fprintln(c.out, "Quitting...")
	return nil
}

func (c *Console) locked(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// member returns the logged-in member, or nil for the administrator.
func (c *Console) member() *membership.Member {
	m, _ := c.user.(*membership.Member)
	return m
}

func (c *Console) logout() screen {
	if c.user != nil {
		log.Printf("User %s logged out", c.user.ID())
	}
	c.user = nil
	c.editing = nil
	return screenAuth
}

func (c *Console) authScreen(ctx context.Context) (screen, error) {
	action, err := c.in.choose(authMenu)
	if err != nil {
		return screenExit, err
	}

	switch action {
	case actRegister:
		return screenAuth, c.register(ctx)
	case actLogin:
		return c.login()
	default:
		// Back has nowhere to go from here.
		return screenExit, nil
	}
}

func (c *Console) register(ctx context.Context) error {
	fmt.Fprintln(c.out, "Register a new member")
	username, err := c.in.text("Username: ", membership.ValidateUsername)
	if err != nil {
		return err
	}
	password, err := c.in.text("Password: ", membership.ValidatePassword)
	if err != nil {
		return err
	}
	email, err := c.in.text("Email: ", membership.ValidateEmail)
	if err != nil {
		return err
	}
	phone, err := c.in.text("Phone number: ", membership.ValidatePhone)
	if err != nil {
		return err
	}

	var m *membership.Member
	c.locked(func() {
		m, err = c.directory.Register(ctx, username, password, email, phone)
	})
	if err != nil {
		fmt.Fprintf(c.out, "Registration failed: %v\n", err)
		return nil
	}
	log.Printf("Member %s registered", m.ID())
	fmt.Fprintln(c.out, "Registration successful! You can now log in.")
	return nil
}

func (c *Console) login() (screen, error) {
	fmt.Fprintln(c.out, "Log in")
	username, err := c.in.line("Username: ")
	if err != nil {
		return screenExit, err
	}
	password, err := c.in.line("Password: ")
	if err != nil {
		return screenExit, err
	}

	var user membership.User
	c.locked(func() {
		var id string
		id, err = c.directory.ValidateCredentials(username, password)
		if err != nil {
			return
		}
		user, err = c.directory.FindByID(id)
	})
	if err != nil {
		fmt.Fprintf(c.out, "Login failed: %v\n", err)
		return screenAuth, nil
	}

	c.user = user
	log.Printf("User %s logged in", user.ID())
	fmt.Fprintf(c.out, "Welcome %s!\n", user.Username())
	if user.Role() == membership.RoleAdministrator {
		return screenAdmin, nil
	}
	return screenMain, nil
}

func (c *Console) mainScreen(ctx context.Context) (screen, error) {
	action, err := c.in.choose(mainMenu)
	if err != nil {
		return screenExit, err
	}

	switch action {
	case actItems:
		return screenItems, nil
	case actMyProfile:
		return screenProfile, nil
	case actMyContracts:
		c.locked(func() {
			contracts := c.engine.MemberContracts(c.member())
			if len(contracts) == 0 {
				fmt.Fprintln(c.out, "You have no contracts.")
			}
			for _, contract := range contracts {
				writeContract(c.out, contract)
			}
		})
		return screenMain, nil
	case actLogout, Back:
		return c.logout(), nil
	default:
		return screenExit, nil
	}
}

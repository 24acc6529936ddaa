// internal/membership/domain.go
package membership

import (
	"strings"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/pkg/shortid"
)

// Role tells members and the administrator apart.
type Role string

const (
	RoleMember        Role = "Member"
	RoleAdministrator Role = "Administrator"
)

// AdministratorID is the fixed id of the single administrator account.
const AdministratorID = "adminID"

// newID draws member ids.
var newID = shortid.New

// ListingBonus is granted to a member for every item they register.
const ListingBonus = 100

// User is either a *Member or an *Administrator.
type User interface {
	ID() string
	Username() string
	Email() string
	Phone() string
	Role() Role
	account() *profile
}

// Credential holds a salted password hash.
type Credential struct {
	PasswordHash string
	Salt         string
}

type profile struct {
	id         string
	username   string
	email      string
	phone      string
	role       Role
	credential Credential
}

func newProfile(id string, role Role, username, password, email, phone string) (profile, error) {
	if err := ValidateUsername(username); err != nil {
		return profile{}, err
	}
	if err := ValidateEmail(email); err != nil {
		return profile{}, err
	}
	if err := ValidatePhone(phone); err != nil {
		return profile{}, err
	}
	p := profile{id: id, role: role, username: strings.TrimSpace(username), email: email, phone: phone}
	if err := p.setPassword(password); err != nil {
		return profile{}, err
	}
	return p, nil
}

func (p *profile) ID() string        { return p.id }
func (p *profile) Username() string  { return p.username }
func (p *profile) Email() string     { return p.email }
func (p *profile) Phone() string     { return p.phone }
func (p *profile) Role() Role        { return p.role }
func (p *profile) account() *profile { return p }

func (p *profile) setPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, salt, err := hashPassword(password)
	if err != nil {
		return err
	}
	p.credential = Credential{PasswordHash: hash, Salt: salt}
	return nil
}

func (p *profile) checkPassword(password string) bool {
	ok, err := verifyPassword(password, p.credential.Salt, p.credential.PasswordHash)
	return err == nil && ok
}

// Administrator can inspect the system and advance the clock. It owns no
// items and holds no credits.
type Administrator struct {
	profile
}

func NewAdministrator(username, password, email, phone string) (*Administrator, error) {
	p, err := newProfile(AdministratorID, RoleAdministrator, username, password, email, phone)
	if err != nil {
		return nil, err
	}
	return &Administrator{profile: p}, nil
}

// Member owns items, borrows items and holds a credit balance.
type Member struct {
	profile
	credits  int
	owned    []*catalog.Item
	borrowed []*catalog.Item
}

// NewMember validates the profile fields and returns a member with no
// credits and no items.
func NewMember(username, password, email, phone string) (*Member, error) {
	p, err := newProfile(newID(), RoleMember, username, password, email, phone)
	if err != nil {
		return nil, err
	}
	return &Member{profile: p}, nil
}

func (m *Member) Credits() int {
	return m.credits
}

func (m *Member) AddCredits(n int) {
	m.credits += n
}

// DeductCredits lowers the balance without any funds check; the settlement
// engine checks funds before calling it.
func (m *Member) DeductCredits(n int) {
	m.credits -= n
}

// AddItem registers item as owned by m, stamps its registration date and
// grants the listing bonus.
func (m *Member) AddItem(item *catalog.Item, today calendar.Date) {
	m.owned = append(m.owned, item)
	item.RegisteredOn = today
	m.AddCredits(ListingBonus)
}

// DeleteItem removes an owned item together with all of its reservations.
func (m *Member) DeleteItem(id string) bool {
	for i, item := range m.owned {
		if item.ID == id {
			item.ClearReservations()
			m.owned = append(m.owned[:i], m.owned[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Member) ItemByID(id string) (*catalog.Item, bool) {
	for _, item := range m.owned {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

func (m *Member) OwnedItems() []*catalog.Item {
	out := make([]*catalog.Item, len(m.owned))
	copy(out, m.owned)
	return out
}

func (m *Member) NumberOfItems() int {
	return len(m.owned)
}

func (m *Member) BorrowedItems() []*catalog.Item {
	out := make([]*catalog.Item, len(m.borrowed))
	copy(out, m.borrowed)
	return out
}

func (m *Member) HasBorrowed(itemID string) bool {
	for _, item := range m.borrowed {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

// TrackBorrowed records item as borrowed by m. An item already tracked under
// an earlier contract is not added twice; the return value reports whether
// it was added.
func (m *Member) TrackBorrowed(item *catalog.Item) bool {
	if m.HasBorrowed(item.ID) {
		return false
	}
	m.borrowed = append(m.borrowed, item)
	return true
}

func (m *Member) UntrackBorrowed(itemID string) bool {
	for i, item := range m.borrowed {
		if item.ID == itemID {
			m.borrowed = append(m.borrowed[:i], m.borrowed[i+1:]...)
			return true
		}
	}
	return false
}

// MemberRegisteredEvent is recorded when a member joins.
type MemberRegisteredEvent struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MemberRemovedEvent is recorded when a member deletes their account.
type MemberRemovedEvent struct {
	ID               string `json:"id"`
	ItemsRemoved     int    `json:"items_removed"`
	ContractsRemoved int    `json:"contracts_removed"`
	CreditsLost      int    `json:"credits_lost"`
}

// ProfileChangedEvent is recorded when a contact field changes.
type ProfileChangedEvent struct {
	ID    string `json:"id"`
	Field string `json:"field"`
}

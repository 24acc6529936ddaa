// internal/membership/directory.go
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/journal"
	"stufflending/internal/ledger"
	"stufflending/internal/pkg/shortid"

	"golang.org/x/time/rate"
)

var (
	ErrNonUniqueIdentity  = errors.New("email or phone number already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many login attempts, try again later")
)

// Recorder receives the directory's domain events.
type Recorder interface {
	AppendEvents(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []journal.Event) error
	CurrentVersion(ctx context.Context, aggregateID string) (int, error)
}

// Directory holds every account and keeps an email index and a phone index
// in step with the account list.
type Directory struct {
	users       []User
	byEmail     map[string]User
	byPhone     map[string]User
	rateLimiter *rate.Limiter
	recorder    Recorder
}

type Option func(*Directory)

// WithLoginLimit allows n credential checks per minute, in bursts of n.
func WithLoginLimit(n int) Option {
	return func(d *Directory) {
		if n > 0 {
			d.rateLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(d *Directory) {
		d.recorder = r
	}
}

func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		byEmail:     make(map[string]User),
		byPhone:     make(map[string]User),
		rateLimiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func (d *Directory) IsEmailUnique(email string) bool {
	_, taken := d.byEmail[emailKey(email)]
	return !taken
}

func (d *Directory) IsPhoneUnique(phone string) bool {
	_, taken := d.byPhone[phone]
	return !taken
}

// Add inserts u if neither its email nor its phone number is taken.
func (d *Directory) Add(u User) bool {
	if !d.IsEmailUnique(u.Email()) || !d.IsPhoneUnique(u.Phone()) {
		return false
	}
	d.users = append(d.users, u)
	d.byEmail[emailKey(u.Email())] = u
	d.byPhone[u.Phone()] = u
	return true
}

// Remove deletes u from the list and both indexes.
func (d *Directory) Remove(u User) bool {
	for i, existing := range d.users {
		if existing == u {
			d.users = append(d.users[:i], d.users[i+1:]...)
			delete(d.byEmail, emailKey(u.Email()))
			delete(d.byPhone, u.Phone())
			return true
		}
	}
	return false
}

// Register creates a member and adds it to the directory.
func (d *Directory) Register(ctx context.Context, username, password, email, phone string) (*Member, error) {
	if !d.IsEmailUnique(email) || !d.IsPhoneUnique(phone) {
		return nil, ErrNonUniqueIdentity
	}
	member, err := NewMember(username, password, email, phone)
	if err != nil {
		return nil, err
	}
	if d.idTaken(member.ID()) {
		member.id = shortid.NewUnique(d.idTaken)
	}

	if err := d.record(ctx, member.ID(), "MemberRegistered", MemberRegisteredEvent{
		ID:       member.ID(),
		Username: member.Username(),
		Email:    member.Email(),
	}); err != nil {
		return nil, err
	}

	if !d.Add(member) {
		return nil, ErrNonUniqueIdentity
	}
	return member, nil
}

// Unregister removes a member's account. Their owned items, and the
// reservations on them, leave with the account.
func (d *Directory) Unregister(ctx context.Context, id string) error {
	member, err := d.FindMember(id)
	if err != nil {
		return err
	}

	contracts := 0
	for _, item := range member.OwnedItems() {
		contracts += item.ReservationCount()
	}
	if err := d.record(ctx, id, "MemberRemoved", MemberRemovedEvent{
		ID:               id,
		ItemsRemoved:     member.NumberOfItems(),
		ContractsRemoved: contracts,
		CreditsLost:      member.Credits(),
	}); err != nil {
		return err
	}

	for _, item := range member.OwnedItems() {
		d.DeleteItem(member, item.ID)
	}
	d.Remove(member)
	return nil
}

// AddItem lists item under owner. An item whose id is already in the catalog
// gets a fresh one first.
func (d *Directory) AddItem(owner *Member, item *catalog.Item, today calendar.Date) {
	if d.itemIDTaken(item.ID) {
		item.ID = shortid.NewUnique(d.itemIDTaken)
	}
	owner.AddItem(item, today)
}

// DeleteItem removes one of owner's items with its reservations and drops it
// from every member's borrowed list.
func (d *Directory) DeleteItem(owner *Member, itemID string) bool {
	if !owner.DeleteItem(itemID) {
		return false
	}
	for _, m := range d.Members() {
		m.UntrackBorrowed(itemID)
	}
	return true
}

func (d *Directory) idTaken(id string) bool {
	_, err := d.FindByID(id)
	return err == nil
}

func (d *Directory) itemIDTaken(id string) bool {
	_, ok := d.ItemByID(id)
	return ok
}

func (d *Directory) FindByID(id string) (User, error) {
	for _, u := range d.users {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

// FindMember is FindByID restricted to members.
func (d *Directory) FindMember(id string) (*Member, error) {
	u, err := d.FindByID(id)
	if err != nil {
		return nil, err
	}
	member, ok := u.(*Member)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a member", ErrUserNotFound, id)
	}
	return member, nil
}

// FindByItemOwnerID returns the member owning the item with the given id.
func (d *Directory) FindByItemOwnerID(itemID string) (*Member, bool) {
	for _, m := range d.Members() {
		if _, ok := m.ItemByID(itemID); ok {
			return m, true
		}
	}
	return nil, false
}

// ValidateCredentials returns the id of the account matching username and
// password. Usernames are not unique, so the last match in registration
// order wins.
func (d *Directory) ValidateCredentials(username, password string) (string, error) {
	if !d.rateLimiter.Allow() {
		return "", ErrRateLimited
	}

	matchedID := ""
	for _, u := range d.users {
		if u.Username() == username && u.account().checkPassword(password) {
			matchedID = u.ID()
		}
	}
	if matchedID == "" {
		return "", ErrInvalidCredentials
	}
	return matchedID, nil
}

func (d *Directory) ChangeUsername(u User, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.account().username = strings.TrimSpace(username)
	return nil
}

func (d *Directory) ChangePassword(u User, password string) error {
	return u.account().setPassword(password)
}

// ChangeEmail moves u to a new email, keeping the email index in step.
func (d *Directory) ChangeEmail(ctx context.Context, u User, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if owner, taken := d.byEmail[emailKey(email)]; taken && owner != u {
		return ErrNonUniqueIdentity
	}
	if err := d.record(ctx, u.ID(), "ProfileChanged", ProfileChangedEvent{ID: u.ID(), Field: "email"}); err != nil {
		return err
	}

	p := u.account()
	delete(d.byEmail, emailKey(p.email))
	p.email = email
	d.byEmail[emailKey(email)] = u
	return nil
}

// ChangePhone moves u to a new phone number, keeping the phone index in step.
func (d *Directory) ChangePhone(ctx context.Context, u User, phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if owner, taken := d.byPhone[phone]; taken && owner != u {
		return ErrNonUniqueIdentity
	}
	if err := d.record(ctx, u.ID(), "ProfileChanged", ProfileChangedEvent{ID: u.ID(), Field: "phone"}); err != nil {
		return err
	}

	p := u.account()
	delete(d.byPhone, p.phone)
	p.phone = phone
	d.byPhone[phone] = u
	return nil
}

// Users returns every account in registration order.
func (d *Directory) Users() []User {
	out := make([]User, len(d.users))
	copy(out, d.users)
	return out
}

// Members returns every member account in registration order.
func (d *Directory) Members() []*Member {
	var members []*Member
	for _, u := range d.users {
		if m, ok := u.(*Member); ok {
			members = append(members, m)
		}
	}
	return members
}

// AllItems flattens every member's owned items. There is no separate item
// store; the catalog is this view.
func (d *Directory) AllItems() []*catalog.Item {
	var items []*catalog.Item
	for _, m := range d.Members() {
		items = append(items, m.OwnedItems()...)
	}
	return items
}

func (d *Directory) ItemByID(id string) (*catalog.Item, bool) {
	for _, item := range d.AllItems() {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// AllContracts flattens the reservations of every item.
func (d *Directory) AllContracts() []ledger.Contract {
	var contracts []ledger.Contract
	for _, item := range d.AllItems() {
		contracts = append(contracts, item.Reservations()...)
	}
	return contracts
}

func (d *Directory) record(ctx context.Context, aggregateID, eventType string, data any) error {
	if d.recorder == nil {
		return nil
	}
	event, err := journal.NewEvent(eventType, data)
	if err != nil {
		return err
	}
	version, err := d.recorder.CurrentVersion(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if err := d.recorder.AppendEvents(ctx, aggregateID, "member", version, []journal.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

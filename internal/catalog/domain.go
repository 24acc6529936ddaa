// internal/catalog/domain.go
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stufflending/internal/calendar"
	"stufflending/internal/ledger"
	"stufflending/internal/pkg/shortid"

	"github.com/google/uuid"
)

var (
	ErrInvalidName        = errors.New("item name must be at least 3 characters")
	ErrInvalidCost        = errors.New("cost per day must be between 1 and 1000")
	ErrInvalidDescription = errors.New("description must be at least 10 characters")
	ErrInvalidCategory    = errors.New("unknown category")
)

const (
	MinNameLength        = 3
	MinDescriptionLength = 10
	MinCostPerDay        = 1
	MaxCostPerDay        = 1000
)

// Category groups items for browsing.
type Category string

const (
	CategoryTool    Category = "TOOL"
	CategoryVehicle Category = "VEHICLE"
	CategoryGame    Category = "GAME"
	CategoryToy     Category = "TOY"
	CategorySport   Category = "SPORT"
	CategoryOther   Category = "OTHER"
)

// Categories lists every category in menu order.
var Categories = []Category{
	CategoryTool,
	CategoryVehicle,
	CategoryGame,
	CategoryToy,
	CategorySport,
	CategoryOther,
}

// ParseCategory accepts a category name in any case or its 1-based position
// in Categories.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(Categories) {
			return Categories[n-1], nil
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidCategory, s)
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidCategory, s)
}

// Item is something a member offers for lending. It always belongs to
// exactly one member and carries its own reservation list.
type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CostPerDay   int           `json:"cost_per_day"`
	Description  string        `json:"description"`
	Category     Category      `json:"category"`
	RegisteredOn calendar.Date `json:"registered_on"`
	Available    bool          `json:"available"`

	reservations ledger.Reservations
}

// NewItem validates the fields and returns an available item with a fresh
// short id.
func NewItem(name string, costPerDay int, description string, category Category) (*Item, error) {
	item := &Item{
		ID:        shortid.New(),
		Available: true,
	}
	if err := item.Rename(name); err != nil {
		return nil, err
	}
	if err := item.Reprice(costPerDay); err != nil {
		return nil, err
	}
	if err := item.Describe(description); err != nil {
		return nil, err
	}
	if err := item.Recategorize(category); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength {
		return ErrInvalidName
	}
	i.Name = name
	return nil
}

func (i *Item) Reprice(costPerDay int) error {
	if costPerDay < MinCostPerDay || costPerDay > MaxCostPerDay {
		return ErrInvalidCost
	}
	i.CostPerDay = costPerDay
	return nil
}

func (i *Item) Describe(description string) error {
	description = strings.TrimSpace(description)
	if len(description) < MinDescriptionLength {
		return ErrInvalidDescription
	}
	i.Description = description
	return nil
}

func (i *Item) Recategorize(category Category) error {
	for _, c := range Categories {
		if c == category {
			i.Category = category
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidCategory, category)
}

// Reservations returns a copy of the item's contracts in signing order.
func (i *Item) Reservations() []ledger.Contract {
	return i.reservations.All()
}

func (i *Item) Reserve(c ledger.Contract) {
	i.reservations.Add(c)
}

// CancelReservation removes one contract and reports whether it was present.
func (i *Item) CancelReservation(id uuid.UUID) bool {
	return i.reservations.Remove(id)
}

func (i *Item) Reservation(id uuid.UUID) (ledger.Contract, bool) {
	return i.reservations.Find(id)
}

func (i *Item) ReservationCount() int {
	return i.reservations.Len()
}

func (i *Item) ClearReservations() {
	i.reservations.Clear()
}

// ConflictingReservation returns the first contract overlapping [start, end].
func (i *Item) ConflictingReservation(start, end calendar.Date) (ledger.Contract, bool) {
	return i.reservations.Conflicting(start, end)
}

// ReservedOn reports whether some contract covers day.
func (i *Item) ReservedOn(day calendar.Date) bool {
	return i.reservations.ActiveOn(day)
}

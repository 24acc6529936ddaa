// internal/ledger/reservations.go
package ledger

import (
	"stufflending/internal/calendar"

	"github.com/google/uuid"
)

// Reservations is the ordered list of contracts held by a single item.
// The zero value is ready to use.
type Reservations struct {
	contracts []Contract
}

func (r *Reservations) Add(c Contract) {
	r.contracts = append(r.contracts, c)
}

// Remove drops the contract with the given id and reports whether it existed.
func (r *Reservations) Remove(id uuid.UUID) bool {
	for i, c := range r.contracts {
		if c.ID == id {
			r.contracts = append(r.contracts[:i], r.contracts[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Reservations) Find(id uuid.UUID) (Contract, bool) {
	for _, c := range r.contracts {
		if c.ID == id {
			return c, true
		}
	}
	return Contract{}, false
}

// All returns a copy of the contracts in signing order.
func (r *Reservations) All() []Contract {
	out := make([]Contract, len(r.contracts))
	copy(out, r.contracts)
	return out
}

func (r *Reservations) Len() int {
	return len(r.contracts)
}

// Conflicting returns the first contract that collides with [start, end].
func (r *Reservations) Conflicting(start, end calendar.Date) (Contract, bool) {
	for _, c := range r.contracts {
		if c.Conflicts(start, end) {
			return c, true
		}
	}
	return Contract{}, false
}

// ActiveOn reports whether any contract covers day.
func (r *Reservations) ActiveOn(day calendar.Date) bool {
	for _, c := range r.contracts {
		if c.ActiveOn(day) {
			return true
		}
	}
	return false
}

func (r *Reservations) Clear() {
	r.contracts = nil
}

// internal/ledger/contract.go
package ledger

import (
	"stufflending/internal/calendar"

	"github.com/google/uuid"
)

// Party is a snapshot of the member on one side of a contract, taken when
// the contract is signed.
type Party struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Contract reserves one item for an inclusive range of days.
type Contract struct {
	ID        uuid.UUID     `json:"id"`
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	ItemID    string        `json:"item_id"`
	ItemName  string        `json:"item_name"`
	Lender    Party         `json:"lender"`
	Borrower  Party         `json:"borrower"`
}

// NewContract stamps a fresh contract id. The caller guarantees that end is
// not before start.
func NewContract(start, end calendar.Date, itemID, itemName string, lender, borrower Party) Contract {
	return Contract{
		ID:        uuid.New(),
		StartDate: start,
		EndDate:   end,
		ItemID:    itemID,
		ItemName:  itemName,
		Lender:    lender,
		Borrower:  borrower,
	}
}

// Cost is the per-day rate times the day-number difference of [start, end].
// A same-day contract is free.
func Cost(costPerDay int, start, end calendar.Date) int {
	return costPerDay * start.DaysBetween(end)
}

// Cost prices c at the given per-day rate.
func (c Contract) Cost(costPerDay int) int {
	return Cost(costPerDay, c.StartDate, c.EndDate)
}

// ActiveOn reports whether day falls inside the reserved range.
func (c Contract) ActiveOn(day calendar.Date) bool {
	return day.InRange(c.StartDate, c.EndDate)
}

// Conflicts reports whether a request for [start, end] collides with c: the
// requested start or end lands inside c, or the request wraps c entirely.
func (c Contract) Conflicts(start, end calendar.Date) bool {
	return start.InRange(c.StartDate, c.EndDate) ||
		end.InRange(c.StartDate, c.EndDate) ||
		(start.Before(c.StartDate) && end.After(c.EndDate))
}

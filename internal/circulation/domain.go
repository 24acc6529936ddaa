// internal/circulation/domain.go
package circulation

import (
	"errors"

	"stufflending/internal/calendar"

	"github.com/google/uuid"
)

// Rejections. Each one leaves every account, item and reservation untouched.
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInsufficientCredits = errors.New("not enough credits")
	ErrDateRangeConflict   = errors.New("item is already reserved for some of those days")
	ErrStartDateInPast     = errors.New("start date has already passed")
	ErrEndDateBeforeStart  = errors.New("end date is before start date")
	ErrContractNotFound    = errors.New("contract not found")
	ErrInvalidAdvance      = errors.New("the clock can only move forward")
)

// BorrowRequest asks to borrow ItemID for BorrowerID from Start to End,
// both days included.
type BorrowRequest struct {
	ItemID     string
	BorrowerID string
	Start      calendar.Date
	End        calendar.Date
}

// ContractSignedEvent is recorded when credits change hands for a contract.
type ContractSignedEvent struct {
	ContractID uuid.UUID     `json:"contract_id"`
	ItemID     string        `json:"item_id"`
	LenderID   string        `json:"lender_id"`
	BorrowerID string        `json:"borrower_id"`
	StartDate  calendar.Date `json:"start_date"`
	EndDate    calendar.Date `json:"end_date"`
	Cost       int           `json:"cost"`
}

// ContractDeletedEvent is recorded when a reservation is removed from an item.
type ContractDeletedEvent struct {
	ContractID uuid.UUID `json:"contract_id"`
	ItemID     string    `json:"item_id"`
}

// DayAdvancedEvent is recorded each time the administrator moves the clock.
type DayAdvancedEvent struct {
	Days  int           `json:"days"`
	Today calendar.Date `json:"today"`
}

// rejectionReason labels an error for the rejected-contracts counter.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, ErrDateRangeConflict):
		return "date_range_conflict"
	case errors.Is(err, ErrStartDateInPast):
		return "start_date_in_past"
	case errors.Is(err, ErrEndDateBeforeStart):
		return "end_date_before_start"
	default:
		return "internal"
	}
}

// internal/circulation/service.go
package circulation

import (
	"context"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/journal"
	"stufflending/internal/ledger"
	"stufflending/internal/membership"

	"github.com/google/uuid"
)

// Service schedules reservations and settles credits between members.
type Service interface {
	// SignContract checks the date preconditions, then creates the contract.
	SignContract(ctx context.Context, req BorrowRequest) (ledger.Contract, error)
	// CreateContract assumes the dates were already checked.
	CreateContract(ctx context.Context, req BorrowRequest) (ledger.Contract, error)
	ValidateStartDate(start calendar.Date) error
	ValidateEndDate(start, end calendar.Date) error
	Quote(itemID string, start, end calendar.Date) (int, error)
	DeleteContract(ctx context.Context, item *catalog.Item, contractID uuid.UUID) error
	RefreshAvailability(today calendar.Date) int
	Refresh() int
	AdvanceDay(ctx context.Context, days int) (calendar.Date, error)
	Today() calendar.Date
	MemberContracts(m *membership.Member) []ledger.Contract
	AvailableItems() []*catalog.Item
}

// Recorder receives the engine's domain events.
type Recorder interface {
	AppendEvents(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []journal.Event) error
	CurrentVersion(ctx context.Context, aggregateID string) (int, error)
}

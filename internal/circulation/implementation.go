// internal/circulation/implementation.go
package circulation

import (
	"context"
	"fmt"
	"log"

	"stufflending/internal/calendar"
	"stufflending/internal/catalog"
	"stufflending/internal/journal"
	"stufflending/internal/ledger"
	"stufflending/internal/membership"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// service implements the Service interface.
type service struct {
	directory *membership.Directory
	clock     *calendar.Clock
	recorder  Recorder
	tracer    trace.Tracer
	signed    metric.Int64Counter
	rejected  metric.Int64Counter
}

type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records the engine's counters on mp instead of the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// NewService creates the scheduling and settlement engine.
func NewService(directory *membership.Directory, clock *calendar.Clock, recorder Recorder, opts ...Option) Service {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter("stufflending/circulation")
	return &service{
		directory: directory,
		clock:     clock,
		recorder:  recorder,
		tracer:    otel.Tracer("stufflending/circulation"),
		signed:    counter(meter, "contracts.signed", "Contracts signed and settled"),
		rejected:  counter(meter, "contracts.rejected", "Borrow requests rejected"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("{contract}"))
	if err != nil {
		log.Printf("Failed to create counter %s: %v", name, err)
		return noop.Int64Counter{}
	}
	return c
}

func (s *service) Today() calendar.Date {
	return s.clock.Today()
}

func (s *service) ValidateStartDate(start calendar.Date) error {
	if today := s.clock.Today(); start.Before(today) {
		return fmt.Errorf("%w: %s is before %s", ErrStartDateInPast, start, today)
	}
	return nil
}

func (s *service) ValidateEndDate(start, end calendar.Date) error {
	if end.Before(start) {
		return fmt.Errorf("%w: %s is before %s", ErrEndDateBeforeStart, end, start)
	}
	return nil
}

// SignContract is CreateContract guarded by the date preconditions.
func (s *service) SignContract(ctx context.Context, req BorrowRequest) (ledger.Contract, error) {
	if err := s.ValidateStartDate(req.Start); err != nil {
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectionReason(err))))
		return ledger.Contract{}, err
	}
	if err := s.ValidateEndDate(req.Start, req.End); err != nil {
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectionReason(err))))
		return ledger.Contract{}, err
	}
	return s.CreateContract(ctx, req)
}

// CreateContract validates the request against the directory, the borrower's
// balance and the item's reservations, then settles it. The first failing
// check wins and nothing is changed.
func (s *service) CreateContract(ctx context.Context, req BorrowRequest) (ledger.Contract, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.create_contract",
		trace.WithAttributes(
			attribute.String("item.id", req.ItemID),
			attribute.String("borrower.id", req.BorrowerID),
			attribute.String("start.date", req.Start.String()),
			attribute.String("end.date", req.End.String()),
		),
	)
	defer span.End()

	contract, err := s.createContract(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectionReason(err))))
		return ledger.Contract{}, err
	}

	span.SetAttributes(attribute.String("contract.id", contract.ID.String()))
	s.signed.Add(ctx, 1)
	return contract, nil
}

func (s *service) createContract(ctx context.Context, req BorrowRequest) (ledger.Contract, error) {
	// Step 1: the item, and the member who owns it
	item, ok := s.directory.ItemByID(req.ItemID)
	if !ok {
		return ledger.Contract{}, fmt.Errorf("%w: %s", ErrItemNotFound, req.ItemID)
	}
	lender, ok := s.directory.FindByItemOwnerID(item.ID)
	if !ok {
		return ledger.Contract{}, fmt.Errorf("%w: %s has no owner", ErrItemNotFound, req.ItemID)
	}

	// Step 2: the borrower
	borrower, err := s.directory.FindMember(req.BorrowerID)
	if err != nil {
		return ledger.Contract{}, fmt.Errorf("%w: %s", ErrMemberNotFound, req.BorrowerID)
	}

	// Step 3: funds
	cost := ledger.Cost(item.CostPerDay, req.Start, req.End)
	if borrower.Credits() < cost {
		return ledger.Contract{}, fmt.Errorf("%w: costs %d, balance is %d", ErrInsufficientCredits, cost, borrower.Credits())
	}

	// Step 4: overlap with existing reservations
	if existing, conflict := item.ConflictingReservation(req.Start, req.End); conflict {
		return ledger.Contract{}, fmt.Errorf("%w: reserved %s to %s", ErrDateRangeConflict, existing.StartDate, existing.EndDate)
	}

	contract := ledger.NewContract(req.Start, req.End, item.ID, item.Name,
		ledger.Party{ID: lender.ID(), Username: lender.Username()},
		ledger.Party{ID: borrower.ID(), Username: borrower.Username()},
	)
	if err := s.settle(ctx, item, lender, borrower, contract, cost); err != nil {
		return ledger.Contract{}, err
	}
	return contract, nil
}

// settle applies a validated contract. If the event cannot be recorded every
// step is rolled back.
func (s *service) settle(ctx context.Context, item *catalog.Item, lender, borrower *membership.Member, contract ledger.Contract, cost int) error {
	item.Reserve(contract)
	newlyTracked := borrower.TrackBorrowed(item)
	borrower.DeductCredits(cost)
	lender.AddCredits(cost)

	compensation := func() {
		log.Printf("Compensating for failed contract %s: rolling back item %s and %d credits", contract.ID, item.ID, cost)
		lender.DeductCredits(cost)
		borrower.AddCredits(cost)
		if newlyTracked {
			borrower.UntrackBorrowed(item.ID)
		}
		item.CancelReservation(contract.ID)
	}

	err := s.record(ctx, item.ID, "item", "ContractSigned", ContractSignedEvent{
		ContractID: contract.ID,
		ItemID:     item.ID,
		LenderID:   lender.ID(),
		BorrowerID: borrower.ID(),
		StartDate:  contract.StartDate,
		EndDate:    contract.EndDate,
		Cost:       cost,
	})
	if err != nil {
		compensation()
		return err
	}

	item.Available = !item.ReservedOn(s.clock.Today())
	return nil
}

// Quote returns what borrowing itemID for [start, end] would cost.
func (s *service) Quote(itemID string, start, end calendar.Date) (int, error) {
	item, ok := s.directory.ItemByID(itemID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return ledger.Cost(item.CostPerDay, start, end), nil
}

// DeleteContract removes a reservation from its item and recomputes the
// item's availability for today. Credits are not refunded and the borrower
// keeps the item in their borrowed list.
func (s *service) DeleteContract(ctx context.Context, item *catalog.Item, contractID uuid.UUID) error {
	if _, ok := item.Reservation(contractID); !ok {
		return fmt.Errorf("%w: %s", ErrContractNotFound, contractID)
	}
	if err := s.record(ctx, item.ID, "item", "ContractDeleted", ContractDeletedEvent{
		ContractID: contractID,
		ItemID:     item.ID,
	}); err != nil {
		return err
	}
	item.CancelReservation(contractID)
	item.Available = !item.ReservedOn(s.clock.Today())
	return nil
}

// RefreshAvailability marks every item unavailable if a reservation covers
// today and available otherwise. It returns how many flags changed.
func (s *service) RefreshAvailability(today calendar.Date) int {
	changed := 0
	for _, item := range s.directory.AllItems() {
		available := !item.ReservedOn(today)
		if item.Available != available {
			item.Available = available
			changed++
		}
	}
	return changed
}

// Refresh is RefreshAvailability for the clock's current day.
func (s *service) Refresh() int {
	return s.RefreshAvailability(s.clock.Today())
}

// AdvanceDay moves the simulated clock and refreshes availability.
func (s *service) AdvanceDay(ctx context.Context, days int) (calendar.Date, error) {
	if days < 1 {
		return s.clock.Today(), fmt.Errorf("%w: %d days", ErrInvalidAdvance, days)
	}

	next := s.clock.Today().AddDays(days)
	if err := s.record(ctx, "clock", "clock", "DayAdvanced", DayAdvancedEvent{Days: days, Today: next}); err != nil {
		return s.clock.Today(), err
	}

	s.clock.AdvanceDay(days)
	changed := s.Refresh()
	log.Printf("Clock advanced by %d day(s) to %s (%d since %s), %d item(s) changed availability",
		days, next, s.clock.DaysElapsed(), s.clock.StartDate(), changed)
	return next, nil
}

// MemberContracts lists the contracts on m's own items followed by those on
// items m has borrowed.
func (s *service) MemberContracts(m *membership.Member) []ledger.Contract {
	seen := make(map[uuid.UUID]bool)
	var contracts []ledger.Contract
	items := append(m.OwnedItems(), m.BorrowedItems()...)
	for _, item := range items {
		for _, c := range item.Reservations() {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			contracts = append(contracts, c)
		}
	}
	return contracts
}

// AvailableItems lists the items that are not reserved today.
func (s *service) AvailableItems() []*catalog.Item {
	var items []*catalog.Item
	for _, item := range s.directory.AllItems() {
		if item.Available {
			items = append(items, item)
		}
	}
	return items
}

func (s *service) record(ctx context.Context, aggregateID, aggregateType, eventType string, data any) error {
	if s.recorder == nil {
		return nil
	}
	event, err := journal.NewEvent(eventType, data)
	if err != nil {
		return err
	}
	version, err := s.recorder.CurrentVersion(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if err := s.recorder.AppendEvents(ctx, aggregateID, aggregateType, version, []journal.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

// Event is one recorded domain fact.
type Event struct {
	ID            int64             `json:"id"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	EventType     string            `json:"event_type"`
	EventData     json.RawMessage   `json:"event_data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Version       int               `json:"version"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewEvent marshals data into an event of the given type.
func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return Event{EventType: eventType, EventData: raw}, nil
}

// Journal is an append-only, in-process event log with per-aggregate
// optimistic concurrency. Nothing is persisted.
type Journal struct {
	mu       sync.RWMutex
	events   []Event
	versions map[string]int
	nextID   int64
	now      func() time.Time
	tracer   trace.Tracer
}

func New() *Journal {
	return &Journal{
		versions: make(map[string]int),
		nextID:   1,
		now:      time.Now,
		tracer:   otel.Tracer("stufflending/journal"),
	}
}

// AppendEvents appends events for one aggregate. expectedVersion must match
// the aggregate's current version, otherwise nothing is written.
func (j *Journal) AppendEvents(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []Event) error {
	_, span := j.tracer.Start(ctx, "journal.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	currentVersion := j.versions[aggregateID]
	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	for i, event := range events {
		event.ID = j.nextID
		event.AggregateID = aggregateID
		event.AggregateType = aggregateType
		event.Version = expectedVersion + i + 1
		event.CreatedAt = j.now().UTC()
		j.nextID++
		j.events = append(j.events, event)

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", event.ID),
			attribute.Int("event.version", event.Version),
			attribute.String("event.type", event.EventType),
		))
	}
	j.versions[aggregateID] = expectedVersion + len(events)

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// LoadEvents returns an aggregate's events with fromVersion <= version, and
// version <= toVersion when toVersion is positive.
func (j *Journal) LoadEvents(ctx context.Context, aggregateID string, fromVersion, toVersion int) ([]Event, error) {
	_, span := j.tracer.Start(ctx, "journal.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	j.mu.RLock()
	defer j.mu.RUnlock()

	var events []Event
	for _, event := range j.events {
		if event.AggregateID != aggregateID || event.Version < fromVersion {
			continue
		}
		if toVersion > 0 && event.Version > toVersion {
			continue
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// CurrentVersion returns the latest version for an aggregate, 0 if unknown.
func (j *Journal) CurrentVersion(ctx context.Context, aggregateID string) (int, error) {
	_, span := j.tracer.Start(ctx, "journal.get_version",
		trace.WithAttributes(attribute.String("aggregate.id", aggregateID)),
	)
	defer span.End()

	j.mu.RLock()
	defer j.mu.RUnlock()

	version := j.versions[aggregateID]
	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

// StreamEvents returns up to batchSize events with an id greater than fromID,
// in append order.
func (j *Journal) StreamEvents(ctx context.Context, fromID int64, batchSize int) ([]Event, error) {
	_, span := j.tracer.Start(ctx, "journal.stream",
		trace.WithAttributes(
			attribute.Int64("from.id", fromID),
			attribute.Int("batch.size", batchSize),
		),
	)
	defer span.End()

	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	var events []Event
	for _, event := range j.events {
		if event.ID <= fromID {
			continue
		}
		events = append(events, event)
		if len(events) == batchSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("events.streamed", len(events)))
	return events, nil
}

// Len returns the number of recorded events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}

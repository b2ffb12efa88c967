/*
Package events is the notification port of the club engine.

PURPOSE:
  One-way, best-effort dispatch of domain events (calendar changed,
  balance changed, tournament/match updated) to interested observers.
  Workflows publish strictly AFTER their atomic unit commits; a publish
  failure is logged and never propagated, so the core's correctness never
  depends on delivery.

TOPICS:
  CalendarChanged   broadcast; a reservation was added or cancelled
  BalanceChanged    targeted at one member; their wallet moved
  TournamentUpdated broadcast; bracket generated or state changed
  MatchUpdated      broadcast; a match result was recorded

DELIVERY SEMANTICS:
  At-least-once within the process, no acknowledgement, no retry. A real
  deployment plugs a push channel (websocket hub, message broker) in as a
  subscriber; the engine only sees the Publisher interface.
*/
package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pcm/club-engine/domain"
)

// =============================================================================
// TOPICS AND EVENTS
// =============================================================================

type Topic string

const (
	TopicCalendarChanged   Topic = "CalendarChanged"
	TopicBalanceChanged    Topic = "BalanceChanged"
	TopicTournamentUpdated Topic = "TournamentUpdated"
	TopicMatchUpdated      Topic = "MatchUpdated"
)

// Event is the base interface for all published events.
type Event interface {
	EventTopic() Topic
}

type CalendarAction string

const (
	ActionAdded     CalendarAction = "Added"
	ActionCancelled CalendarAction = "Cancelled"
)

// CalendarChangedEvent announces a reservation added to or removed from a
// court's calendar.
type CalendarChangedEvent struct {
	CourtID       domain.CourtID
	CourtName     string
	ReservationID domain.ReservationID
	Slot          domain.Interval
	Status        domain.ReservationStatus
	Action        CalendarAction
}

func (e CalendarChangedEvent) EventTopic() Topic { return TopicCalendarChanged }

// BalanceChangedEvent is targeted at the owning member only, never
// broadcast.
type BalanceChangedEvent struct {
	MemberID   domain.MemberID
	EntryID    domain.EntryID
	Kind       domain.EntryKind
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
	OccurredAt time.Time
}

func (e BalanceChangedEvent) EventTopic() Topic { return TopicBalanceChanged }

// TournamentUpdatedEvent announces a tournament state change (schedule
// generated, status moved).
type TournamentUpdatedEvent struct {
	TournamentID domain.TournamentID
	Status       domain.TournamentStatus
	MatchCount   int
}

func (e TournamentUpdatedEvent) EventTopic() Topic { return TopicTournamentUpdated }

// MatchUpdatedEvent announces a recorded match result.
type MatchUpdatedEvent struct {
	MatchID      domain.MatchID
	TournamentID domain.TournamentID
	Score1       int
	Score2       int
	Winner       domain.MatchWinner
	Status       domain.MatchStatus
}

func (e MatchUpdatedEvent) EventTopic() Topic { return TopicMatchUpdated }

// =============================================================================
// PUBLISHER PORT
// =============================================================================

// Publisher is the outbound port the workflows call after commit.
// Implementations must not block the caller on delivery and must not
// surface delivery failures.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards all events. Useful default for tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) {}

// =============================================================================
// BUS - In-process fan-out
// =============================================================================

// Handler receives events for the topics it subscribed to.
type Handler func(ctx context.Context, event Event)

// Bus fans events out to subscribers synchronously. Subscriber panics are
// recovered and logged; the publisher never learns about them.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Topic][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish delivers the event to every subscriber of its topic.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventTopic()]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(ctx, event, h)
	}
}

func (b *Bus) deliver(ctx context.Context, event Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"topic": event.EventTopic(),
				"panic": r,
			}).Warn("event subscriber panicked")
		}
	}()
	h(ctx, event)
}

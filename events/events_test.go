package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/events"
)

func TestBus_DeliversToTopicSubscribersOnly(t *testing.T) {
	// GIVEN: Subscribers on two different topics
	// WHEN: Publishing a calendar event
	// THEN: Only the calendar subscribers see it

	bus := events.NewBus()

	var calendar, balance []events.Event
	bus.Subscribe(events.TopicCalendarChanged, func(_ context.Context, e events.Event) {
		calendar = append(calendar, e)
	})
	bus.Subscribe(events.TopicCalendarChanged, func(_ context.Context, e events.Event) {
		calendar = append(calendar, e)
	})
	bus.Subscribe(events.TopicBalanceChanged, func(_ context.Context, e events.Event) {
		balance = append(balance, e)
	})

	bus.Publish(context.Background(), events.CalendarChangedEvent{
		CourtID: "c1",
		Action:  events.ActionAdded,
	})

	assert.Len(t, calendar, 2, "every topic subscriber is notified")
	assert.Empty(t, balance)
}

func TestBus_SubscriberPanicDoesNotReachPublisher(t *testing.T) {
	// GIVEN: A panicking subscriber ahead of a healthy one
	// WHEN: Publishing
	// THEN: Publish returns normally and the healthy subscriber still runs

	bus := events.NewBus()

	delivered := false
	bus.Subscribe(events.TopicMatchUpdated, func(context.Context, events.Event) {
		panic("subscriber bug")
	})
	bus.Subscribe(events.TopicMatchUpdated, func(context.Context, events.Event) {
		delivered = true
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.MatchUpdatedEvent{
			MatchID: "m1",
			Winner:  domain.WinnerSide1,
		})
	})
	assert.True(t, delivered)
}

func TestBus_NoSubscribers_Noop(t *testing.T) {
	bus := events.NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.TournamentUpdatedEvent{TournamentID: "t1"})
	})
}

package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	ctx := context.Background()

	var created, terminated int
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		created++
		return nil
	})
	dispatcher.Subscribe(EventContractTerminated, func(context.Context, Event) error {
		terminated++
		return nil
	})

	if err := dispatcher.Publish(ctx, Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := dispatcher.Publish(ctx, Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if created != 2 {
		t.Errorf("created handler ran %d times, want 2", created)
	}
	if terminated != 0 {
		t.Errorf("terminated handler ran %d times, want 0", terminated)
	}
}

func TestSubscribeAllSeesEveryEvent(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	ctx := context.Background()

	var seen []EventType
	dispatcher.SubscribeAll(func(_ context.Context, event Event) error {
		seen = append(seen, event.Type)
		return nil
	})

	for _, eventType := range []EventType{EventTicketCreated, EventContractExpired, EventReminderBatchFinished} {
		if err := dispatcher.Publish(ctx, Event{Type: eventType}); err != nil {
			t.Fatalf("publish %s: %v", eventType, err)
		}
	}

	if len(seen) != 3 {
		t.Fatalf("catch-all saw %d events, want 3", len(seen))
	}
	if seen[1] != EventContractExpired {
		t.Errorf("seen[1] = %s, want %s", seen[1], EventContractExpired)
	}
}

func TestHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	ctx := context.Background()

	var delivered bool
	dispatcher.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		return errors.New("handler blew up")
	})
	dispatcher.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(ctx, Event{Type: EventTicketClosed}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !delivered {
		t.Fatal("second handler not invoked after first returned an error")
	}
}

package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("message.", 10)
	defer unsub()

	b.Publish(Event{Kind: MessageInserted, Payload: "m1"})

	select {
	case evt := <-ch:
		if evt.Kind != MessageInserted {
			t.Errorf("got kind %q, want %s", evt.Kind, MessageInserted)
		}
		if evt.ID == "" || evt.Timestamp.IsZero() {
			t.Errorf("event not stamped: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("reaction.", 10)
	defer unsub()

	b.Publish(Event{Kind: SessionStatusChanged})
	b.Publish(Event{Kind: ReactionChanged})

	select {
	case evt := <-ch:
		if evt.Kind != ReactionChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, ReactionChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeWhere(t *testing.T) {
	b := New()
	ch, unsub := b.SubscribeWhere("typing.", 10, func(e Event) bool {
		return e.Payload == "peer"
	})
	defer unsub()

	b.Publish(Event{Kind: TypingChanged, Payload: "someone-else"})
	b.Publish(Event{Kind: TypingChanged, Payload: "peer"})

	select {
	case evt := <-ch:
		if evt.Payload != "peer" {
			t.Errorf("payload = %v, want peer", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("session.", 10)
	unsub()
	unsub()

	if n := b.Subscribers(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}

	b.Publish(Event{Kind: SessionStatusChanged})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()

	b.Publish(Event{Kind: "test.one"})
	// Dropped, the buffer is full.
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
}

package events

import (
	"encoding/json"
	"testing"
)

func TestHubEmit(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers=%d", h.Subscribers())
	}

	h.Emit("req-1", TypeLeadsReverted, map[string]int{"reverted": 4})

	var e Event
	if err := json.Unmarshal([]byte(<-ch), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Type != TypeLeadsReverted || e.RequestID != "req-1" || e.Version != 1 {
		t.Fatalf("unexpected event %+v", e)
	}
	if string(e.Data) != `{"reverted":4}` {
		t.Fatalf("data %s", e.Data)
	}

	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		h.Publish("x")
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected full buffer, got %d/%d", len(ch), cap(ch))
	}
}

func TestNilHubEmitIsSafe(t *testing.T) {
	var h *Hub
	h.Emit("", TypePing, nil)
}

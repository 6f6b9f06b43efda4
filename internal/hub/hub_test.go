package hub

import (
	"fmt"
	"testing"
)

func TestSubscribePublishOrder(t *testing.T) {
	h := New()
	sub, ok := h.Subscribe()
	if !ok {
		t.Fatal("Subscribe failed on open hub")
	}

	for i := 0; i < 10; i++ {
		h.Publish([]byte(fmt.Sprintf("msg-%d", i)))
	}

	for i := 0; i < 10; i++ {
		got := string(<-sub.Send)
		want := fmt.Sprintf("msg-%d", i)
		if got != want {
			t.Fatalf("message %d = %q, want %q", i, got, want)
		}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := New()
	a, _ := h.Subscribe()
	b, _ := h.Subscribe()

	h.Publish([]byte("hello"))

	if got := string(<-a.Send); got != "hello" {
		t.Errorf("subscriber a got %q", got)
	}
	if got := string(<-b.Send); got != "hello" {
		t.Errorf("subscriber b got %q", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New()
	sub, _ := h.Subscribe()

	h.Unsubscribe(sub.ID)
	if _, open := <-sub.Send; open {
		t.Fatal("Send still open after Unsubscribe")
	}
	if h.Count() != 0 {
		t.Fatalf("count = %d, want 0", h.Count())
	}

	// Unknown ids are a no-op.
	h.Unsubscribe("nope")
	h.Unsubscribe(sub.ID)
}

func TestPublishPrunesBackedUpSubscriber(t *testing.T) {
	h := New()
	slow, _ := h.Subscribe()

	for i := 0; i < sendBufferSize+1; i++ {
		h.Publish([]byte("x"))
	}

	if h.Count() != 0 {
		t.Fatalf("count = %d, want 0 (backed-up subscriber pruned)", h.Count())
	}

	// The pruned subscriber's channel closes after its buffered backlog.
	for i := 0; i < sendBufferSize; i++ {
		<-slow.Send
	}
	if _, open := <-slow.Send; open {
		t.Fatal("pruned subscriber's channel still open")
	}

	// The hub keeps serving new subscribers afterwards.
	live, _ := h.Subscribe()
	h.Publish([]byte("y"))
	if got := string(<-live.Send); got != "y" {
		t.Fatalf("got %q, want %q", got, "y")
	}
}

func TestSendTargetsOneSubscriber(t *testing.T) {
	h := New()
	a, _ := h.Subscribe()
	b, _ := h.Subscribe()

	if !h.Send(a.ID, []byte("private")) {
		t.Fatal("Send to live subscriber failed")
	}
	if got := string(<-a.Send); got != "private" {
		t.Errorf("got %q", got)
	}

	select {
	case data := <-b.Send:
		t.Fatalf("other subscriber received %q", data)
	default:
	}

	if h.Send("missing", []byte("x")) {
		t.Error("Send to unknown id reported success")
	}
}

func TestCloseRejectsNewSubscribers(t *testing.T) {
	h := New()
	sub, _ := h.Subscribe()

	h.Close()
	if _, open := <-sub.Send; open {
		t.Fatal("Send still open after Close")
	}

	if _, ok := h.Subscribe(); ok {
		t.Fatal("Subscribe succeeded on closed hub")
	}

	// Idempotent.
	h.Close()
}

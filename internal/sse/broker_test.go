package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/models"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "share.created", Data: map[string]int{"length": 42}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: share.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"length":42`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func drain(ch chan []byte) (changes, refreshes int) {
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: "+EventPreviewRefresh) {
				refreshes++
			} else {
				changes++
			}
		default:
			return changes, refreshes
		}
	}
}

func TestPublishChange_RefreshThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change triggers preview.refresh, the second one right after does not.
	b.PublishChange(menu.Change{Kind: menu.CategoryAdded, ID: "c1"})
	b.PublishChange(menu.Change{Kind: menu.ItemAdded, ID: "i1"})

	time.Sleep(50 * time.Millisecond)
	changes, refreshes := drain(ch)
	if changes != 2 {
		t.Errorf("change events = %d, want 2", changes)
	}
	if refreshes != 1 {
		t.Errorf("refresh events = %d, want 1 (throttled)", refreshes)
	}
}

func TestFollowForwardsStoreChanges(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	s := menu.NewStore()
	unfollow := b.Follow(s)
	id := s.AddCategory("Drinks")

	select {
	case msg := <-ch:
		got := string(msg)
		if !strings.Contains(got, "event: "+EventMenuChanged) {
			t.Errorf("unexpected event %q", got)
		}
		if !strings.Contains(got, `"kind":"category.added"`) || !strings.Contains(got, `"id":"`+id+`"`) {
			t.Errorf("missing change data in %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
	}

	unfollow()
	s.SetBrandInfo(models.BrandPatch{Name: ptr("Cafe")})
	time.Sleep(50 * time.Millisecond)
	// only the refresh of the first change may still be queued
	if changes, _ := drain(ch); changes != 0 {
		t.Errorf("got %d change events after unfollow", changes)
	}
}

func ptr[T any](v T) *T { return &v }

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishChange(menu.Change{Kind: menu.ThemeUpdated})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: menu.changed") || !strings.Contains(body, "event: preview.refresh") {
		t.Errorf("handler output missing events: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.PublishChange(menu.Change{Kind: menu.ItemUpdated, ID: "x"})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "x", Data: map[string]string{}})
	b.PublishChange(menu.Change{Kind: menu.StateReplaced})
}

func TestEventsCarryIncreasingIDs(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "a", Data: 1})
	b.Publish(Event{Type: "b", Data: 2})

	for _, want := range []string{"id: 1\nevent: a\n", "id: 2\nevent: b\n"} {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(string(msg), want) {
				t.Errorf("got %q, want prefix %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestSSEHandlerKeepAlive(t *testing.T) {
	b := NewBroker(time.Hour, WithKeepAlive(10*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(80 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(w.Body.String(), ": ping\n\n") {
		t.Errorf("no keep-alive in %q", w.Body.String())
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
)

type fakeCountryResolver struct {
	country string
	err     error
}

func (f *fakeCountryResolver) GetLocationByIP(ip string) (string, error) {
	return f.country, f.err
}

func TestEventQueue_EnqueueClickEvent(t *testing.T) {
	kv := newFakeKV()
	svc := &EventQueueService{kv: kv}

	err := svc.EnqueueClickEvent(context.Background(), dto.QueuedEvent{SubjectID: "link-1"})
	if err != nil {
		t.Fatalf("EnqueueClickEvent: %v", err)
	}

	queue := kv.lists[eventQueueKey]
	if len(queue) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(queue))
	}

	var event dto.QueuedEvent
	if err := json.Unmarshal([]byte(queue[0]), &event); err != nil {
		t.Fatalf("queued payload is not valid JSON: %v", err)
	}
	if event.Type != shared.EventTypeClick || event.SubjectID != "link-1" {
		t.Fatalf("unexpected queued event: %+v", event)
	}

	if len(kv.streams[eventStreamKey]) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(kv.streams[eventStreamKey]))
	}
}

func TestEventQueue_StreamFailureIsSwallowed(t *testing.T) {
	kv := newFakeKV()
	kv.xaddErr = errors.New("stream down")
	svc := &EventQueueService{kv: kv}

	err := svc.EnqueueProfileViewEvent(context.Background(), dto.QueuedEvent{SubjectID: "user-1"})
	if err != nil {
		t.Fatalf("expected stream failure to be swallowed, got %v", err)
	}

	if len(kv.lists[eventQueueKey]) != 1 {
		t.Fatalf("expected the queue push to survive, got %d entries", len(kv.lists[eventQueueKey]))
	}
}

func TestEventQueue_QueueFailureSurfaces(t *testing.T) {
	kv := newFakeKV()
	kv.lpushErr = errors.New("queue down")
	svc := &EventQueueService{kv: kv}

	err := svc.EnqueueClickEvent(context.Background(), dto.QueuedEvent{SubjectID: "link-1"})
	if err == nil {
		t.Fatal("expected queue failure to surface")
	}
	if len(kv.streams[eventStreamKey]) != 0 {
		t.Fatal("expected no stream entry when the queue push fails")
	}
}

func TestEventQueue_ClickCounterSeeding(t *testing.T) {
	kv := newFakeKV()
	svc := &EventQueueService{kv: kv}
	ctx := context.Background()

	if err := svc.EnsureLinkClickCounter(ctx, "link-1", 10); err != nil {
		t.Fatalf("EnsureLinkClickCounter: %v", err)
	}
	// A second seed with a different baseline must not clobber the counter.
	if err := svc.EnsureLinkClickCounter(ctx, "link-1", 99); err != nil {
		t.Fatalf("EnsureLinkClickCounter: %v", err)
	}

	count, err := svc.GetLinkClickCounter(ctx, "link-1")
	if err != nil {
		t.Fatalf("GetLinkClickCounter: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected counter to keep its first seed, got %d", count)
	}

	next, err := svc.IncrementLinkClickCounter(ctx, "link-1")
	if err != nil {
		t.Fatalf("IncrementLinkClickCounter: %v", err)
	}
	if next != 11 {
		t.Fatalf("expected 11 after increment, got %d", next)
	}

	if err := svc.ClearLinkClickCounter(ctx, "link-1"); err != nil {
		t.Fatalf("ClearLinkClickCounter: %v", err)
	}
	count, err = svc.GetLinkClickCounter(ctx, "link-1")
	if err != nil {
		t.Fatalf("GetLinkClickCounter: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 after clear, got %d", count)
	}
}

func TestEventQueue_NewEvent(t *testing.T) {
	svc := &EventQueueService{country: &fakeCountryResolver{country: "Germany"}}

	event := svc.NewEvent(shared.EventTypeClick, "link-1", "1.2.3.4",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "https://ref.example.com")
	if event.Country != "Germany" {
		t.Fatalf("expected resolved country, got %q", event.Country)
	}
	if event.Device != "mobile" {
		t.Fatalf("expected mobile device, got %q", event.Device)
	}
	if event.CreatedAt.IsZero() {
		t.Fatal("expected a timestamp")
	}
}

func TestEventQueue_NewEventCountryFailureIsUnknown(t *testing.T) {
	svc := &EventQueueService{country: &fakeCountryResolver{err: errors.New("lookup failed")}}

	event := svc.NewEvent(shared.EventTypeClick, "link-1", "1.2.3.4", "", "")
	if event.Country != "Unknown" {
		t.Fatalf("expected Unknown on resolver failure, got %q", event.Country)
	}
}

func TestDeviceFromUserAgent(t *testing.T) {
	cases := []struct {
		userAgent string
		want      string
	}{
		{"Mozilla/5.0 (iPad; CPU OS 16_0)", "tablet"},
		{"Mozilla/5.0 (Linux; Android 14; Mobile)", "mobile"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "desktop"},
		{"", "unknown"},
	}

	for _, tc := range cases {
		if got := deviceFromUserAgent(tc.userAgent); got != tc.want {
			t.Errorf("deviceFromUserAgent(%q) = %q, want %q", tc.userAgent, got, tc.want)
		}
	}
}

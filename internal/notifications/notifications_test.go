package notifications

import (
	"strings"
	"testing"
)

func TestRenderEmailPerType(t *testing.T) {
	confirmed := NewBookingConfirmed("ada@example.com", "Ada", "The Matrix", "Mon, 07 Sep 2026 18:00:00 UTC", "A1, A2", "25.00")
	subject, body, err := RenderEmail(confirmed)
	if err != nil {
		t.Fatalf("render booking_confirmed: %v", err)
	}
	if !strings.Contains(subject, "The Matrix") {
		t.Errorf("subject %q missing movie title", subject)
	}
	for _, want := range []string{"Ada", "The Matrix", "A1, A2", "25.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	added := NewShowAdded("603", "The Matrix")
	if _, body, err = RenderEmail(added); err != nil {
		t.Fatalf("render show_added: %v", err)
	}
	if !strings.Contains(body, "The Matrix") {
		t.Error("show_added body missing movie title")
	}

	reminder := NewShowReminder("ada@example.com", "Ada", "The Matrix", "Mon, 07 Sep 2026 18:00:00 UTC")
	if _, body, err = RenderEmail(reminder); err != nil {
		t.Fatalf("render show_reminder: %v", err)
	}
	if !strings.Contains(body, "18:00:00") {
		t.Error("reminder body missing show time")
	}

	if _, _, err := RenderEmail(&Notification{Type: Type("unknown")}); err == nil {
		t.Error("unknown type rendered without error")
	}
}

func TestNotificationWireRoundTrip(t *testing.T) {
	original := NewBookingConfirmed("ada@example.com", "Ada", "The Matrix", "soon", "A1", "12.50")

	raw, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	restored, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if restored.ID != original.ID || restored.Type != original.Type {
		t.Errorf("restored = %+v", restored)
	}
	if restored.Data["movie_title"] != "The Matrix" {
		t.Errorf("data = %v", restored.Data)
	}
}

func TestPartitionKeyRouting(t *testing.T) {
	direct := NewBookingConfirmed("ada@example.com", "Ada", "m", "t", "s", "a")
	if direct.GetPartitionKey() != "ada@example.com" {
		t.Errorf("direct key = %q, want recipient email", direct.GetPartitionKey())
	}

	broadcast := NewShowAdded("603", "The Matrix")
	if broadcast.GetPartitionKey() != "603" {
		t.Errorf("broadcast key = %q, want movie id", broadcast.GetPartitionKey())
	}

	bare := &Notification{ID: direct.ID}
	if bare.GetPartitionKey() != direct.ID.String() {
		t.Errorf("fallback key = %q, want notification id", bare.GetPartitionKey())
	}
}

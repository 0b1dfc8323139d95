package notify

import (
	"testing"
	"time"

	"finditweb/internal/models"
)

func TestActiveKeepsInsertionOrder(t *testing.T) {
	q := NewQueue()
	q.Post("first", models.NoticeInfo, time.Minute)
	q.Post("second", models.NoticeSuccess, time.Minute)
	q.Post("third", models.NoticeError, time.Minute)

	got := q.Active(time.Now().UTC())
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Message != want {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Message, want)
		}
	}
}

func TestActiveSweepsExpiredEntries(t *testing.T) {
	q := NewQueue()
	q.Post("short-lived", models.NoticeInfo, 100*time.Millisecond)
	q.Post("long-lived", models.NoticeInfo, time.Minute)

	now := time.Now().UTC()
	if got := q.Active(now); len(got) != 2 {
		t.Fatalf("expected both entries before the deadline, got %d", len(got))
	}

	later := now.Add(150 * time.Millisecond)
	got := q.Active(later)
	if len(got) != 1 || got[0].Message != "long-lived" {
		t.Fatalf("expected only the long-lived entry after 150ms, got %v", got)
	}
}

func TestPostDefaultsTTL(t *testing.T) {
	q := NewQueue()
	q.Post("defaulted", models.NoticeInfo, 0)

	// Alive just before the default deadline, gone just after.
	if got := q.Active(time.Now().UTC().Add(DefaultTTL - time.Second)); len(got) != 1 {
		t.Fatalf("expected entry to survive inside the default ttl, got %d", len(got))
	}
	if got := q.Active(time.Now().UTC().Add(DefaultTTL + time.Second)); len(got) != 0 {
		t.Fatalf("expected entry to expire after the default ttl, got %d", len(got))
	}
}

func TestDismissIsIdempotent(t *testing.T) {
	q := NewQueue()
	keep := q.Post("keep", models.NoticeInfo, time.Minute)
	drop := q.Post("drop", models.NoticeError, time.Minute)

	q.Dismiss(drop)
	q.Dismiss(drop)
	q.Dismiss("no-such-id")

	got := q.Active(time.Now().UTC())
	if len(got) != 1 || got[0].ID != keep {
		t.Fatalf("expected only the kept entry, got %v", got)
	}
}

package storage

import (
	"fmt"
	"testing"
	"time"
)

// bump makes successive upserts land on distinct millisecond timestamps so
// recency ordering is deterministic.
func bump() {
	time.Sleep(2 * time.Millisecond)
}

func TestUpsertRecentHostDeduplicatesByAddress(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertRecentHost("ws://10.0.0.5:3030/ws", "Desk PC"); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	bump()
	if err := store.UpsertRecentHost("ws://10.0.0.5:3030/ws", "Renamed PC"); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	hosts, err := store.ListRecentHosts()
	if err != nil {
		t.Fatalf("ListRecentHosts failed: %v", err)
	}
	if len(hosts) != 1 {
		t.Fatalf("expected 1 host after duplicate upsert, got %d", len(hosts))
	}
	if hosts[0].Name != "Renamed PC" {
		t.Fatalf("expected upsert to refresh name, got %q", hosts[0].Name)
	}
}

func TestRecentHostsCappedMostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < RecentHostLimit+3; i++ {
		address := fmt.Sprintf("ws://10.0.0.%d:3030/ws", i)
		if err := store.UpsertRecentHost(address, fmt.Sprintf("host-%d", i)); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
		bump()
	}

	hosts, err := store.ListRecentHosts()
	if err != nil {
		t.Fatalf("ListRecentHosts failed: %v", err)
	}
	if len(hosts) != RecentHostLimit {
		t.Fatalf("expected list capped at %d, got %d", RecentHostLimit, len(hosts))
	}
	if hosts[0].Name != fmt.Sprintf("host-%d", RecentHostLimit+2) {
		t.Fatalf("expected most recent host first, got %q", hosts[0].Name)
	}
	for i := 1; i < len(hosts); i++ {
		if hosts[i-1].LastConnected < hosts[i].LastConnected {
			t.Fatalf("expected recency-descending order at index %d", i)
		}
	}
}

func TestRecentHostBumpReordersExistingEntry(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertRecentHost("ws://10.0.0.1:3030/ws", "first"); err != nil {
		t.Fatalf("upsert first failed: %v", err)
	}
	bump()
	if err := store.UpsertRecentHost("ws://10.0.0.2:3030/ws", "second"); err != nil {
		t.Fatalf("upsert second failed: %v", err)
	}
	bump()
	if err := store.UpsertRecentHost("ws://10.0.0.1:3030/ws", "first"); err != nil {
		t.Fatalf("re-upsert first failed: %v", err)
	}

	hosts, err := store.ListRecentHosts()
	if err != nil {
		t.Fatalf("ListRecentHosts failed: %v", err)
	}
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if hosts[0].Name != "first" {
		t.Fatalf("expected re-upserted host first, got %q", hosts[0].Name)
	}
}

func TestDeleteRecentHost(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertRecentHost("ws://10.0.0.1:3030/ws", "doomed"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.DeleteRecentHost("ws://10.0.0.1:3030/ws"); err != nil {
		t.Fatalf("DeleteRecentHost failed: %v", err)
	}

	hosts, err := store.ListRecentHosts()
	if err != nil {
		t.Fatalf("ListRecentHosts failed: %v", err)
	}
	if len(hosts) != 0 {
		t.Fatalf("expected empty list after delete, got %d entries", len(hosts))
	}
}

package session

import (
	"bytes"
	"testing"
	"time"
)

func testSecret(fill byte) []byte {
	b := make([]byte, SecretSize)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()
	r.Put("mbx1a", testSecret(1))

	got, ok := r.Get("mbx1a")
	if !ok {
		t.Fatal("expected live entry")
	}
	if !bytes.Equal(got, testSecret(1)) {
		t.Fatal("unexpected secret")
	}
	if !r.Has("mbx1a") {
		t.Fatal("Has must report live entry")
	}
	if !r.Remove("mbx1a") {
		t.Fatal("remove must report success")
	}
	if _, ok := r.Get("mbx1a"); ok {
		t.Fatal("entry must be gone after remove")
	}
	if r.Remove("mbx1a") {
		t.Fatal("second remove must report absence")
	}
}

func TestRegistryLastPutWins(t *testing.T) {
	r := NewRegistry()
	old := testSecret(1)
	r.Put("mbx1a", old)
	r.Put("mbx1a", testSecret(2))

	for i, b := range old {
		if b != 0 {
			t.Fatalf("replaced secret byte %d not zeroed", i)
		}
	}
	got, _ := r.Get("mbx1a")
	if !bytes.Equal(got, testSecret(2)) {
		t.Fatal("most recent put must win")
	}
	if r.Len() != 1 {
		t.Fatalf("expected one entry, got %d", r.Len())
	}
}

func TestRegistryRemoveZeroesSecret(t *testing.T) {
	r := NewRegistry()
	secret := testSecret(7)
	r.Put("mbx1a", secret)
	r.Remove("mbx1a")
	for i, b := range secret {
		if b != 0 {
			t.Fatalf("stored secret byte %d not zeroed on remove", i)
		}
	}
}

func TestRegistryRemoveAll(t *testing.T) {
	r := NewRegistry()
	a := testSecret(1)
	b := testSecret(2)
	r.Put("mbx1a", a)
	r.Put("mbx1b", b)
	r.RemoveAll()
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d entries", r.Len())
	}
	for _, s := range [][]byte{a, b} {
		for i, v := range s {
			if v != 0 {
				t.Fatalf("secret byte %d not zeroed on remove-all", i)
			}
		}
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Put("mbx1a", testSecret(3))
	got, _ := r.Get("mbx1a")
	got[0] = 0xFF
	again, _ := r.Get("mbx1a")
	if again[0] != 3 {
		t.Fatal("caller mutation must not reach stored secret")
	}
}

func TestRegistryActiveIDsSortedAndStampsClock(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	r := newRegistryWithClock(func() time.Time { return fixed })
	r.Put("mbx1b", testSecret(1))
	r.Put("mbx1a", testSecret(2))

	ids := r.ActiveIDs()
	if len(ids) != 2 || ids[0] != "mbx1a" || ids[1] != "mbx1b" {
		t.Fatalf("unexpected active ids: %v", ids)
	}
	createdAt, ok := r.CreatedAt("mbx1a")
	if !ok || !createdAt.Equal(fixed) {
		t.Fatalf("unexpected created_at: %v", createdAt)
	}
}

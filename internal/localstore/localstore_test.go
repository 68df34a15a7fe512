package localstore

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGet(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.Get("stops"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v, err=%v, want absent", ok, err)
	}

	if err := s.Set("stops", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("stops")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v, err=%v", ok, err)
	}
	if got != `[{"id":"a"}]` {
		t.Fatalf("Get = %q, want stored value", got)
	}

	// Set replaces in full.
	if err := s.Set("stops", "[]"); err != nil {
		t.Fatalf("Set(overwrite): %v", err)
	}
	if got, _, _ := s.Get("stops"); got != "[]" {
		t.Fatalf("Get after overwrite = %q, want []", got)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("insight:abc", "cached"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete("insight:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("insight:abc"); ok {
		t.Fatal("key survived Delete")
	}
	if err := s.Delete("insight:abc"); err != nil {
		t.Fatalf("Delete(missing): %v", err)
	}
}

func TestKeysPrefix(t *testing.T) {
	s := openTestStore(t)

	for _, k := range []string{"stops", "insight:b", "insight:a", "insight:c"} {
		if err := s.Set(k, "x"); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	keys, err := s.Keys("insight:")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"insight:a", "insight:b", "insight:c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys = %v, want sorted %v", keys, want)
		}
	}

	all, err := s.Keys("")
	if err != nil {
		t.Fatalf("Keys(all): %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Keys(all) returned %d keys, want 4", len(all))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set("stops", "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, ok, err := s2.Get("stops")
	if err != nil || !ok || got != "persisted" {
		t.Fatalf("Get after reopen = %q, ok=%v, err=%v", got, ok, err)
	}
}

func TestCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// BenchmarkSet benchmarks the synchronous collection write on the
// mutation path.
func BenchmarkSet(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.db")
	s, err := Open(path)
	if err != nil {
		b.Fatalf("Open: %v", err)
	}
	defer s.Close()

	value := strings.Repeat(`{"id":"b3f1","title":"Stop","status":"planned"}`, 50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Set("stops", value); err != nil {
			b.Fatalf("Set: %v", err)
		}
	}
}

// BenchmarkGet benchmarks the collection read on the load path.
func BenchmarkGet(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.db")
	s, err := Open(path)
	if err != nil {
		b.Fatalf("Open: %v", err)
	}
	defer s.Close()

	value := strings.Repeat(`{"id":"b3f1","title":"Stop","status":"planned"}`, 50)
	if err := s.Set("stops", value); err != nil {
		b.Fatalf("Set: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := s.Get("stops"); err != nil {
			b.Fatalf("Get: %v", err)
		}
	}
}

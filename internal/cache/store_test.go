// ABOUTME: Conformance tests run against every local Store backend.
// ABOUTME: Charm is excluded because it needs a linked account.
package cache

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func localStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(SQLitePath(dir))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	badger, err := OpenBadger(BadgerPath(dir))
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	memory, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}

	stores := map[string]Store{
		BackendSQLite: sqlite,
		BackendBadger: badger,
		BackendMemory: memory,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreConformance(t *testing.T) {
	for name, store := range localStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}

			if err := store.Set("token", []byte("abc")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := store.Get("token")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != "abc" {
				t.Errorf("Get = %q, want abc", got)
			}

			if err := store.Set("token", []byte("xyz")); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, _ = store.Get("token")
			if string(got) != "xyz" {
				t.Errorf("after overwrite Get = %q, want xyz", got)
			}

			for _, k := range []string{"weeklyVolume_1_4", "weeklyVolume_1_8", "weeklyVolume_2_4", "workouts_1"} {
				if err := store.Set(k, []byte("{}")); err != nil {
					t.Fatalf("Set(%s) failed: %v", k, err)
				}
			}
			keys, err := store.Keys("weeklyVolume_1_")
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if want := []string{"weeklyVolume_1_4", "weeklyVolume_1_8"}; !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys = %v, want %v", keys, want)
			}

			all, _ := store.Keys("")
			if len(all) != 5 {
				t.Errorf("Keys(\"\") = %v, want 5 keys", all)
			}

			if err := store.Delete("token"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := store.Get("token"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete error = %v, want ErrNotFound", err)
			}
			if err := store.Delete("token"); err != nil {
				t.Errorf("deleting a missing key should not fail: %v", err)
			}

			large := bytes.Repeat([]byte("x"), 256<<10)
			if err := store.Set("workouts_1", large); err != nil {
				t.Fatalf("Set(%d bytes) failed: %v", len(large), err)
			}
			got, err = store.Get("workouts_1")
			if err != nil {
				t.Fatalf("Get large value failed: %v", err)
			}
			if !bytes.Equal(got, large) {
				t.Errorf("large value came back with %d bytes, want %d", len(got), len(large))
			}
		})
	}
}

func TestMemoryStoreValueLimit(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Set("max", make([]byte, MaxMemoryValue)); err != nil {
		t.Errorf("Set at the limit failed: %v", err)
	}
	if err := store.Set("over", make([]byte, MaxMemoryValue+1)); err == nil {
		t.Error("expected error above the limit")
	}
	if _, err := store.Get("over"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected value should not be stored, Get error = %v", err)
	}
}

func TestSQLiteKeysTreatsWildcardsLiterally(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	_ = store.Set("a_b", []byte("1"))
	_ = store.Set("axb", []byte("2"))
	_ = store.Set("A_B", []byte("3"))

	keys, err := store.Keys("a_")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"a_b"}) {
		t.Errorf("Keys(a_) = %v, want [a_b]", keys)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := SQLitePath(t.TempDir())

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := store.Set("userData", []byte(`{"id":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = store.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get("userData")
	if err != nil || string(got) != `{"id":1}` {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
	if reopened.Path() != path {
		t.Errorf("Path = %s, want %s", reopened.Path(), path)
	}
}

func TestValidateBackend(t *testing.T) {
	for _, b := range Backends {
		if err := ValidateBackend(b); err != nil {
			t.Errorf("ValidateBackend(%s) failed: %v", b, err)
		}
	}
	if err := ValidateBackend("redis"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

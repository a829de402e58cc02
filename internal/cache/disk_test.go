package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStore_BasicOperations(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", DefaultCompressionLevel)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	defer store.Close()

	value := []byte(`{"color":"red"}`)
	if err := store.Set("k1", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !store.Contains("k1") {
		t.Error("Contains returned false for stored key")
	}

	got, ok := store.Get("k1")
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Value mismatch: got %s, want %s", got, value)
	}

	if store.Contains("missing") {
		t.Error("Contains returned true for missing key")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Get returned a value for a missing key")
	}

	if filepath.Base(store.Path()) != DefaultNamespace {
		t.Errorf("store path %q is not scoped to the default namespace", store.Path())
	}
}

func TestDiskStore_Compression(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "ns", DefaultCompressionLevel)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	defer store.Close()

	value := []byte(`{"fontFamily":"` + strings.Repeat("Helvetica ", 200) + `"}`)
	if err := store.Set("big", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if store.Size() >= int64(len(value)) {
		t.Errorf("expected compressed size below %d, got %d", len(value), store.Size())
	}

	got, ok := store.Get("big")
	if !ok {
		t.Fatal("Get failed for compressed entry")
	}
	if !bytes.Equal(got, value) {
		t.Error("decompressed value mismatch")
	}
}

func TestDiskStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewDiskStore(dir, "ns", DefaultCompressionLevel)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	if err := store.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskStore(dir, "ns", 0)
	if err != nil {
		t.Fatalf("Failed to reopen disk store: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("k")
	if !ok || string(got) != `{"a":1}` {
		t.Errorf("reopened store returned %q, %v", got, ok)
	}
}

func TestDiskStore_SurvivesMissingIndex(t *testing.T) {
	dir := t.TempDir()

	// Never closed: the index is not written
	store, err := NewDiskStore(dir, "ns", 0)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	if err := store.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	other, err := NewDiskStore(dir, "ns", 0)
	if err != nil {
		t.Fatalf("Failed to open second store: %v", err)
	}
	defer other.Close()

	if !other.Contains("k") {
		t.Error("entry written without an index should still be found")
	}
}

func TestDiskStore_NamespacesAreIsolated(t *testing.T) {
	dir := t.TempDir()

	a, err := NewDiskStore(dir, "a", 0)
	if err != nil {
		t.Fatalf("Failed to create store a: %v", err)
	}
	defer a.Close()
	b, err := NewDiskStore(dir, "b", 0)
	if err != nil {
		t.Fatalf("Failed to create store b: %v", err)
	}
	defer b.Close()

	if err := a.Set("k", []byte(`{}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if b.Contains("k") {
		t.Error("namespace b sees an entry from namespace a")
	}

	if err := b.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if !a.Contains("k") {
		t.Error("clearing namespace b removed an entry from namespace a")
	}
}

func TestDiskStore_ClearAll(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", 0)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	defer store.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(k, []byte(`{}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	for _, k := range []string{"a", "b", "c"} {
		if store.Contains(k) {
			t.Errorf("key %s still present after ClearAll", k)
		}
	}
	if store.Len() != 0 || store.Size() != 0 {
		t.Errorf("store not empty: len=%d size=%d", store.Len(), store.Size())
	}
}

func TestDiskStore_CorruptEntryIsMiss(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", DefaultCompressionLevel)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	defer store.Close()

	if err := store.Set("k", []byte(`{}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A truncated zstd frame
	path := store.generateFilePath("k")
	if err := os.WriteFile(path, append([]byte{}, zstdMagic...), 0o644); err != nil {
		t.Fatalf("failed to corrupt entry: %v", err)
	}

	if _, ok := store.Get("k"); ok {
		t.Error("corrupt entry should be reported as a miss")
	}
	if store.Contains("k") {
		t.Error("corrupt entry should be dropped")
	}
}

func TestDiskStore_Closed(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", 0)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := store.Set("k", []byte(`{}`)); err != ErrStoreClosed {
		t.Errorf("Set after close = %v, want ErrStoreClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestNewDiskStore_RequiresDir(t *testing.T) {
	if _, err := NewDiskStore("", "", 0); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

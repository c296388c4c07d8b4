package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opal-lang/stratacore/incremental"
	"github.com/opal-lang/stratacore/lang"
)

type fakeWatcher struct {
	events chan fsnotify.Event
	errors chan error
}

func (f *fakeWatcher) Events() <-chan fsnotify.Event { return f.events }
func (f *fakeWatcher) Errors() <-chan error          { return f.errors }
func (f *fakeWatcher) Close() error                  { return nil }

func TestHandleWriteAppliesMinimalEdit(t *testing.T) {
	coordinator, err := incremental.New(lang.Default, "json", []byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("incremental.New: %v", err)
	}
	generation := coordinator.Facts().Generation()

	reads := 0
	updated := []byte(`{"a": 100}`)
	s := newSource("doc.json", coordinator, &fakeWatcher{}, func(string) ([]byte, error) {
		reads++
		return updated, nil
	})

	s.handleWrite()

	if reads != 1 {
		t.Fatalf("readFile called %d times, want 1", reads)
	}
	if string(coordinator.Source()) != string(updated) {
		t.Fatalf("coordinator.Source() = %q, want %q", coordinator.Source(), updated)
	}
	if coordinator.Facts().Generation() <= generation {
		t.Fatalf("expected generation to advance past %d, got %d", generation, coordinator.Facts().Generation())
	}
}

func TestHandleWriteIgnoresNoopWrite(t *testing.T) {
	coordinator, err := incremental.New(lang.Default, "json", []byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("incremental.New: %v", err)
	}

	data := []byte(`{"a": 1}`)
	s := newSource("doc.json", coordinator, &fakeWatcher{}, func(string) ([]byte, error) {
		return data, nil
	})

	s.handleWrite()

	if string(coordinator.Source()) != string(data) {
		t.Fatalf("coordinator.Source() changed on a no-op write: %q", coordinator.Source())
	}
}

func TestNewSourceAppliesRealFilesystemWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	initial := []byte(`{"a": 1}`)
	if err := os.WriteFile(path, initial, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	coordinator, err := incremental.New(lang.Default, "json", initial)
	if err != nil {
		t.Fatalf("incremental.New: %v", err)
	}

	s, err := NewSource(path, coordinator)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	defer s.Close()

	updated := []byte(`{"a": 2}`)
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if string(coordinator.Source()) == string(updated) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("coordinator.Source() = %q after timeout, want %q", coordinator.Source(), updated)
}

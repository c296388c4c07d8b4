// Package watch is the "external collaborator" spec §6 leaves to the host:
// it watches a single source file with fsnotify and turns its write events
// into incremental.Edit values applied to a Coordinator, without taking on
// directory traversal or a CLI layer (both explicit non-goals). fsnotify is
// a direct dependency of the teacher's runtime go.mod; no filtered-in
// teacher file imports it directly, so it is wired here rather than
// dropped per DESIGN.md's dependency ledger.
package watch

import (
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/opal-lang/stratacore/incremental"
)

// watcher abstracts the subset of *fsnotify.Watcher Source needs, so tests
// can inject a fake event source without touching the filesystem.
type watcher interface {
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

type fsWatcher struct{ w *fsnotify.Watcher }

func (f fsWatcher) Events() <-chan fsnotify.Event { return f.w.Events }
func (f fsWatcher) Errors() <-chan error          { return f.w.Errors }
func (f fsWatcher) Close() error                  { return f.w.Close() }

// Source watches path for writes and applies each one to coordinator as a
// single incremental.Edit, diffed from the buffer coordinator was last
// known to hold (see NextEdit). coordinator must already reflect path's
// contents at the time NewSource is called.
type Source struct {
	path        string
	coordinator *incremental.Coordinator
	w           watcher
	readFile    func(string) ([]byte, error)
	last        []byte

	// Errs receives errors reported by the underlying watcher. It is
	// buffered (capacity 1); a caller not reading it simply misses
	// transient errors rather than blocking the watch loop.
	Errs chan error

	done chan struct{}
}

// NewSource starts watching path on the OS's filesystem notification
// facility, applying every detected write to coordinator.
func NewSource(path string, coordinator *incremental.Coordinator) (*Source, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	s := newSource(path, coordinator, fsWatcher{fw}, os.ReadFile)
	go s.run()
	return s, nil
}

func newSource(path string, coordinator *incremental.Coordinator, w watcher, readFile func(string) ([]byte, error)) *Source {
	s := &Source{
		path:        path,
		coordinator: coordinator,
		w:           w,
		readFile:    readFile,
		last:        append([]byte(nil), coordinator.Source()...),
		Errs:        make(chan error, 1),
		done:        make(chan struct{}),
	}
	return s
}

func (s *Source) run() {
	for {
		select {
		case ev, ok := <-s.w.Events():
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.handleWrite()
			}
		case err, ok := <-s.w.Errors():
			if !ok {
				return
			}
			s.reportErr(err)
		case <-s.done:
			return
		}
	}
}

func (s *Source) handleWrite() {
	data, err := s.readFile(s.path)
	if err != nil {
		s.reportErr(err)
		return
	}
	edit, changed := NextEdit(s.last, data)
	if !changed {
		return
	}
	s.last = data
	s.coordinator.Apply([]incremental.Edit{edit})
}

func (s *Source) reportErr(err error) {
	select {
	case s.Errs <- err:
	default:
	}
}

// Close stops the watch loop and releases the underlying OS resources.
func (s *Source) Close() error {
	close(s.done)
	return s.w.Close()
}

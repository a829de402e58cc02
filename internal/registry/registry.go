// Package registry provides an in-process style registrar that issues
// numeric handles for normalized styles, standing in for a host UI
// framework's style sheet.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgnsrekt/stylecache/internal/style"
)

// ErrUnknownHandle is returned by Lookup for ids the sheet never issued.
var ErrUnknownHandle = errors.New("unknown style handle")

// Handle is a registered style. It is immutable once issued.
type Handle struct {
	id    int64
	style style.Normalized
}

// HandleID returns the numeric id of the handle.
func (h *Handle) HandleID() int64 { return h.id }

// Style returns a copy of the registered style.
func (h *Handle) Style() style.Normalized {
	out := make(style.Normalized, len(h.style))
	for k, v := range h.style {
		out[k] = v
	}
	return out
}

func (h *Handle) String() string { return fmt.Sprintf("style#%d", h.id) }

// Sheet registers styles and hands out sequential ids starting at 1. Every
// call to Register issues a new handle, so callers are expected to
// deduplicate.
type Sheet struct {
	mu      sync.RWMutex
	nextID  int64
	handles map[int64]*Handle
}

// NewSheet creates an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{handles: make(map[int64]*Handle)}
}

// Register stores a copy of n and returns its handle.
func (s *Sheet) Register(n style.Normalized) (style.Handle, error) {
	if n == nil {
		return nil, errors.New("cannot register a nil style")
	}

	cp := make(style.Normalized, len(n))
	for k, v := range n {
		cp[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h := &Handle{id: s.nextID, style: cp}
	s.handles[h.id] = h
	return h, nil
}

// Lookup returns the handle issued under id.
func (s *Sheet) Lookup(id int64) (*Handle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.handles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, id)
	}
	return h, nil
}

// Count returns the number of registrations performed.
func (s *Sheet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.handles)
}

// Reset forgets every registration.
func (s *Sheet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handles = make(map[int64]*Handle)
	s.nextID = 0
}

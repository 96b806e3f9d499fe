// Package drafts holds uploaded images between the suggest and publish steps.
// Drafts live only in process memory.
package drafts

import (
	"sync"
	"time"

	"github.com/waajacu/minerals/internal/metrics"
	"github.com/waajacu/minerals/internal/token"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
)

// NotFoundMessage is shown when a publish references a missing draft.
const NotFoundMessage = "draft session not found; run AI suggestion again"

// Draft is a pending upload.
type Draft struct {
	ID        string
	Image     []byte
	Ext       string
	CreatedAt time.Time

	epoch uint64
}

// Store is a mutex-guarded map of drafts. No I/O happens under the lock.
type Store struct {
	mu     sync.Mutex
	drafts map[string]Draft
	// epoch advances on ClearAll so Restore cannot resurrect cleared drafts.
	epoch uint64
}

// New creates an empty draft store.
func New() *Store {
	return &Store{drafts: make(map[string]Draft)}
}

// Put stores an image and returns its new draft id.
func (s *Store) Put(image []byte, ext string) (string, error) {
	id, err := token.Hex(constants.DraftIDBytes)
	if err != nil {
		return "", errors.NewInternalError("draft", "generate id", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.drafts[id]; taken {
		return "", errors.NewInternalError("draft", "random id collision", nil)
	}
	s.drafts[id] = Draft{ID: id, Image: image, Ext: ext, CreatedAt: time.Now()}
	metrics.DraftsPending.Set(float64(len(s.drafts)))
	return id, nil
}

// Take removes and returns a draft. A second Take of the same id fails.
func (s *Store) Take(id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return Draft{}, &errors.NotFoundError{Resource: "draft", ID: id, Message: NotFoundMessage}
	}
	delete(s.drafts, id)
	d.epoch = s.epoch
	metrics.DraftsPending.Set(float64(len(s.drafts)))
	return d, nil
}

// Restore puts back a taken draft after a failed publish, unless the store
// was cleared after the draft was taken.
func (s *Store) Restore(d Draft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.epoch != s.epoch {
		return false
	}
	if _, exists := s.drafts[d.ID]; exists {
		return false
	}
	s.drafts[d.ID] = d
	metrics.DraftsPending.Set(float64(len(s.drafts)))
	return true
}

// Has reports whether a draft exists.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[id]
	return ok
}

// ClearAll drops every draft and returns how many were dropped.
func (s *Store) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.drafts)
	s.drafts = make(map[string]Draft)
	s.epoch++
	metrics.DraftsPending.Set(0)
	return n
}

// Len returns the number of pending drafts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Package session holds the editable state of a working session: the
// baseline fetched from the API, the raw text the user typed per line and
// the submission derived from both.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"gondolatrack/internal/quantity"
)

type Status string

const (
	Draft     Status = "draft"
	Saved     Status = "saved"
	Confirmed Status = "confirmed"
)

var (
	ErrUnknownKey = errors.New("item não encontrado na sessão")
	ErrFinalized  = errors.New("sessão já confirmada")
	ErrBusy       = errors.New("já existe uma operação em andamento")
)

// Key identifies a line across fetches.
type Key string

// KeyFor builds the key of a product line: the numeric id when present,
// the EAN otherwise.
func KeyFor(id *int64, ean string) Key {
	if id != nil {
		return Key("ID:" + strconv.FormatInt(*id, 10))
	}
	return Key("EAN:" + ean)
}

// Entry is one resolved line of a submission.
type Entry[T any] struct {
	Key      Key
	Item     T
	Quantity quantity.Quantity
}

// Line is the editing view of one item.
type Line[T any] struct {
	Key      Key
	Item     T
	Baseline quantity.Quantity
	Edit     *string
	Value    quantity.Quantity
	Edited   bool
}

// Session keeps items in fetch order. Lines sharing a key share one edit.
type Session[T any] struct {
	mu sync.Mutex

	id     string
	status Status

	keyOf      func(T) Key
	baselineOf func(T) quantity.Quantity

	items []T
	index map[Key]int
	edits map[Key]string

	rev      uint64
	savedRev uint64
	busy     bool
}

func New[T any](id string, status Status, keyOf func(T) Key, baselineOf func(T) quantity.Quantity) *Session[T] {
	if status == "" {
		status = Draft
	}
	return &Session[T]{
		id:         id,
		status:     status,
		keyOf:      keyOf,
		baselineOf: baselineOf,
		index:      map[Key]int{},
		edits:      map[Key]string{},
	}
}

func (s *Session[T]) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LoadBaseline replaces the items. Edits whose key is gone are dropped,
// the others survive. When pruning leaves no edit the submission equals the
// new baseline and the session is clean again.
func (s *Session[T]) LoadBaseline(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setItems(items)
	pruned := false
	for k := range s.edits {
		if _, ok := s.index[k]; !ok {
			delete(s.edits, k)
			pruned = true
		}
	}
	if pruned {
		s.rev++
		if len(s.edits) == 0 {
			s.savedRev = s.rev
		}
	}
}

// Reset replaces the items and discards every edit, leaving the session clean.
func (s *Session[T]) Reset(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setItems(items)
	s.edits = map[Key]string{}
	s.rev++
	s.savedRev = s.rev
}

func (s *Session[T]) setItems(items []T) {
	s.items = append([]T(nil), items...)
	s.index = make(map[Key]int, len(items))
	for i, it := range s.items {
		k := s.keyOf(it)
		if _, dup := s.index[k]; !dup {
			s.index[k] = i
		}
	}
}

// SetEdit stores the text exactly as typed. It is only parsed at submission.
func (s *Session[T]) SetEdit(key Key, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Confirmed {
		return ErrFinalized
	}
	if _, ok := s.index[key]; !ok {
		return ErrUnknownKey
	}
	s.edits[key] = raw
	s.rev++
	return nil
}

// Apply sets several edits at once; a nil value clears the line's edit.
// Nothing changes when a key is unknown.
func (s *Session[T]) Apply(edits map[Key]*string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Confirmed {
		return ErrFinalized
	}
	for k := range edits {
		if _, ok := s.index[k]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
	}
	for k, raw := range edits {
		if raw == nil {
			delete(s.edits, k)
		} else {
			s.edits[k] = *raw
		}
	}
	if len(edits) > 0 {
		s.rev++
	}
	return nil
}

func (s *Session[T]) Has(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[key]
	return ok
}

// ClearEdit reverts a line to its baseline.
func (s *Session[T]) ClearEdit(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edits[key]; ok {
		delete(s.edits, key)
		s.rev++
	}
}

func (s *Session[T]) Edit(key Key) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.edits[key]
	return raw, ok
}

func (s *Session[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

// ToSubmission resolves every item: a present edit is parsed and rounded,
// otherwise the baseline is used.
func (s *Session[T]) ToSubmission() []Entry[T] {
	entries, _ := s.Snapshot()
	return entries
}

// Snapshot is ToSubmission plus the revision it was taken at.
func (s *Session[T]) Snapshot() ([]Entry[T], uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry[T], 0, len(s.items))
	for _, it := range s.items {
		k := s.keyOf(it)
		q := s.baselineOf(it)
		if raw, ok := s.edits[k]; ok {
			q = quantity.Parse(raw)
		}
		out = append(out, Entry[T]{Key: k, Item: it, Quantity: q})
	}
	return out, s.rev
}

func (s *Session[T]) Lines() []Line[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line[T], 0, len(s.items))
	for _, it := range s.items {
		k := s.keyOf(it)
		l := Line[T]{Key: k, Item: it, Baseline: s.baselineOf(it)}
		l.Value = l.Baseline
		if raw, ok := s.edits[k]; ok {
			l.Edit = &raw
			l.Edited = true
			l.Value = quantity.Parse(raw)
		}
		out = append(out, l)
	}
	return out
}

// Revision grows with every edit.
func (s *Session[T]) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Dirty reports edits made after the last successful save.
func (s *Session[T]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev != s.savedRev
}

// MarkSaved records a successful save of the snapshot taken at rev. An edit
// made while the save was in flight keeps the session dirty.
func (s *Session[T]) MarkSaved(id string, rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		s.id = id
	}
	if s.status != Confirmed {
		s.status = Saved
	}
	if rev > s.savedRev {
		s.savedRev = rev
	}
}

func (s *Session[T]) MarkConfirmed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Confirmed
}

// Begin takes the busy flag for a mutating operation. The returned func
// releases it.
func (s *Session[T]) Begin() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true
	return func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}, nil
}

func (s *Session[T]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Package domain implements the simulated todo backend: an in-memory
// list-of-lists store with injected latency and failure sampling,
// write-through persistence and sequenced change broadcasts.
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/romshark/todosim/storage"
)

// TodoItem is identified only by its position within a list.
type TodoItem struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

type TodoList struct {
	Name  string     `json:"name"`
	Items []TodoItem `json:"items"`
}

// DefaultListName names the single list the store resets to when the
// persisted blob is absent or malformed.
const DefaultListName = "my first list"

// FaultPolicy decides whether a single call succeeds.
// It is sampled once per operation, before validation.
type FaultPolicy func() bool

// DelayPolicy returns the simulated latency for a single call.
type DelayPolicy func() time.Duration

// SuccessRate returns a policy that succeeds with probability rate in [0,1].
func SuccessRate(rate float64) FaultPolicy {
	return func() bool { return rand.Float64() < rate }
}

// AlwaysSucceed disables fault injection.
func AlwaysSucceed() bool { return true }

// UniformDelay returns a policy drawing uniformly from [0, max).
func UniformDelay(max time.Duration) DelayPolicy {
	return func() time.Duration {
		if max <= 0 {
			return 0
		}
		return time.Duration(rand.Int64N(int64(max)))
	}
}

// NoDelay disables the simulated latency.
func NoDelay() time.Duration { return 0 }

// Store holds the authoritative list sequence. Every successful mutation
// commits mutation, persistence and broadcast as one unit, in that order,
// before the call resolves. Listeners must not call back into the store
// synchronously.
type Store struct {
	lock  sync.Mutex
	lists []TodoList

	blob      storage.Blob
	publisher Publisher
	succeed   FaultPolicy
	delay     DelayPolicy

	searchIndex searchIndex
}

type Option func(*Store)

// WithFaultPolicy replaces the default policy (always succeed).
func WithFaultPolicy(p FaultPolicy) Option {
	return func(s *Store) { s.succeed = p }
}

// WithDelayPolicy replaces the default policy (uniform [0, 1s)).
func WithDelayPolicy(p DelayPolicy) Option {
	return func(s *Store) { s.delay = p }
}

// New loads the persisted state from blob and returns a ready store.
// An absent, malformed or non-array blob resets the state to a single
// empty default list; this is recovery, not an error. A nil publisher
// disables broadcasting.
func New(
	ctx context.Context, blob storage.Blob, publisher Publisher, opts ...Option,
) (*Store, error) {
	s := &Store{
		blob:        blob,
		publisher:   publisher,
		succeed:     AlwaysSucceed,
		delay:       UniformDelay(time.Second),
		searchIndex: newSearchIndex(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := blob.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.lists = defaultLists()
	case err != nil:
		return nil, fmt.Errorf("loading persisted state: %w", err)
	default:
		var lists []TodoList
		if err := json.Unmarshal(data, &lists); err != nil || lists == nil {
			slog.Warn("persisted state malformed, resetting",
				slog.Any("err", err))
			lists = defaultLists()
		}
		s.lists = lists
	}
	if err := s.persistLocked(ctx); err != nil {
		return nil, fmt.Errorf("persisting initial state: %w", err)
	}
	s.reindexLocked()
	return s, nil
}

func defaultLists() []TodoList {
	return []TodoList{{Name: DefaultListName, Items: []TodoItem{}}}
}

// ListAll returns a deep copy of the full list sequence.
func (s *Store) ListAll(_ context.Context) ([]TodoList, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return cloneLists(s.lists), nil
}

// CreateList appends a new empty list and returns its index.
func (s *Store) CreateList(ctx context.Context, name string) (int, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return 0, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	list := TodoList{Name: name, Items: []TodoItem{}}
	s.lists = append(s.lists, list)
	index := len(s.lists) - 1

	ev := EventCreateList{Name: list.Name, Items: slices.Clone(list.Items)}
	if err := s.commit(ctx, ev, func() {
		s.lists = s.lists[:index]
	}); err != nil {
		return 0, err
	}
	return index, nil
}

// DeleteList removes the list at index.
func (s *Store) DeleteList(ctx context.Context, index int) (bool, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return false, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if index < 0 || index >= len(s.lists) {
		return false, errOutOfBound()
	}
	removed := s.lists[index]
	s.lists = slices.Delete(s.lists, index, index+1)

	if err := s.commit(ctx, EventDeleteList{Index: index}, func() {
		s.lists = slices.Insert(s.lists, index, removed)
	}); err != nil {
		return false, err
	}
	return true, nil
}

// AddItem appends a copy of item to the list at listIndex.
func (s *Store) AddItem(
	ctx context.Context, listIndex int, item TodoItem,
) (bool, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return false, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if listIndex < 0 || listIndex >= len(s.lists) {
		return false, errOutOfBound()
	}
	l := &s.lists[listIndex]
	l.Items = append(l.Items, item)

	ev := EventAddItem{ListIndex: listIndex, Item: item}
	if err := s.commit(ctx, ev, func() {
		l.Items = l.Items[:len(l.Items)-1]
	}); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveItem removes the item at itemIndex from the list at listIndex.
func (s *Store) RemoveItem(
	ctx context.Context, listIndex, itemIndex int,
) (bool, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return false, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if listIndex < 0 || listIndex >= len(s.lists) {
		return false, errOutOfBound()
	}
	l := &s.lists[listIndex]
	if itemIndex < 0 || itemIndex >= len(l.Items) {
		return false, errOutOfBound()
	}
	orig := slices.Clone(l.Items)
	l.Items = slices.Delete(l.Items, itemIndex, itemIndex+1)

	ev := EventRemoveItem{ListIndex: listIndex, ItemIndex: itemIndex}
	if err := s.commit(ctx, ev, func() {
		l.Items = orig
	}); err != nil {
		return false, err
	}
	return true, nil
}

// MoveItem removes the item at sourceIndex and reinserts it at destIndex
// within the same list. destIndex is not range-checked: it is clamped by
// insertion semantics, so destIndex past the end appends.
func (s *Store) MoveItem(
	ctx context.Context, listIndex, sourceIndex, destIndex int,
) (bool, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return false, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if listIndex < 0 || listIndex >= len(s.lists) {
		return false, errOutOfBound()
	}
	l := &s.lists[listIndex]
	if sourceIndex < 0 || sourceIndex >= len(l.Items) {
		return false, errOutOfBound()
	}
	orig := slices.Clone(l.Items)
	moved := l.Items[sourceIndex]
	l.Items = slices.Delete(l.Items, sourceIndex, sourceIndex+1)
	dest := min(max(destIndex, 0), len(l.Items))
	l.Items = slices.Insert(l.Items, dest, moved)

	ev := EventMoveItem{
		ListIndex:   listIndex,
		SourceIndex: sourceIndex,
		DestIndex:   destIndex,
	}
	if err := s.commit(ctx, ev, func() {
		l.Items = orig
	}); err != nil {
		return false, err
	}
	return true, nil
}

// EditItem overwrites the item at itemIndex with a copy of newValue.
// Both indexes are validated before any mutation.
func (s *Store) EditItem(
	ctx context.Context, listIndex, itemIndex int, newValue TodoItem,
) (bool, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return false, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if listIndex < 0 || listIndex >= len(s.lists) {
		return false, errOutOfBound()
	}
	l := &s.lists[listIndex]
	if itemIndex < 0 || itemIndex >= len(l.Items) {
		return false, errOutOfBound()
	}
	orig := l.Items[itemIndex]
	l.Items[itemIndex] = newValue

	ev := EventEditItem{
		ListIndex: listIndex,
		ItemIndex: itemIndex,
		NewValue:  newValue,
	}
	if err := s.commit(ctx, ev, func() {
		l.Items[itemIndex] = orig
	}); err != nil {
		return false, err
	}
	return true, nil
}

// commit persists the current state and announces ev. On a persistence
// failure it runs rollback and reports a server error so the call has no
// observable effect. Must be called with the store lock held.
func (s *Store) commit(ctx context.Context, ev Event, rollback func()) error {
	if err := s.persistLocked(ctx); err != nil {
		rollback()
		slog.Error("persisting state", slog.Any("err", err))
		return errServer("persisting state failed")
	}
	s.reindexLocked()
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.lists)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := s.blob.Save(ctx, data); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

func (s *Store) stall() {
	if d := s.delay(); d > 0 {
		time.Sleep(d)
	}
}

func (s *Store) sample() error {
	if s.succeed() {
		return nil
	}
	return errServer("internal server error")
}

func cloneLists(lists []TodoList) []TodoList {
	out := make([]TodoList, len(lists))
	for i, l := range lists {
		out[i] = TodoList{Name: l.Name, Items: slices.Clone(l.Items)}
	}
	return out
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSignInRequired is returned by toggles attempted without a user.
	ErrSignInRequired = errors.New("sign in required")
	// ErrStateUnknown wraps a failure to read the current set, when it is
	// not known whether the toggle would have added or removed.
	ErrStateUnknown = errors.New("current membership unknown")
)

// MembershipStore persists one user-to-tool relation (bookmarks, upvotes).
// Add and Remove must be idempotent.
type MembershipStore interface {
	Add(ctx context.Context, userID, toolID string) error
	Remove(ctx context.Context, userID, toolID string) error
	ToolIDs(ctx context.Context, userID string) ([]string, error)
}

// Membership is the set of tool ids a user has marked in one relation.
// It is the local view of the store and only changes after the store
// confirmed the write.
type Membership struct {
	store MembershipStore
	ids   map[string]struct{}
}

func NewMembership(store MembershipStore, toolIDs ...string) *Membership {
	m := &Membership{store: store, ids: make(map[string]struct{}, len(toolIDs))}
	for _, id := range toolIDs {
		m.ids[id] = struct{}{}
	}
	return m
}

// LoadMembership reads the user's set. An anonymous user gets an empty set
// without touching the store.
func LoadMembership(ctx context.Context, store MembershipStore, userID string) (*Membership, error) {
	if userID == "" {
		return NewMembership(store), nil
	}
	ids, err := store.ToolIDs(ctx, userID)
	if err != nil {
		return NewMembership(store), err
	}
	return NewMembership(store, ids...), nil
}

func (m *Membership) Has(toolID string) bool {
	if m == nil {
		return false
	}
	_, ok := m.ids[toolID]
	return ok
}

func (m *Membership) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}

// Toggle flips toolID for userID and returns whether it is now a member.
// On a store error the set is left as it was and the old state is returned.
func (m *Membership) Toggle(ctx context.Context, userID, toolID string) (bool, error) {
	if userID == "" {
		return m.Has(toolID), ErrSignInRequired
	}

	if m.Has(toolID) {
		if err := m.store.Remove(ctx, userID, toolID); err != nil {
			return true, err
		}
		delete(m.ids, toolID)
		return false, nil
	}

	if err := m.store.Add(ctx, userID, toolID); err != nil {
		return false, err
	}
	m.ids[toolID] = struct{}{}
	return true, nil
}

// Toggler serialises toggles per (user, tool) so that double clicks cannot
// race each other into an add and a remove both reading the same state.
type Toggler struct {
	store MembershipStore
	locks KeyedMutex
}

func NewToggler(store MembershipStore) *Toggler {
	return &Toggler{store: store}
}

func (t *Toggler) Store() MembershipStore {
	return t.store
}

// Toggle reloads the user's set under the pair lock and flips toolID.
func (t *Toggler) Toggle(ctx context.Context, userID, toolID string) (bool, error) {
	if userID == "" {
		return false, ErrSignInRequired
	}

	unlock := t.locks.Lock(userID + "|" + toolID)
	defer unlock()

	m, err := LoadMembership(ctx, t.store, userID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStateUnknown, err)
	}
	return m.Toggle(ctx, userID, toolID)
}

// KeyedMutex hands out one mutex per key and forgets keys nobody holds.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

package recent

import (
	"context"
	"errors"
	"sync"
)

// MaxEntries caps each owner's list.
const MaxEntries = 8

// List applies the recent-selection policy on top of a Store: most recent
// first, no duplicates, at most MaxEntries ids.
type List struct {
	store Store
	mu    sync.Mutex // serializes read-modify-write of Touch
}

func NewList(store Store) *List { return &List{store: store} }

// IDs returns the owner's list, empty when nothing was stored.
func (l *List) IDs(ctx context.Context, owner string) ([]string, error) {
	ids, err := l.store.Get(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Touch moves id to the front of the owner's list and returns the new list.
func (l *List) Touch(ctx context.Context, owner, id string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, err := l.IDs(ctx, owner)
	if err != nil {
		return nil, err
	}
	next := push(cur, id)
	if err := l.store.Set(ctx, owner, next); err != nil {
		return nil, err
	}
	return next, nil
}

func push(ids []string, id string) []string {
	out := make([]string, 0, MaxEntries)
	out = append(out, id)
	for _, v := range ids {
		if len(out) == MaxEntries {
			break
		}
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

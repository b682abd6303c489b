// Package favorites keeps a user's favorite plant names in the key-value store.
package favorites

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/abelbrown/herbal/internal/store"
)

// KeyPrefix is prepended to the user name to form the storage key.
const KeyPrefix = "ayurFavorites_"

// Key returns the storage key holding user's favorites.
func Key(user string) string { return KeyPrefix + user }

// Registry is the favorites set for one user. The whole set is written back
// on every change. It is not safe for concurrent use.
type Registry struct {
	kv    store.KV
	user  string
	names map[string]struct{}
}

// Load reads user's favorites once. A missing key or a value that is not a
// JSON array of strings yields an empty registry. A read error also yields
// an empty registry and is returned so the caller can report it.
func Load(kv store.KV, user string) (*Registry, error) {
	r := &Registry{kv: kv, user: user, names: make(map[string]struct{})}

	raw, ok, err := kv.Get(Key(user))
	if err != nil {
		return r, fmt.Errorf("load favorites: %w", err)
	}
	if !ok || raw == "" {
		return r, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return r, nil
	}
	for _, n := range names {
		r.names[n] = struct{}{}
	}
	return r, nil
}

// User returns the owner of the set.
func (r *Registry) User() string { return r.user }

// IsFavorite reports whether name is in the set.
func (r *Registry) IsFavorite(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Toggle adds name if absent, removes it otherwise, then persists the set.
// It returns the new membership. On a persistence error the in-memory set
// keeps the change.
func (r *Registry) Toggle(name string) (bool, error) {
	_, had := r.names[name]
	if had {
		delete(r.names, name)
	} else {
		r.names[name] = struct{}{}
	}
	return !had, r.save()
}

// Names returns the members in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of favorites.
func (r *Registry) Len() int { return len(r.names) }

func (r *Registry) save() error {
	data, err := json.Marshal(r.Names())
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := r.kv.Set(Key(r.user), string(data)); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/domain"
)

// Registry owns the connection->identity mapping and the case-insensitive
// reverse name index. Display names stay pairwise distinct among live
// connections through every register/rename.
type Registry struct {
	mu     sync.RWMutex
	prefix string
	byID   map[domain.ClientID]*domain.Identity
	byName map[string]domain.ClientID
	owner  domain.ClientID
}

func NewRegistry(guestPrefix string) *Registry {
	return &Registry{
		prefix: guestPrefix,
		byID:   make(map[domain.ClientID]*domain.Identity),
		byName: make(map[string]domain.ClientID),
	}
}

// Register creates a guest identity with a generated unique name of the
// form <prefix>-<random4>, suffixed _2, _3, ... on the off chance of a
// collision. Returns a snapshot of the new identity.
func (r *Registry) Register(id domain.ClientID) domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := fmt.Sprintf("%s-%s", r.prefix, uuid.NewString()[:4])
	name := r.uniqueNameLocked(base, id)

	ident := &domain.Identity{ID: id, Name: name, Role: domain.RoleGuest}
	r.byID[id] = ident
	r.byName[domain.NameKey(name)] = id
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Str("name", name).Msg("registered")
	return *ident
}

// Rename sanitizes the desired name, disambiguates against live names by
// suffixing, and rewrites forward and reverse indices in one step. The old
// and resulting names are returned for the caller's broadcast.
func (r *Registry) Rename(id domain.ClientID, desired string) (old, now string, err error) {
	name, err := domain.SanitizeName(desired)
	if err != nil {
		return "", "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.byID[id]
	if !ok {
		return "", "", nil
	}
	name = r.uniqueNameLocked(name, id)

	old = ident.Name
	delete(r.byName, domain.NameKey(old))
	ident.Name = name
	r.byName[domain.NameKey(name)] = id
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Str("old", old).Str("name", name).Msg("renamed")
	return old, name, nil
}

// uniqueNameLocked appends _2, _3, ... until the candidate collides with
// neither a live name nor a reserved one. A collision with the caller's
// own entry is not a collision (case-only renames stay legal).
func (r *Registry) uniqueNameLocked(base string, self domain.ClientID) string {
	name := base
	for n := 2; ; n++ {
		holder, taken := r.byName[domain.NameKey(name)]
		if (!taken || holder == self) && !domain.Reserved(name) {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, n)
	}
}

// Lookup resolves a display name case-insensitively.
func (r *Registry) Lookup(name string) (domain.ClientID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[domain.NameKey(name)]
	return id, ok
}

// Identity returns a snapshot of the identity bound to id.
func (r *Registry) Identity(id domain.ClientID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ident, ok := r.byID[id]
	if !ok {
		return domain.Identity{}, false
	}
	return *ident, true
}

// NameOf is Identity for callers that only want the display name.
func (r *Registry) NameOf(id domain.ClientID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ident, ok := r.byID[id]; ok {
		return ident.Name
	}
	return ""
}

// Unregister removes the identity and frees its reverse index entry.
// Unknown ids are a no-op; disconnect races are expected.
func (r *Registry) Unregister(id domain.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byName, domain.NameKey(ident.Name))
	delete(r.byID, id)
	if r.owner == id {
		r.owner = ""
	}
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Str("name", ident.Name).Msg("unregistered")
}

func (r *Registry) SetRole(id domain.ClientID, role domain.Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.byID[id]
	if !ok {
		return false
	}
	ident.Role = role
	return true
}

// GrantOwner promotes id to owner. At most one live connection may hold
// owner; a second grant fails until the first owner disconnects.
func (r *Registry) GrantOwner(id domain.ClientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.byID[id]
	if !ok {
		return domain.ErrUnknownTarget
	}
	if r.owner != "" && r.owner != id {
		return domain.ErrOwnerTaken
	}
	r.owner = id
	ident.Role = domain.RoleOwner
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Str("name", ident.Name).Msg("owner granted")
	return nil
}

func (r *Registry) SetMute(id domain.ClientID, until time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.byID[id]
	if !ok {
		return false
	}
	ident.MuteExpiry = until
	return true
}

// ClearMute lifts a mute. Reports whether a non-expired mute was active.
func (r *Registry) ClearMute(id domain.ClientID, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.byID[id]
	if !ok {
		return false
	}
	active, _ := ident.Muted(now)
	ident.MuteExpiry = time.Time{}
	return active
}

// Muted reports whether id has an active mute at now and the remaining
// duration. Expiry is evaluated lazily here, never swept.
func (r *Registry) Muted(id domain.ClientID, now time.Time) (bool, time.Duration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ident, ok := r.byID[id]
	if !ok {
		return false, 0
	}
	return ident.Muted(now)
}

// Names returns all live display names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byID))
	for _, ident := range r.byID {
		out = append(out, ident.Name)
	}
	sort.Strings(out)
	return out
}

// MutedIdentities returns snapshots of all identities with an active mute.
func (r *Registry) MutedIdentities(now time.Time) []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Identity
	for _, ident := range r.byID {
		if active, _ := ident.Muted(now); active {
			out = append(out, *ident)
		}
	}
	return out
}

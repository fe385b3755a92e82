package app

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/domain"
)

// BanList is the name-keyed ban ledger. Entries are matched lazily against
// their expiry; expired records are left in place and simply stop
// matching. The ledger therefore grows with every ban ever issued, which
// is acceptable at this scale.
type BanList struct {
	mu      sync.Mutex
	entries map[string]banRecord
}

type banRecord struct {
	name   string
	expiry time.Time
}

// BanEntry is a read-only view of an active ban for /banlog.
type BanEntry struct {
	Name      string
	Remaining time.Duration
}

func NewBanList() *BanList {
	return &BanList{entries: make(map[string]banRecord)}
}

// Ban records an expiry for the name. Fails if a non-expired record
// already exists.
func (b *BanList) Ban(name string, until, now time.Time) error {
	key := domain.NameKey(name)
	b.mu.Lock()
	defer b.mu.Unlock()
	if rec, ok := b.entries[key]; ok && rec.expiry.After(now) {
		return domain.ErrAlreadySanctioned
	}
	b.entries[key] = banRecord{name: name, expiry: until}
	log.Info().Str("module", "app.banlist").Str("name", name).Time("until", until).Msg("banned")
	return nil
}

// Lift clears a ban. Idempotent: reports whether an active ban existed.
func (b *BanList) Lift(name string, now time.Time) bool {
	key := domain.NameKey(name)
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.entries[key]
	delete(b.entries, key)
	return ok && rec.expiry.After(now)
}

// Banned reports whether the name is banned at now, and for how much
// longer.
func (b *BanList) Banned(name string, now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.entries[domain.NameKey(name)]
	if !ok || !rec.expiry.After(now) {
		return false, 0
	}
	return true, rec.expiry.Sub(now)
}

// Entries lists active bans, sorted by name.
func (b *BanList) Entries(now time.Time) []BanEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []BanEntry
	for _, rec := range b.entries {
		if rec.expiry.After(now) {
			out = append(out, BanEntry{Name: rec.name, Remaining: rec.expiry.Sub(now)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

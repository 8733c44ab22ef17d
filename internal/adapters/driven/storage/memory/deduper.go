// Package memory provides in-process implementations of driven ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// Ensure Deduper implements the interface.
var _ driven.AlertDeduper = (*Deduper)(nil)

// Deduper is an in-memory driven.AlertDeduper.
// Claims are lost on restart; use the valkey deduper to share them.
type Deduper struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewDeduper creates an empty in-memory deduper.
func NewDeduper() *Deduper {
	return &Deduper{
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Claim records key until now+window and reports whether it was free.
func (d *Deduper) Claim(_ context.Context, key string, window time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if expires, ok := d.claims[key]; ok && now.Before(expires) {
		return false, nil
	}
	d.claims[key] = now.Add(window)
	d.evict(now)
	return true, nil
}

// evict drops expired claims (caller must hold lock).
func (d *Deduper) evict(now time.Time) {
	for k, expires := range d.claims {
		if !now.Before(expires) {
			delete(d.claims, k)
		}
	}
}

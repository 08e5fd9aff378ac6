package snapshot

import (
	"context"
	"encoding/json"
	"log"

	"github.com/bt-lms/dashcore/internal/index"
	"github.com/bt-lms/dashcore/internal/lms"
)

// Cache persists the last complete snapshot and the notification read
// overlay so the dashboard can render before the first live fetch lands.
type Cache interface {
	SaveCollection(ctx context.Context, name string, payload []byte) error
	LoadCollections(ctx context.Context) (map[string][]byte, error)
	MarkRead(ctx context.Context, actorID, notificationID string) error
	ReadIDs(ctx context.Context, actorID string) ([]string, error)
	Purge(ctx context.Context) error
}

// persist writes one snapshot's collections to the cache. Serialized:
// two swaps finishing close together must not interleave their rows,
// and a snapshot superseded after its swap yields to the newer one.
func (l *Loader) persist(ctx context.Context, cols lms.Collections, epoch uint64) {
	if l.cache == nil {
		return
	}
	l.persistMu.Lock()
	defer l.persistMu.Unlock()
	l.mu.Lock()
	superseded := l.epoch != epoch
	l.mu.Unlock()
	if superseded {
		return
	}
	for _, name := range allCollections {
		recs := getCollection(cols, name)
		if recs == nil {
			recs = []lms.Record{}
		}
		payload, err := json.Marshal(recs)
		if err != nil {
			log.Printf("snapshot: marshal %s for cache: %v", name, err)
			continue
		}
		if err := l.cache.SaveCollection(ctx, name, payload); err != nil {
			log.Printf("snapshot: cache %s: %v", name, err)
		}
	}
}

// RestoreFromCache loads the persisted snapshot, if any. A complete
// cached set makes the loader render-ready before the first live fetch;
// a partial one is ignored so the completeness gate stays closed.
// Returns false when nothing usable was cached.
func (l *Loader) RestoreFromCache(ctx context.Context) (bool, error) {
	if l.cache == nil {
		return false, nil
	}
	payloads, err := l.cache.LoadCollections(ctx)
	if err != nil {
		return false, err
	}
	var cols lms.Collections
	for _, name := range allCollections {
		raw, ok := payloads[name]
		if !ok {
			return false, nil
		}
		var recs []lms.Record
		if err := json.Unmarshal(raw, &recs); err != nil {
			log.Printf("snapshot: cached %s unreadable, skipping restore: %v", name, err)
			return false, nil
		}
		setCollection(&cols, name, recs)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.complete {
		// a live fetch beat us; keep it
		return false, nil
	}
	l.cols = cols
	l.complete = true
	l.ix = index.Build(cols)
	return true, nil
}

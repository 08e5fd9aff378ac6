package notify

import "sync"

// Overlay tracks which derived notifications the actor has read. Marking
// read mutates only this overlay, never the source data, so the flags
// survive every recomputation of the list.
type Overlay struct {
	mu   sync.Mutex
	read map[string]bool
}

func NewOverlay() *Overlay {
	return &Overlay{read: map[string]bool{}}
}

// Seed preloads read ids, e.g. restored from the local cache.
func (o *Overlay) Seed(ids []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, id := range ids {
		o.read[id] = true
	}
}

func (o *Overlay) MarkRead(id string) {
	o.mu.Lock()
	o.read[id] = true
	o.mu.Unlock()
}

// ReadIDs returns the marked ids, for persistence.
func (o *Overlay) ReadIDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.read))
	for id := range o.read {
		out = append(out, id)
	}
	return out
}

// Apply merges the read flags onto a freshly derived list in place and
// returns it.
func (o *Overlay) Apply(items []Item) []Item {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range items {
		if o.read[items[i].ID] {
			items[i].IsRead = true
		}
	}
	return items
}

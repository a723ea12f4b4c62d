package phraseindex

import "sync/atomic"

// Holder publishes the current Index. Readers never block; a rebuild swaps
// the whole Index in one store.
type Holder struct {
	current atomic.Pointer[Index]
}

func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx != nil {
		h.current.Store(idx)
	}
	return h
}

// Load returns the current index, or nil when none has been built.
func (h *Holder) Load() *Index {
	if h == nil {
		return nil
	}
	return h.current.Load()
}

// Swap installs idx and returns the index it replaced.
func (h *Holder) Swap(idx *Index) *Index {
	return h.current.Swap(idx)
}

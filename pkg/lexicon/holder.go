package lexicon

import "sync/atomic"

// Holder publishes the active table to concurrent readers.
type Holder struct {
	table atomic.Pointer[Table]
}

// NewHolder creates a Holder serving t, or the default table when t is nil.
func NewHolder(t *Table) *Holder {
	if t == nil {
		t = Default()
	}
	h := &Holder{}
	h.table.Store(t)
	return h
}

// Table returns the table currently in effect. Callers must not mutate it.
func (h *Holder) Table() *Table {
	return h.table.Load()
}

// Store replaces the active table.
func (h *Holder) Store(t *Table) {
	h.table.Store(t)
}

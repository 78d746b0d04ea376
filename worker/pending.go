package worker

import "github.com/fkzrh/signal-collect/graph"

// ToSignal is the set of vertex ids awaiting a signal pass. Foreach
// drains the set as it visits entries: every id handed to the callback
// is removed from the set before Foreach returns. Snapshot first, then
// iterate the snapshot, so a callback that enqueues new ids (e.g. via
// AddEdge) never mutates the set out from under the live iteration.
type ToSignal[Id comparable] struct {
	ids map[Id]struct{}
}

func NewToSignal[Id comparable]() *ToSignal[Id] {
	return &ToSignal[Id]{ids: make(map[Id]struct{})}
}

func (t *ToSignal[Id]) Add(id Id) {
	t.ids[id] = struct{}{}
}

func (t *ToSignal[Id]) Remove(id Id) {
	delete(t.ids, id)
}

func (t *ToSignal[Id]) Contains(id Id) bool {
	_, ok := t.ids[id]
	return ok
}

func (t *ToSignal[Id]) IsEmpty() bool {
	return len(t.ids) == 0
}

func (t *ToSignal[Id]) Len() int {
	return len(t.ids)
}

// Foreach visits a snapshot of the current ids, removing each from the
// set as it is handed to consume. Ids added by consume (directly or via
// a WorkerRequest it triggers) are not visited by this call.
func (t *ToSignal[Id]) Foreach(consume func(Id)) {
	snapshot := make([]Id, 0, len(t.ids))
	for id := range t.ids {
		snapshot = append(snapshot, id)
	}
	for _, id := range snapshot {
		delete(t.ids, id)
		consume(id)
	}
}

// ToCollect maps a vertex id to the signals queued for its next collect
// pass. AddVertex with no prior signals is valid — it means "run
// collect with an empty batch next step".
type ToCollect[Id comparable, Sig any] struct {
	pending map[Id][]graph.Signal[Id, Sig]
	order   []Id
}

func NewToCollect[Id comparable, Sig any]() *ToCollect[Id, Sig] {
	return &ToCollect[Id, Sig]{pending: make(map[Id][]graph.Signal[Id, Sig])}
}

func (c *ToCollect[Id, Sig]) AddVertex(id Id) {
	if _, exists := c.pending[id]; !exists {
		c.pending[id] = nil
		c.order = append(c.order, id)
	}
}

// AddSignal appends s to its target's uncollected batch, auto-creating
// the entry (and its position in iteration order) if needed.
func (c *ToCollect[Id, Sig]) AddSignal(s graph.Signal[Id, Sig]) {
	if _, exists := c.pending[s.TargetID]; !exists {
		c.order = append(c.order, s.TargetID)
	}
	c.pending[s.TargetID] = append(c.pending[s.TargetID], s)
}

func (c *ToCollect[Id, Sig]) Remove(id Id) {
	delete(c.pending, id)
}

func (c *ToCollect[Id, Sig]) IsEmpty() bool {
	return len(c.pending) == 0
}

func (c *ToCollect[Id, Sig]) Len() int {
	return len(c.pending)
}

func (c *ToCollect[Id, Sig]) Clear() {
	c.pending = make(map[Id][]graph.Signal[Id, Sig])
	c.order = nil
}

// Foreach drains a snapshot of (id, uncollected signals) pairs: every
// entry is popped out of the live map before any visit callback runs,
// mirroring ToSignal's consume-on-visit contract. A signal that
// arrives (via AddSignal) for the same id while visit is running lands
// in a fresh entry for the *next* pass, rather than being silently
// folded into — and lost with — the entry this pass already committed
// to processing. The event loop therefore does not Remove(id) after a
// visit: the entry is already gone, and a fresh one must survive.
func (c *ToCollect[Id, Sig]) Foreach(visit func(id Id, uncollected []graph.Signal[Id, Sig])) {
	type entry struct {
		id      Id
		signals []graph.Signal[Id, Sig]
	}
	snapshot := make([]entry, 0, len(c.order))
	seen := make(map[Id]struct{}, len(c.order))
	for _, id := range c.order {
		if _, dup := seen[id]; dup {
			continue
		}
		signals, exists := c.pending[id]
		if !exists {
			continue
		}
		seen[id] = struct{}{}
		snapshot = append(snapshot, entry{id: id, signals: signals})
		delete(c.pending, id)
	}
	c.order = nil

	for _, e := range snapshot {
		visit(e.id, e.signals)
	}
}

package automaton

// Relation maps a kind-specific guard to the actions it enables.
// Guards keep their first-insertion order so that iteration is stable.
type Relation[G comparable, A comparable] struct {
	actions map[G][]A
	order   []G
}

// NewRelation returns an empty relation.
func NewRelation[G comparable, A comparable]() *Relation[G, A] {
	return &Relation[G, A]{actions: make(map[G][]A)}
}

// Add records that guard g enables action a. Adding an identical
// (guard, action) pair twice is a no-op; it reports whether a was new.
func (r *Relation[G, A]) Add(g G, a A) bool {
	existing, ok := r.actions[g]
	if !ok {
		r.order = append(r.order, g)
	}
	for _, e := range existing {
		if e == a {
			return false
		}
	}
	r.actions[g] = append(existing, a)
	return true
}

// Lookup returns the actions enabled by g. The slice must not be modified.
func (r *Relation[G, A]) Lookup(g G) []A {
	if r == nil {
		return nil
	}
	return r.actions[g]
}

// Has reports whether any action is recorded for g.
func (r *Relation[G, A]) Has(g G) bool {
	if r == nil {
		return false
	}
	_, ok := r.actions[g]
	return ok
}

// Guards returns every guard in insertion order.
func (r *Relation[G, A]) Guards() []G {
	if r == nil {
		return nil
	}
	out := make([]G, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of (guard, action) pairs.
func (r *Relation[G, A]) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, acts := range r.actions {
		n += len(acts)
	}
	return n
}

// Clone returns an independent copy of the relation.
func (r *Relation[G, A]) Clone() *Relation[G, A] {
	out := NewRelation[G, A]()
	if r == nil {
		return out
	}
	for _, g := range r.order {
		for _, a := range r.actions[g] {
			out.Add(g, a)
		}
	}
	return out
}

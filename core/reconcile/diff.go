package reconcile

// Diff is the outcome of comparing a stored set with an incoming set.
type Diff[V any] struct {
	// Create holds incoming values with no stored counterpart.
	Create []V
	// Update holds incoming values whose stored counterpart differs.
	Update []V
	// Delete holds stored values absent from the incoming set.
	Delete []V
}

// Empty reports whether the sets are already equal.
func (d Diff[V]) Empty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// Changes returns the total number of differences.
func (d Diff[V]) Changes() int {
	return len(d.Create) + len(d.Update) + len(d.Delete)
}

// ThreeWay compares stored and incoming values by key. When stored holds
// duplicates of a key the first occurrence is the one compared and the later
// ones are reported as deletions after all others.
func ThreeWay[K comparable, V any](stored, incoming []V, key func(V) K, equal func(a, b V) bool) Diff[V] {
	var d Diff[V]

	storedIndex := make(map[K]V, len(stored))
	firsts := make([]V, 0, len(stored))
	var dups []V
	for _, v := range stored {
		k := key(v)
		if _, dup := storedIndex[k]; dup {
			dups = append(dups, v)
			continue
		}
		storedIndex[k] = v
		firsts = append(firsts, v)
	}

	seen := make(map[K]struct{}, len(incoming))
	for _, v := range incoming {
		k := key(v)
		seen[k] = struct{}{}
		old, ok := storedIndex[k]
		switch {
		case !ok:
			d.Create = append(d.Create, v)
		case !equal(old, v):
			d.Update = append(d.Update, v)
		}
	}

	for _, v := range firsts {
		if _, ok := seen[key(v)]; !ok {
			d.Delete = append(d.Delete, v)
		}
	}
	d.Delete = append(d.Delete, dups...)
	return d
}

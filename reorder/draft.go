// Package reorder stages drag-and-drop reorders of ordered lists and turns
// a staged rule order into a renumbering plan.
package reorder

// Draft holds a staged, not yet persisted version of a list next to the
// snapshot taken before the first staged change.
type Draft[T any] struct {
	Original []T
	Staged   []T
	Dirty    bool
}

// View returns the list the console must render: the staged order while
// the draft is dirty, the fetched list otherwise.
func (d *Draft[T]) View(fetched []T) []T {
	if d.Dirty {
		return d.Staged
	}
	return fetched
}

// Stage replaces the staged list. The pre-drag snapshot is taken only on
// the first staged change, later changes keep the original snapshot.
func (d *Draft[T]) Stage(current, next []T) {
	if !d.Dirty {
		d.Original = Clone(current)
	}
	d.Staged = next
	d.Dirty = true
}

// Reset discards the staged list and the snapshot
func (d *Draft[T]) Reset() {
	d.Original = nil
	d.Staged = nil
	d.Dirty = false
}

// Clone returns a shallow copy of the list
func Clone[T any](list []T) []T {
	if list == nil {
		return nil
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}

// Move returns a copy of the list with the element at from moved to index to.
// The relative order of every other element is preserved.
func Move[T any](list []T, from, to int) []T {
	out := Clone(list)
	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}

// IndexOf returns the index of the element whose key equals id, or -1
func IndexOf[T any, K comparable](list []T, id K, key func(T) K) int {
	for i := range list {
		if key(list[i]) == id {
			return i
		}
	}
	return -1
}

// StageReorder moves the element sourceID to the index of targetID in the
// current display order. It returns false, leaving the draft untouched, when
// source and target are the same or either is not in the list.
func StageReorder[T any, K comparable](d *Draft[T], fetched []T, sourceID, targetID K, key func(T) K) bool {
	if sourceID == targetID {
		return false
	}
	current := d.View(fetched)
	from := IndexOf(current, sourceID, key)
	to := IndexOf(current, targetID, key)
	if from < 0 || to < 0 {
		return false
	}
	d.Stage(current, Move(current, from, to))
	return true
}

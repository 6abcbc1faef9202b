// Package speculative holds locally predicted field values that stand in for
// authoritative segment values for a bounded number of frames.
package speculative

// Value is one predicted field. It is visible at frame now iff it was set and
// now-frame < window.
type Value[T any] struct {
	v     T
	frame int
	set   bool
}

func (x *Value[T]) Set(v T, frame int) {
	x.v = v
	x.frame = frame
	x.set = true
}

func (x *Value[T]) Clear() { *x = Value[T]{} }

// Frame reports when the value was installed.
func (x *Value[T]) Frame() (int, bool) { return x.frame, x.set }

func (x *Value[T]) Valid(now, window int) bool {
	return x.set && now >= x.frame && now-x.frame < window
}

func (x *Value[T]) Get(now, window int) (T, bool) {
	if !x.Valid(now, window) {
		var zero T
		return zero, false
	}
	return x.v, true
}

// Or returns the prediction when valid and auth otherwise.
func (x *Value[T]) Or(auth T, now, window int) T {
	if v, ok := x.Get(now, window); ok {
		return v
	}
	return auth
}

type deltaEntry struct {
	amount int
	frame  int
}

// Delta accumulates predicted changes to a counter. Each change expires on its
// own, so an older spend drops out once the engine has had time to report it.
type Delta struct {
	entries []deltaEntry
}

func (d *Delta) Add(amount, frame, window int) {
	d.prune(frame, window)
	d.entries = append(d.entries, deltaEntry{amount: amount, frame: frame})
}

// Sum is the total of changes still inside the window at frame now.
func (d *Delta) Sum(now, window int) int {
	total := 0
	for _, e := range d.entries {
		if now >= e.frame && now-e.frame < window {
			total += e.amount
		}
	}
	return total
}

func (d *Delta) Apply(auth, now, window int) int { return auth + d.Sum(now, window) }

func (d *Delta) Clear() { d.entries = d.entries[:0] }

func (d *Delta) prune(now, window int) {
	kept := d.entries[:0]
	for _, e := range d.entries {
		if now-e.frame < window {
			kept = append(kept, e)
		}
	}
	d.entries = kept
}

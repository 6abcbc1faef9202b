package speculative

// Cache owns the side tables and the clock they are read against. It is not
// safe for concurrent use; the session serializes access.
type Cache struct {
	enabled bool
	windows Windows
	now     int

	units   UnitTable
	players PlayerTable
}

func New(w Windows) *Cache {
	return &Cache{enabled: true, windows: w}
}

func (c *Cache) Enabled() bool { return c.enabled }

// SetEnabled toggles prediction. Disabling drops every installed override.
func (c *Cache) SetEnabled(on bool) {
	c.enabled = on
	if !on {
		c.units.Clear()
		c.players.Clear()
	}
}

func (c *Cache) Windows() Windows              { return c.windows }
func (c *Cache) SetWindows(w Windows)          { c.windows = w }
func (c *Cache) Window(f Field) int            { return c.windows[f] }
func (c *Cache) SetWindow(f Field, frames int) { c.windows[f] = frames }

// Advance moves the clock to the engine's frame counter.
func (c *Cache) Advance(frame int) { c.now = frame }
func (c *Cache) Now() int          { return c.now }

func (c *Cache) Units() *UnitTable     { return &c.units }
func (c *Cache) Players() *PlayerTable { return &c.players }

// Unit returns the row for reads, nil when prediction is off or nothing was installed.
func (c *Cache) Unit(id int) *UnitRow {
	if !c.enabled {
		return nil
	}
	return c.units.Get(id)
}

func (c *Cache) Player(id int) *PlayerRow {
	if !c.enabled {
		return nil
	}
	return c.players.Get(id)
}

// Read returns the prediction for f held in v, falling back to auth.
func Read[T any](c *Cache, f Field, v *Value[T], auth T) T {
	if c == nil || !c.enabled || v == nil {
		return auth
	}
	return v.Or(auth, c.now, c.windows[f])
}

// Install stamps v with the current frame. It is a no-op while disabled.
func Install[T any](c *Cache, v *Value[T], val T) {
	if c == nil || !c.enabled {
		return
	}
	v.Set(val, c.now)
}

// Counter merges a delta with its authoritative value.
func (c *Cache) Counter(f Field, d *Delta, auth int) int {
	if !c.enabled || d == nil {
		return auth
	}
	return d.Apply(auth, c.now, c.windows[f])
}

func (c *Cache) AddCounter(f Field, d *Delta, amount int) {
	if !c.enabled {
		return
	}
	d.Add(amount, c.now, c.windows[f])
}

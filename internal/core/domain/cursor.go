package domain

import (
	"time"
)

// Cursor is the high water mark of one endpoint's last successful sync.
// Field values are either int64 or time.Time; field order is insertion order.
type Cursor struct {
	names  []string
	values map[string]any
}

// NewCursor creates an empty cursor.
func NewCursor() *Cursor {
	return &Cursor{values: make(map[string]any)}
}

// Len returns the number of fields.
func (c *Cursor) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns the field names in insertion order.
func (c *Cursor) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Value returns the raw value of a field.
func (c *Cursor) Value(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[name]
	return v, ok
}

// Time returns a timestamp field.
func (c *Cursor) Time(name string) (time.Time, bool) {
	v, ok := c.Value(name)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Int returns an integer field.
func (c *Cursor) Int(name string) (int64, bool) {
	v, ok := c.Value(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// SetTime stores a timestamp field unconditionally.
func (c *Cursor) SetTime(name string, t time.Time) {
	c.set(name, t)
}

// SetInt stores an integer field unconditionally.
func (c *Cursor) SetInt(name string, n int64) {
	c.set(name, n)
}

// AdvanceTime widens a timestamp field to max(old, t).
func (c *Cursor) AdvanceTime(name string, t time.Time) {
	if old, ok := c.Time(name); ok && !t.After(old) {
		return
	}
	c.set(name, t)
}

// AdvanceInt widens an integer field to max(old, n).
func (c *Cursor) AdvanceInt(name string, n int64) {
	if old, ok := c.Int(name); ok && n <= old {
		return
	}
	c.set(name, n)
}

// AdvanceFrom widens each named field using the entity's value for it.
// Fields the entity lacks are left alone.
func (c *Cursor) AdvanceFrom(e Entity, names []string) error {
	for _, name := range names {
		if !e.Has(name) {
			continue
		}
		if IsTimeField(name) {
			t, err := e.Time(name)
			if err != nil {
				return err
			}
			c.AdvanceTime(name, t)
			continue
		}
		n, err := e.Int(name)
		if err != nil {
			return err
		}
		c.AdvanceInt(name, n)
	}
	return nil
}

// Clone returns an independent copy. Cloning nil returns nil.
func (c *Cursor) Clone() *Cursor {
	if c == nil {
		return nil
	}
	out := NewCursor()
	for _, name := range c.names {
		out.set(name, c.values[name])
	}
	return out
}

func (c *Cursor) set(name string, v any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = v
}

// Checkpoint maps endpoint names to cursors for one tenant.
// A present endpoint with a nil cursor was recorded without any fields;
// an absent endpoint has never been synced.
type Checkpoint struct {
	endpoints []string
	cursors   map[string]*Cursor
}

// NewCheckpoint creates an empty checkpoint.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{cursors: make(map[string]*Cursor)}
}

// Get returns the cursor for an endpoint and whether the endpoint is recorded.
func (c *Checkpoint) Get(endpoint string) (*Cursor, bool) {
	cur, ok := c.cursors[endpoint]
	return cur, ok
}

// Set records the cursor for an endpoint, keeping first-insertion order.
func (c *Checkpoint) Set(endpoint string, cursor *Cursor) {
	if c.cursors == nil {
		c.cursors = make(map[string]*Cursor)
	}
	if _, ok := c.cursors[endpoint]; !ok {
		c.endpoints = append(c.endpoints, endpoint)
	}
	c.cursors[endpoint] = cursor
}

// Endpoints returns recorded endpoint names in insertion order.
func (c *Checkpoint) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// Len returns the number of recorded endpoints.
func (c *Checkpoint) Len() int {
	return len(c.endpoints)
}

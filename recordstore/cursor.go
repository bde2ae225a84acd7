package recordstore

import "errors"

// Cursor walks the records of a store in insertion order. The key
// order is snapshotted when the cursor is created (and again on Rewind
// or Seek), values are read live at each step: a concurrent Replace is
// visible, a concurrently removed key is skipped silently.
//
//	cursor := rs.Sequence()
//	for cursor.Next() {
//		fmt.Println(cursor.Key(), len(cursor.Value()))
//	}
//	if err := cursor.Err(); err != nil {
//		...
//	}
type Cursor struct {
	rs    *RecordStore
	plan  []string
	pos   int
	key   string
	value []byte
	err   error
}

// Sequence returns a fresh cursor. Cursors over the same store are
// independent, each owns its position.
func (rs *RecordStore) Sequence() *Cursor {
	return &Cursor{
		rs:   rs,
		plan: rs.snapshotKeys(),
	}
}

// Next advances to the next surviving record. It returns false once the
// sequence is exhausted or a read failed, and keeps returning false
// until Rewind.
func (c *Cursor) Next() bool {

	if c.err != nil {
		return false
	}

	for c.pos < len(c.plan) {
		key := c.plan[c.pos]
		c.pos++

		value, err := c.rs.Read(key)
		if errors.Is(err, ErrorKeyNotFound) {
			// removed behind our back, skip it
			continue
		}
		if err != nil {
			c.err = err
			return false
		}

		c.key = key
		c.value = value
		return true
	}

	return false
}

func (c *Cursor) Key() string {
	return c.key
}

func (c *Cursor) Value() []byte {
	return c.value
}

// Err reports the first read failure that stopped the iteration, nil
// on plain exhaustion.
func (c *Cursor) Err() error {
	return c.err
}

// Rewind takes a fresh key-order snapshot and starts over.
func (c *Cursor) Rewind() {
	c.plan = c.rs.snapshotKeys()
	c.pos = 0
	c.key = ""
	c.value = nil
	c.err = nil
}

// Seek takes a fresh snapshot and positions the cursor so that the next
// Next returns key. It fails with ErrorKeyNotFound if the key is not
// present, leaving the cursor where it was.
func (c *Cursor) Seek(key string) error {

	plan := c.rs.snapshotKeys()
	for i, k := range plan {
		if k == key {
			c.plan = plan
			c.pos = i
			c.key = ""
			c.value = nil
			c.err = nil
			return nil
		}
	}

	return ErrorKeyNotFound
}

package assets

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// Content is an immutable blob assigned to an asset. The bytes are copied on
// the way in and never exposed for writing, so one Content may be shared by
// several assets.
type Content struct {
	id   uuid.UUID
	mime string
	data []byte
}

// NewContent copies data into a new Content handle.
func NewContent(data []byte, mimeType string) *Content {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Content{id: uuid.New(), mime: mimeType, data: cp}
}

func (c *Content) ID() string { return c.id.String() }

func (c *Content) MIME() string { return c.mime }

func (c *Content) Len() int { return len(c.data) }

// Bytes returns a copy of the content.
func (c *Content) Bytes() []byte {
	cp := make([]byte, len(c.data))
	copy(cp, c.data)
	return cp
}

// Reader returns a read-only view of the content.
func (c *Content) Reader() *bytes.Reader {
	return bytes.NewReader(c.data)
}

// Equal reports whether two handles carry identical bytes.
func (c *Content) Equal(other *Content) bool {
	if c == nil || other == nil {
		return c == other
	}
	return bytes.Equal(c.data, other.data)
}

// Tracker counts live references to Content handles. A handle assigned to N
// assets stays live until all N references are released.
type Tracker struct {
	mu   sync.Mutex
	refs map[*Content]int
}

func NewTracker() *Tracker {
	return &Tracker{refs: make(map[*Content]int)}
}

// Retain records one more reference to c.
func (t *Tracker) Retain(c *Content) {
	if t == nil || c == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs[c]++
}

// Release drops one reference and reports whether c is now unreferenced.
func (t *Tracker) Release(c *Content) bool {
	if t == nil || c == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.refs[c]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(t.refs, c)
		return true
	}
	t.refs[c] = n - 1
	return false
}

// Refs returns the current reference count of c.
func (t *Tracker) Refs(c *Content) int {
	if t == nil || c == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refs[c]
}

// Live returns the number of distinct handles still referenced.
func (t *Tracker) Live() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.refs)
}

package assets

import (
	"texgallery/internal/services"
)

// Observer receives a notification after every committed state change.
type Observer interface {
	AssetChanged(a *Asset)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(a *Asset)

func (f ObserverFunc) AssetChanged(a *Asset) { f(a) }

// Machine is the single commit path for asset modification state. Whoever
// assigns a new handle through the Machine releases the handle it replaces.
type Machine struct {
	tracker  *Tracker
	observer Observer
}

// NewMachine builds a Machine. A nil tracker gets a private one; a nil
// observer disables notifications.
func NewMachine(tracker *Tracker, observer Observer) *Machine {
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Machine{tracker: tracker, observer: observer}
}

// Tracker exposes the handle tracker used by the machine.
func (m *Machine) Tracker() *Tracker { return m.tracker }

// SetOriginal caches fetched original bytes and clears any fetch error.
func (m *Machine) SetOriginal(a *Asset, c *Content) {
	if a == nil || c == nil {
		return
	}
	m.swap(&a.original, c)
	a.fetchErr = nil
	m.notify(a)
}

// MarkFetchFailed flags the asset with a recoverable fetch error. The asset
// stays in the registry.
func (m *Machine) MarkFetchFailed(a *Asset, err error) {
	if a == nil {
		return
	}
	a.fetchErr = err
	m.notify(a)
}

// ApplyModification commits an in-place edit: the modified handle becomes c,
// any replacement is discarded, and IsNew is cleared.
func (m *Machine) ApplyModification(a *Asset, c *Content) error {
	if err := checkCommit(a, c, "apply modification"); err != nil {
		return err
	}
	m.swap(&a.modified, c)
	m.swap(&a.replacement, nil)
	a.isModified = true
	a.isNew = false
	m.notify(a)
	return nil
}

// ApplyReplacement commits substituted content: the replacement handle becomes
// c, any modification is discarded, and IsModified is cleared. The original
// bytes are retained but never resolve while the asset is replaced.
func (m *Machine) ApplyReplacement(a *Asset, c *Content) error {
	if err := checkCommit(a, c, "apply replacement"); err != nil {
		return err
	}
	m.swap(&a.replacement, c)
	m.swap(&a.modified, nil)
	a.isNew = true
	a.isModified = false
	m.notify(a)
	return nil
}

// Revert discards modified and replacement content and clears both flags.
func (m *Machine) Revert(a *Asset) {
	if a == nil {
		return
	}
	m.swap(&a.modified, nil)
	m.swap(&a.replacement, nil)
	a.isModified = false
	a.isNew = false
	m.notify(a)
}

func (m *Machine) swap(slot **Content, next *Content) {
	prev := *slot
	if prev == next {
		return
	}
	m.tracker.Retain(next)
	*slot = next
	m.tracker.Release(prev)
}

func (m *Machine) notify(a *Asset) {
	if m.observer != nil {
		m.observer.AssetChanged(a)
	}
}

func checkCommit(a *Asset, c *Content, op string) error {
	if a == nil {
		return services.Wrap(services.ErrNotFound, "assets", op, "asset is nil", nil)
	}
	if c == nil {
		return services.Wrap(services.ErrValidation, "assets", op, a.ID()+": content is nil", nil)
	}
	return nil
}

// Source names where effective content came from.
type Source int

const (
	SourceNeedsFetch Source = iota
	SourceOriginal
	SourceModified
	SourceNew
)

func (s Source) String() string {
	switch s {
	case SourceNew:
		return "new"
	case SourceModified:
		return "modified"
	case SourceOriginal:
		return "original"
	default:
		return "fetch"
	}
}

// Resolve returns the content to display or export, in priority order new,
// modified, original. SourceNeedsFetch with a nil handle means the declared
// media path must be fetched; it is not an error.
func Resolve(a *Asset) (*Content, Source) {
	switch {
	case a.replacement != nil:
		return a.replacement, SourceNew
	case a.modified != nil:
		return a.modified, SourceModified
	case a.original != nil:
		return a.original, SourceOriginal
	default:
		return nil, SourceNeedsFetch
	}
}

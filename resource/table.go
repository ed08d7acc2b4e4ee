package resource

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/wippyai/textcodec/errors"
)

// Table holds values of type T behind handles.
// It is safe for concurrent use.
type Table[T any] struct {
	entries   *xsync.Map[Handle, T]
	observers []Observer
	obsMu     sync.RWMutex
	closeMu   sync.RWMutex
	next      atomic.Uint32
	live      atomic.Int64
	limit     int
	closed    bool
}

// NewTable creates a table holding at most limit values.
// A limit of zero or less means unbounded.
func NewTable[T any](limit int) *Table[T] {
	return &Table[T]{
		entries: xsync.NewMap[Handle, T](),
		limit:   limit,
	}
}

// Insert adds a value and returns its handle.
// It fails with KindLimitExceeded when the table is full and with
// KindHostUnavailable after Close.
func (t *Table[T]) Insert(value T) (Handle, error) {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()

	if t.closed {
		return 0, errors.New(errors.PhaseHost, errors.KindHostUnavailable).
			Detail("handle table closed").Build()
	}

	if n := t.live.Add(1); t.limit > 0 && n > int64(t.limit) {
		t.live.Add(-1)
		return 0, errors.LimitExceeded("", "handle", t.limit)
	}

	var h Handle
	for {
		h = Handle(t.next.Add(1))
		if h == 0 {
			continue
		}
		// Only reachable after the counter wraps.
		if _, loaded := t.entries.LoadOrStore(h, value); !loaded {
			break
		}
	}

	t.notify(Event{Type: EventCreated, Handle: h, Value: value})
	return h, nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	if h == 0 {
		var zero T
		return zero, false
	}
	return t.entries.Load(h)
}

// Remove drops a value and returns (value, true) if found.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	value, ok := t.entries.LoadAndDelete(h)
	if !ok {
		return value, false
	}
	t.live.Add(-1)

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: h, Value: value})
	return value, true
}

// Len returns the number of live values.
func (t *Table[T]) Len() int {
	return int(t.live.Load())
}

// Each iterates over live values until fn returns false.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.entries.Range(fn)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. o must be comparable, so an
// ObserverFunc cannot be unsubscribed.
func (t *Table[T]) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close drops all values and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	// Collect handles first to avoid removing during Range
	var handles []Handle
	t.entries.Range(func(h Handle, _ T) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
	return nil
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

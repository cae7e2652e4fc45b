// Package dlist provides a generic doubly-linked list that owns its values
// until they are removed, with an optional destructor run on Destroy and an
// optional comparator used for ordered, deduplicated insertion.
package dlist

import (
	"errors"
	"iter"
	"strings"
)

var (
	// A nil anchor is only accepted while the list is empty.
	ErrInvalidState = errors.New("dlist: nil anchor on non-empty list")
	// Remove was called on an empty list or with an element the list does not hold.
	ErrEmptyOrInvalid = errors.New("dlist: empty list or invalid element")
)

type Element[T any] struct {
	Value T

	next, prev *Element[T]
	list       *List[T]
}

func (e *Element[T]) Next() *Element[T] { return e.next }

func (e *Element[T]) Prev() *Element[T] { return e.prev }

// List is not safe for concurrent use.
type List[T any] struct {
	head, tail *Element[T]
	size       int

	destroy func(T)
	compare func(a, b T) int
}

// New returns an empty list. destroy is called for every value still held
// when the list is destroyed; nil means the caller keeps ownership.
// compare is only needed by InsertOrdered.
func New[T any](destroy func(T), compare func(a, b T) int) *List[T] {
	return &List[T]{destroy: destroy, compare: compare}
}

// NewStringCatalog returns a list for sorted, deduplicated strings
// compared byte-wise.
func NewStringCatalog() *List[string] {
	return New[string](nil, strings.Compare)
}

func (l *List[T]) Len() int { return l.size }

func (l *List[T]) Head() *Element[T] { return l.head }

func (l *List[T]) Tail() *Element[T] { return l.tail }

// InsertAfter links v after anchor and returns its element.
// anchor may be nil only when the list is empty.
func (l *List[T]) InsertAfter(anchor *Element[T], v T) (*Element[T], error) {
	if anchor == nil {
		if l.size != 0 {
			return nil, ErrInvalidState
		}
		return l.insertFirst(v), nil
	}
	l.mustOwn(anchor)

	e := &Element[T]{Value: v, list: l, prev: anchor, next: anchor.next}
	if anchor.next == nil {
		l.tail = e
	} else {
		anchor.next.prev = e
	}
	anchor.next = e
	l.size++

	return e, nil
}

// InsertBefore links v before anchor and returns its element.
// anchor may be nil only when the list is empty.
func (l *List[T]) InsertBefore(anchor *Element[T], v T) (*Element[T], error) {
	if anchor == nil {
		if l.size != 0 {
			return nil, ErrInvalidState
		}
		return l.insertFirst(v), nil
	}
	l.mustOwn(anchor)

	e := &Element[T]{Value: v, list: l, prev: anchor.prev, next: anchor}
	if anchor.prev == nil {
		l.head = e
	} else {
		anchor.prev.next = e
	}
	anchor.prev = e
	l.size++

	return e, nil
}

func (l *List[T]) PushBack(v T) *Element[T] {
	if l.tail == nil {
		return l.insertFirst(v)
	}
	e, _ := l.InsertAfter(l.tail, v)
	return e
}

func (l *List[T]) PushFront(v T) *Element[T] {
	if l.head == nil {
		return l.insertFirst(v)
	}
	e, _ := l.InsertBefore(l.head, v)
	return e
}

// Remove unlinks e and hands its value back to the caller, who owns it again.
func (l *List[T]) Remove(e *Element[T]) (T, error) {
	var zero T
	if e == nil || l.size == 0 || e.list != l {
		return zero, ErrEmptyOrInvalid
	}

	if e.prev == nil {
		l.head = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		l.tail = e.prev
	} else {
		e.next.prev = e.prev
	}
	l.size--

	v := e.Value
	e.next, e.prev, e.list = nil, nil, nil
	e.Value = zero
	return v, nil
}

// Destroy empties the list from the tail, passing each value to the
// destructor when one is registered.
func (l *List[T]) Destroy() {
	for l.tail != nil {
		v, _ := l.Remove(l.tail)
		if l.destroy != nil {
			l.destroy(v)
		}
	}
}

// InsertOrdered inserts v in ascending comparator order. Values equal to
// an element already held are dropped, as are empty strings. It reports
// whether v was inserted and panics if the list has no comparator.
func (l *List[T]) InsertOrdered(v T) bool {
	if l.compare == nil {
		panic("dlist: InsertOrdered on a list without comparator")
	}
	if s, ok := any(v).(string); ok && s == "" {
		return false
	}

	if l.size == 0 {
		l.insertFirst(v)
		return true
	}

	// boundaries first
	c := l.compare(v, l.head.Value)
	if c == 0 {
		return false
	}
	if c < 0 {
		l.PushFront(v)
		return true
	}
	c = l.compare(v, l.tail.Value)
	if c == 0 {
		return false
	}
	if c > 0 {
		l.PushBack(v)
		return true
	}

	// head < v < tail
	for e := l.head; e.next != nil; e = e.next {
		c := l.compare(v, e.next.Value)
		if c == 0 {
			return false
		}
		if c < 0 {
			_, _ = l.InsertAfter(e, v)
			return true
		}
	}

	panic("dlist: comparator is not a total order")
}

// Values returns the held values from head to tail.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.size)
	for e := l.head; e != nil; e = e.next {
		out = append(out, e.Value)
	}
	return out
}

// All iterates from head to tail.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for e := l.head; e != nil; e = e.next {
			if !yield(e.Value) {
				return
			}
		}
	}
}

// Backward iterates from tail to head.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for e := l.tail; e != nil; e = e.prev {
			if !yield(e.Value) {
				return
			}
		}
	}
}

func (l *List[T]) insertFirst(v T) *Element[T] {
	e := &Element[T]{Value: v, list: l}
	l.head, l.tail = e, e
	l.size = 1
	return e
}

func (l *List[T]) mustOwn(e *Element[T]) {
	if e.list != l {
		panic("dlist: anchor element does not belong to this list")
	}
}

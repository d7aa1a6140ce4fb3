// Package linkedlist implements an intrusive doubly linked list whose elements
// live in an Arena and are addressed by stable handles instead of pointers.
//
// Several lists may share one arena. A slot belongs to at most one list at a
// time, and every list operation is O(1) given a handle.
package linkedlist

import "iter"

// Handle addresses a slot in an Arena. The zero value is Nil.
type Handle int32

// Nil is the handle that addresses no slot.
const Nil Handle = 0

type slot[T any] struct {
	value T
	prev  Handle
	next  Handle
}

// Arena stores list slots. Freed slots are recycled by later allocations.
//
// Pointers returned by Get are invalidated by Alloc; handles are not.
type Arena[T any] struct {
	slots []slot[T]
	free  []Handle
	used  int
}

// NewArena creates an arena sized for capacity live slots.
func NewArena[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}

	// slot 0 backs Nil and is never handed out
	return &Arena[T]{
		slots: make([]slot[T], 1, capacity+1),
	}
}

// Alloc stores v in a fresh slot and returns its handle.
func (a *Arena[T]) Alloc(v T) Handle {
	a.used++

	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = slot[T]{value: v}
		return h
	}

	a.slots = append(a.slots, slot[T]{value: v})
	return Handle(len(a.slots) - 1)
}

// Free releases the slot. The slot must already be unlinked from any list.
func (a *Arena[T]) Free(h Handle) {
	if h == Nil {
		return
	}

	a.slots[h] = slot[T]{}
	a.free = append(a.free, h)
	a.used--
}

// Get returns a pointer to the value stored in the slot.
func (a *Arena[T]) Get(h Handle) *T {
	return &a.slots[h].value
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return a.used
}

// List is an ordered sequence of arena slots.
type List[T any] struct {
	arena  *Arena[T]
	head   Handle
	tail   Handle
	length int
}

// New returns an empty list whose slots live in arena.
func New[T any](arena *Arena[T]) List[T] {
	return List[T]{arena: arena}
}

// Len returns the number of slots in the list.
func (l *List[T]) Len() int {
	return l.length
}

// Front returns the first slot, or Nil if the list is empty.
func (l *List[T]) Front() Handle {
	return l.head
}

// Back returns the last slot, or Nil if the list is empty.
func (l *List[T]) Back() Handle {
	return l.tail
}

// Next returns the slot after h, or Nil at the end of the list.
func (l *List[T]) Next(h Handle) Handle {
	return l.arena.slots[h].next
}

// Prev returns the slot before h, or Nil at the start of the list.
func (l *List[T]) Prev(h Handle) Handle {
	return l.arena.slots[h].prev
}

// PushFront links h at the head of the list.
func (l *List[T]) PushFront(h Handle) {
	s := &l.arena.slots[h]
	s.prev = Nil
	s.next = l.head

	if l.head != Nil {
		l.arena.slots[l.head].prev = h
	} else {
		l.tail = h
	}

	l.head = h
	l.length++
}

// PushBack links h at the tail of the list.
func (l *List[T]) PushBack(h Handle) {
	s := &l.arena.slots[h]
	s.prev = l.tail
	s.next = Nil

	if l.tail != Nil {
		l.arena.slots[l.tail].next = h
	} else {
		l.head = h
	}

	l.tail = h
	l.length++
}

// InsertAfter links h immediately after mark, which must be in the list.
func (l *List[T]) InsertAfter(mark, h Handle) {
	if mark == l.tail {
		l.PushBack(h)
		return
	}

	next := l.arena.slots[mark].next

	s := &l.arena.slots[h]
	s.prev = mark
	s.next = next

	l.arena.slots[mark].next = h
	l.arena.slots[next].prev = h
	l.length++
}

// Remove unlinks h from the list. The slot itself stays allocated.
func (l *List[T]) Remove(h Handle) {
	s := &l.arena.slots[h]

	if s.prev != Nil {
		l.arena.slots[s.prev].next = s.next
	} else {
		l.head = s.next
	}

	if s.next != Nil {
		l.arena.slots[s.next].prev = s.prev
	} else {
		l.tail = s.prev
	}

	s.prev = Nil
	s.next = Nil
	l.length--
}

// PopFront unlinks and returns the first slot, or Nil if the list is empty.
func (l *List[T]) PopFront() Handle {
	h := l.head
	if h != Nil {
		l.Remove(h)
	}

	return h
}

// PopBack unlinks and returns the last slot, or Nil if the list is empty.
func (l *List[T]) PopBack() Handle {
	h := l.tail
	if h != Nil {
		l.Remove(h)
	}

	return h
}

// All iterates the slots from head to tail.
// The list must not be modified during iteration.
func (l *List[T]) All() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for h := l.head; h != Nil; h = l.arena.slots[h].next {
			if !yield(h) {
				return
			}
		}
	}
}

// Backward iterates the slots from tail to head.
func (l *List[T]) Backward() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for h := l.tail; h != Nil; h = l.arena.slots[h].prev {
			if !yield(h) {
				return
			}
		}
	}
}

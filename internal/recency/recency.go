// Package recency implements the recency index used by the LRU cache: a
// doubly linked list stored in a slice arena, where links are slot indices
// instead of pointers.
//
// Two sentinel slots bound the list. Head (slot 0) sits before the most
// recently used node and Tail (slot 1) after the least recently used one, so
// insert and unlink never special-case the ends.
//
// A List is not safe for concurrent use; the owning cache serializes access.
package recency

import "fmt"

// Slot addresses a node in the arena.
type Slot int32

const (
	Head Slot = 0
	Tail Slot = 1

	none Slot = -1
)

type node[K comparable] struct {
	key  K
	prev Slot
	next Slot
	used bool
}

// List is an arena-backed intrusive list of keys ordered MRU -> LRU.
type List[K comparable] struct {
	nodes []node[K]
	free  []Slot
	n     int
}

// New returns an empty list with room for hint nodes before growing.
func New[K comparable](hint int) *List[K] {
	if hint < 0 {
		hint = 0
	}
	l := &List[K]{nodes: make([]node[K], 2, hint+2)}
	l.link()
	return l
}

func (l *List[K]) link() {
	l.nodes[Head] = node[K]{prev: none, next: Tail}
	l.nodes[Tail] = node[K]{prev: Head, next: none}
}

// Len returns the number of data nodes.
func (l *List[K]) Len() int { return l.n }

// PushFront stores k in a fresh slot right after Head and returns the slot.
func (l *List[K]) PushFront(k K) Slot {
	var s Slot
	if n := len(l.free); n > 0 {
		s = l.free[n-1]
		l.free = l.free[:n-1]
		l.nodes[s] = node[K]{key: k, used: true}
	} else {
		s = Slot(len(l.nodes))
		l.nodes = append(l.nodes, node[K]{key: k, used: true})
	}
	l.insertAfter(s, Head)
	l.n++
	return s
}

// MoveToFront relinks s right after Head.
func (l *List[K]) MoveToFront(s Slot) {
	if l.nodes[Head].next == s {
		return
	}
	l.unlink(s)
	l.insertAfter(s, Head)
}

// Remove unlinks s, recycles its slot and returns the key it held.
func (l *List[K]) Remove(s Slot) K {
	l.unlink(s)
	k := l.nodes[s].key
	l.nodes[s] = node[K]{prev: none, next: none}
	l.free = append(l.free, s)
	l.n--
	return k
}

// Back returns the least recently used slot; ok is false when the list is empty.
func (l *List[K]) Back() (Slot, bool) {
	s := l.nodes[Tail].prev
	if s == Head {
		return none, false
	}
	return s, true
}

// Key returns the key stored at s.
func (l *List[K]) Key(s Slot) K { return l.nodes[s].key }

// Keys returns all keys from MRU to LRU.
func (l *List[K]) Keys() []K {
	out := make([]K, 0, l.n)
	for s := l.nodes[Head].next; s != Tail; s = l.nodes[s].next {
		out = append(out, l.nodes[s].key)
	}
	return out
}

// Reset drops every node and relinks the sentinels. Capacity of the arena is
// kept for reuse.
func (l *List[K]) Reset() {
	clear(l.nodes[2:])
	l.nodes = l.nodes[:2]
	l.free = l.free[:0]
	l.n = 0
	l.link()
}

// Check walks the list both ways and reports the first broken link.
func (l *List[K]) Check() error {
	if l.nodes[Head].prev != none || l.nodes[Tail].next != none {
		return fmt.Errorf("recency: sentinel has outer link")
	}
	count := 0
	prev := Head
	for s := l.nodes[Head].next; s != Tail; s = l.nodes[s].next {
		if s < 2 || int(s) >= len(l.nodes) {
			return fmt.Errorf("recency: slot %d out of range", s)
		}
		if !l.nodes[s].used {
			return fmt.Errorf("recency: free slot %d is linked", s)
		}
		if l.nodes[s].prev != prev {
			return fmt.Errorf("recency: slot %d prev=%d want %d", s, l.nodes[s].prev, prev)
		}
		count++
		if count > l.n {
			return fmt.Errorf("recency: cycle or length mismatch (len=%d)", l.n)
		}
		prev = s
	}
	if l.nodes[Tail].prev != prev {
		return fmt.Errorf("recency: tail prev=%d want %d", l.nodes[Tail].prev, prev)
	}
	if count != l.n {
		return fmt.Errorf("recency: walked %d nodes, len=%d", count, l.n)
	}
	if count+len(l.free)+2 != len(l.nodes) {
		return fmt.Errorf("recency: %d linked + %d free != %d slots", count, len(l.free), len(l.nodes)-2)
	}
	return nil
}

func (l *List[K]) insertAfter(s, at Slot) {
	next := l.nodes[at].next
	l.nodes[s].prev = at
	l.nodes[s].next = next
	l.nodes[next].prev = s
	l.nodes[at].next = s
}

func (l *List[K]) unlink(s Slot) {
	p, n := l.nodes[s].prev, l.nodes[s].next
	l.nodes[p].next = n
	l.nodes[n].prev = p
	l.nodes[s].prev = none
	l.nodes[s].next = none
}

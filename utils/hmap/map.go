package hmap

import "github.com/ibex-verif/ibex/utils"

// A simple implementation of a mutable hash map.
// Useful when we cannot use Go's maps directly, and we want to avoid the
// overhead of using immutable maps.

// Uses linked lists to resolve hash collisions.

type node[K, V any] struct {
	key   K
	value V
	next  *node[K, V]
}

type Map[K, V any] struct {
	hasher utils.Hasher[K]
	mp     map[uint32]*node[K, V]
	size   int
}

// Order of V and K are swapped since K can be inferred by the argument.
func NewMap[V, K any](hasher utils.Hasher[K]) *Map[K, V] {
	return &Map[K, V]{
		hasher: hasher,
		mp:     make(map[uint32]*node[K, V]),
	}
}

func (m *Map[K, V]) Set(key K, value V) {
	h := m.hasher.Hash(key)
	if snode, found := m.mp[h]; !found {
		m.mp[h] = &node[K, V]{key, value, nil}
		m.size++
	} else {
		for {
			if m.hasher.Equal(key, snode.key) {
				snode.value = value
				return
			}

			if next := snode.next; next == nil {
				// Hash collision :(
				snode.next = &node[K, V]{key, value, nil}
				m.size++
				return
			} else {
				snode = next
			}
		}
	}
}

func (m *Map[K, V]) GetOk(key K) (res V, ok bool) {
	for node := m.mp[m.hasher.Hash(key)]; node != nil; node = node.next {
		if m.hasher.Equal(key, node.key) {
			return node.value, true
		}
	}

	return
}

func (m *Map[K, V]) Get(key K) V {
	v, _ := m.GetOk(key)
	return v
}

// Delete removes the entry for key, reporting whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	h := m.hasher.Hash(key)
	var prev *node[K, V]
	for node := m.mp[h]; node != nil; node = node.next {
		if m.hasher.Equal(key, node.key) {
			if prev == nil {
				if node.next == nil {
					delete(m.mp, h)
				} else {
					m.mp[h] = node.next
				}
			} else {
				prev.next = node.next
			}
			m.size--
			return true
		}
		prev = node
	}
	return false
}

// ForEach visits every entry. Entries may be deleted during iteration;
// insertion during iteration is not supported.
func (m *Map[K, V]) ForEach(f func(key K, value V)) {
	for _, node := range m.mp {
		for ; node != nil; node = node.next {
			f(node.key, node.value)
		}
	}
}

// DeleteIf removes all entries satisfying the predicate.
func (m *Map[K, V]) DeleteIf(pred func(key K, value V) bool) {
	for h, head := range m.mp {
		var kept *node[K, V]
		var tail *node[K, V]
		for n := head; n != nil; n = n.next {
			if pred(n.key, n.value) {
				m.size--
				continue
			}
			nn := &node[K, V]{n.key, n.value, nil}
			if kept == nil {
				kept = nn
			} else {
				tail.next = nn
			}
			tail = nn
		}
		if kept == nil {
			delete(m.mp, h)
		} else {
			m.mp[h] = kept
		}
	}
}

func (m *Map[K, V]) Len() int {
	return m.size
}

// Clear drops all entries.
func (m *Map[K, V]) Clear() {
	m.mp = make(map[uint32]*node[K, V])
	m.size = 0
}

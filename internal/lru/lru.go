// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lru provides an intrusive recency list. Owners keep the *Node
// returned by PushFront so that touching or unlinking an entry is O(1).
package lru

// Node is an element of a List. The key lets the owner map back from a
// victim to its entry.
type Node[K any] struct {
	Key  K
	prev *Node[K]
	next *Node[K]
	list *List[K]
}

// Linked reports whether the node is currently in a list.
func (n *Node[K]) Linked() bool { return n != nil && n.list != nil }

// List is a doubly linked list ordered from most to least recently used.
// The zero value is an empty list. A List is not safe for concurrent use.
type List[K any] struct {
	head *Node[K]
	tail *Node[K]
	len  int
}

// Len returns the number of nodes in the list.
func (l *List[K]) Len() int { return l.len }

// PushFront adds key as the most recently used entry.
func (l *List[K]) PushFront(key K) *Node[K] {
	node := &Node[K]{Key: key}
	l.linkFront(node)
	return node
}

// MoveToFront marks node as most recently used. Unlinked nodes are
// inserted, and nodes linked into another list are moved over.
func (l *List[K]) MoveToFront(node *Node[K]) {
	if node == nil || node == l.head {
		return
	}
	if node.list != nil {
		node.list.unlink(node)
	}
	l.linkFront(node)
}

// Remove unlinks node. Removing an unlinked node is a no-op.
func (l *List[K]) Remove(node *Node[K]) {
	if node == nil || node.list != l {
		return
	}
	l.unlink(node)
}

// Oldest returns the least recently used key.
func (l *List[K]) Oldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.Key, true
}

// RemoveOldest unlinks and returns the least recently used key.
func (l *List[K]) RemoveOldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	node := l.tail
	l.unlink(node)
	return node.Key, true
}

// Walk visits keys from least to most recently used until fn returns false.
// fn must not modify the list.
func (l *List[K]) Walk(fn func(K) bool) {
	for n := l.tail; n != nil; n = n.prev {
		if !fn(n.Key) {
			return
		}
	}
}

// Clear unlinks every node.
func (l *List[K]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *List[K]) linkFront(node *Node[K]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	node.list = l
	l.len++
}

// unlink removes a node and clears its links.
func (l *List[K]) unlink(node *Node[K]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.list = nil
	l.len--
}

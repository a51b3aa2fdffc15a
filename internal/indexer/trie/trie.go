// Package trie implements the character prefix tree that serves as the term
// directory of the inverted index. It answers exact membership and prefix
// enumeration over the vocabulary.
package trie

import (
	"slices"
)

type node struct {
	keys     []rune
	children []*node
	terminal bool
	term     string
}

// child returns the child reached by r, or nil.
func (n *node) child(r rune) *node {
	i, found := slices.BinarySearch(n.keys, r)
	if !found {
		return nil
	}
	return n.children[i]
}

// childOrCreate keeps keys sorted so traversal visits children in rune order.
func (n *node) childOrCreate(r rune) *node {
	i, found := slices.BinarySearch(n.keys, r)
	if found {
		return n.children[i]
	}
	c := &node{}
	n.keys = slices.Insert(n.keys, i, r)
	n.children = slices.Insert(n.children, i, c)
	return c
}

// Trie stores the set of distinct index terms. It is not safe for concurrent
// mutation; once building is finished it may be read from many goroutines.
type Trie struct {
	root *node
	size int
}

func New() *Trie {
	return &Trie{root: &node{}}
}

// Insert adds term to the trie. Inserting an existing term has no effect.
func (t *Trie) Insert(term string) {
	if term == "" {
		return
	}
	n := t.root
	for _, r := range term {
		n = n.childOrCreate(r)
	}
	if !n.terminal {
		t.size++
	}
	n.terminal = true
	n.term = term
}

// Contains reports whether term was previously inserted.
func (t *Trie) Contains(term string) bool {
	if term == "" {
		return false
	}
	n := t.walk(term)
	return n != nil && n.terminal
}

// WithPrefix returns every term starting with prefix in ascending rune
// order. An empty prefix returns the whole vocabulary.
func (t *Trie) WithPrefix(prefix string) []string {
	n := t.walk(prefix)
	if n == nil {
		return []string{}
	}
	terms := make([]string, 0)
	collect(n, &terms)
	return terms
}

// First returns the first term WithPrefix would return without collecting
// the rest of the subtree.
func (t *Trie) First(prefix string) (string, bool) {
	n := t.walk(prefix)
	for n != nil {
		if n.terminal {
			return n.term, true
		}
		if len(n.children) == 0 {
			break
		}
		n = n.children[0]
	}
	return "", false
}

// Len returns the number of distinct terms.
func (t *Trie) Len() int {
	return t.size
}

func (t *Trie) walk(prefix string) *node {
	n := t.root
	for _, r := range prefix {
		n = n.child(r)
		if n == nil {
			return nil
		}
	}
	return n
}

func collect(n *node, terms *[]string) {
	if n.terminal {
		*terms = append(*terms, n.term)
	}
	for _, c := range n.children {
		collect(c, terms)
	}
}

// Package autocomplete keeps an in-memory prefix index of product and brand
// names.
package autocomplete

import (
	"sort"
	"strings"
	"sync"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Entry is one product as seen by the index.
type Entry struct {
	ProductID int
	Name      string
	BrandName string
}

type node struct {
	children map[rune]*node
	// display form -> number of entries contributing it
	terms map[string]int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Index is a concurrency-safe prefix trie. Keys are lowercased; the
// original spelling is returned by Search.
type Index struct {
	mu      sync.RWMutex
	root    *node
	entries map[int]Entry
}

func New() *Index {
	return &Index{root: newNode(), entries: make(map[int]Entry)}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Insert adds or replaces the entry for e.ProductID.
func (x *Index) Insert(e Entry) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.insertLocked(e)
}

func (x *Index) insertLocked(e Entry) {
	if old, ok := x.entries[e.ProductID]; ok {
		x.removeLocked(old)
	}
	x.entries[e.ProductID] = e
	addTerm(x.root, e.Name)
	addTerm(x.root, e.BrandName)
}

// Remove drops the product; its brand stays while other products use it.
func (x *Index) Remove(productID int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.entries[productID]; ok {
		x.removeLocked(e)
	}
}

func (x *Index) removeLocked(e Entry) {
	delete(x.entries, e.ProductID)
	removeTerm(x.root, e.Name)
	removeTerm(x.root, e.BrandName)
}

// Rebuild replaces the whole index.
func (x *Index) Rebuild(entries []Entry) {
	fresh := &Index{root: newNode(), entries: make(map[int]Entry, len(entries))}
	for _, e := range entries {
		fresh.insertLocked(e)
	}
	x.mu.Lock()
	x.root, x.entries = fresh.root, fresh.entries
	x.mu.Unlock()
}

// Len returns the number of indexed products.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Search returns up to limit distinct names starting with prefix, sorted
// case-insensitively.
func (x *Index) Search(prefix string, limit int) []string {
	key := normalize(prefix)
	if key == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	x.mu.RLock()
	n := x.root
	for _, r := range key {
		n = n.children[r]
		if n == nil {
			x.mu.RUnlock()
			return []string{}
		}
	}
	var found []string
	collect(n, &found)
	x.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		a, b := strings.ToLower(found[i]), strings.ToLower(found[j])
		if a != b {
			return a < b
		}
		return found[i] < found[j]
	})
	if len(found) > limit {
		found = found[:limit]
	}
	return found
}

func collect(n *node, out *[]string) {
	for term := range n.terms {
		*out = append(*out, term)
	}
	for _, c := range n.children {
		collect(c, out)
	}
}

func addTerm(root *node, display string) {
	display = strings.TrimSpace(display)
	key := normalize(display)
	if key == "" {
		return
	}
	n := root
	for _, r := range key {
		c := n.children[r]
		if c == nil {
			c = newNode()
			n.children[r] = c
		}
		n = c
	}
	if n.terms == nil {
		n.terms = make(map[string]int)
	}
	n.terms[display]++
}

func removeTerm(root *node, display string) {
	display = strings.TrimSpace(display)
	key := []rune(normalize(display))
	if len(key) == 0 {
		return
	}
	path := make([]*node, 0, len(key)+1)
	n := root
	path = append(path, n)
	for _, r := range key {
		n = n.children[r]
		if n == nil {
			return
		}
		path = append(path, n)
	}
	if n.terms[display] <= 1 {
		delete(n.terms, display)
	} else {
		n.terms[display]--
	}
	// prune empty branches bottom-up
	for i := len(path) - 1; i > 0; i-- {
		cur := path[i]
		if len(cur.terms) > 0 || len(cur.children) > 0 {
			break
		}
		delete(path[i-1].children, key[i-1])
	}
}

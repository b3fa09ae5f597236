package oas

import (
	"sort"

	"github.com/pkg/errors"
)

// Node is one mapping of the document tree. Values are scalars, nested
// Node values, or []any sequences.
type Node map[string]any

// AsNode returns v as a Node when it holds a mapping.
func AsNode(v any) (Node, bool) {
	switch m := v.(type) {
	case Node:
		return m, m != nil
	case map[string]any:
		return Node(m), m != nil
	}
	return nil, false
}

// Child returns the mapping stored under key, creating an empty one when the
// key is absent or does not hold a mapping.
func Child(n Node, key string) Node {
	if child, ok := AsNode(n[key]); ok {
		n[key] = child
		return child
	}
	child := Node{}
	n[key] = child
	return child
}

// ChildList returns the sequence stored under key, creating an empty one when
// the key is absent or does not hold a sequence.
//
// The returned slice must not be appended to directly: appends are written
// back through ItemAt so that every view sees them.
func ChildList(n Node, key string) []any {
	if list, ok := n[key].([]any); ok {
		return list
	}
	list := []any{}
	n[key] = list
	return list
}

// ItemAt returns the i-th mapping of the sequence stored under key. Indexing
// with the current length appends a new empty mapping; any other index past
// the end fails with ErrIndexOutOfRange.
func ItemAt(n Node, key string, i int) (Node, error) {
	list := ChildList(n, key)

	switch {
	case i == len(list):
		item := Node{}
		n[key] = append(list, item)
		return item, nil

	case i >= 0 && i < len(list):
		item, ok := AsNode(list[i])
		if !ok {
			item = Node{}
		}
		list[i] = item
		return item, nil
	}

	return nil, errors.Wrapf(ErrIndexOutOfRange, "%s[%d] with length %d", key, i, len(list))
}

func stringAt(n Node, key string) string {
	s, _ := n[key].(string)
	return s
}

func boolAt(n Node, key string) bool {
	b, _ := n[key].(bool)
	return b
}

func stringsAt(n Node, key string) []string {
	switch v := n[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package model

import (
	"encoding/json"
	"strings"
)

// TagList is an ordered sequence of free-form labels. It behaves like a set
// on insert (duplicates are ignored) but keeps insertion order, and it is
// edited locally in a form before being submitted as a whole.
type TagList []string

// Contains reports whether v is already in the list.
func (l TagList) Contains(v string) bool {
	for _, existing := range l {
		if existing == v {
			return true
		}
	}
	return false
}

// Add appends v after trimming it. Empty and duplicate values are ignored;
// the return value reports whether the list changed.
func (l *TagList) Add(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || l.Contains(v) {
		return false
	}
	*l = append(*l, v)
	return true
}

// Remove deletes the entry at index i and keeps the rest in order.
// Out-of-range indexes are ignored.
func (l *TagList) Remove(i int) bool {
	if i < 0 || i >= len(*l) {
		return false
	}
	next := make(TagList, 0, len(*l)-1)
	next = append(next, (*l)[:i]...)
	next = append(next, (*l)[i+1:]...)
	*l = next
	return true
}

// MarshalJSON writes an empty array rather than null, so clearing every tag
// in a form actually clears them on the server.
func (l TagList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

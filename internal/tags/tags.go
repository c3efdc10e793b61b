// Package tags holds the metadata a screenshot is filed under: one category
// from a fixed list and up to MaxTags free-form tags.
package tags

import (
	"slices"
	"strings"
)

const MaxTags = 5

var categories = []string{"research", "design", "bug", "feedback"}

func Categories() []string {
	return slices.Clone(categories)
}

func ValidCategory(category string) bool {
	return slices.Contains(categories, category)
}

// Normalize trims a tag and replaces each inner whitespace run with "-".
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), "-")
}

// Set is an ordered list of unique, normalized tags capped at MaxTags.
// The zero value is ready to use.
type Set struct {
	values []string
}

func NewSet(values ...string) *Set {
	s := &Set{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add appends raw after normalization. Empty tags, duplicates and additions
// past MaxTags are ignored and reported as false.
func (s *Set) Add(raw string) bool {
	tag := Normalize(raw)
	if tag == "" || s.Full() || slices.Contains(s.values, tag) {
		return false
	}
	s.values = append(s.values, tag)
	return true
}

func (s *Set) Remove(tag string) bool {
	idx := slices.Index(s.values, tag)
	if idx < 0 {
		return false
	}
	s.values = slices.Delete(s.values, idx, idx+1)
	return true
}

func (s *Set) Values() []string {
	return slices.Clone(s.values)
}

func (s *Set) Len() int {
	return len(s.values)
}

func (s *Set) Full() bool {
	return len(s.values) >= MaxTags
}

func (s *Set) Reset() {
	s.values = nil
}

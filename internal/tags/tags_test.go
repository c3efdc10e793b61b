package tags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "login-page", Normalize("  login   page "))
	assert.Equal(t, "a-b-c", Normalize("a\tb\nc"))
	assert.Equal(t, "", Normalize(" \t "))
}

func TestSetCapAndDedup(t *testing.T) {
	s := NewSet("ui", "crash", "ui", "  ", "login page")
	assert.Equal(t, []string{"ui", "crash", "login-page"}, s.Values())

	assert.False(t, s.Add(" login  page "), "normalized duplicate")
	assert.True(t, s.Add("4"))
	assert.True(t, s.Add("5"))
	assert.True(t, s.Full())

	assert.False(t, s.Add("6"))
	assert.False(t, s.Add("ui"))
	assert.Equal(t, MaxTags, s.Len())

	assert.True(t, s.Remove("crash"))
	assert.False(t, s.Remove("crash"))
	assert.True(t, s.Add("6"))
	assert.Equal(t, []string{"ui", "login-page", "4", "5", "6"}, s.Values())
}

func TestSetNeverExceedsCap(t *testing.T) {
	var s Set
	for i := 0; i < 50; i++ {
		s.Add(fmt.Sprintf("tag %d", i%7))
		assert.LessOrEqual(t, s.Len(), MaxTags)
	}
	seen := map[string]bool{}
	for _, v := range s.Values() {
		assert.False(t, seen[v], "duplicate %q", v)
		seen[v] = true
	}

	s.Reset()
	assert.Zero(t, s.Len())
}

func TestValuesIsACopy(t *testing.T) {
	s := NewSet("a")
	v := s.Values()
	v[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Values())
}

func TestCategories(t *testing.T) {
	assert.True(t, ValidCategory("bug"))
	assert.False(t, ValidCategory("Bug"))
	assert.False(t, ValidCategory(""))
	assert.Len(t, Categories(), 4)
}

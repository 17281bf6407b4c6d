package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New(".js", ".mjs")
	s.Add(".cjs")
	s.Add(".js")

	assert.True(t, s.Has(".cjs"))
	assert.False(t, s.Has(".css"))
	assert.Equal(t, 3, s.Len())

	s.Delete(".mjs")
	assert.Equal(t, []string{".cjs", ".js"}, Sorted(s))
}

func TestSorted_Empty(t *testing.T) {
	assert.Empty(t, Sorted(New[string]()))
}

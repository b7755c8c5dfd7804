package stoplist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"simple", "this,is,a", []string{"a", "is", "this"}},
		{"trims and lowercases", " The , AND,of ", []string{"and", "of", "the"}},
		{"drops blank entries", "a,,b, ,", []string{"a", "b"}},
		{"duplicates collapse", "x,X, x", []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw).All())
		})
	}
}

func TestSetFilter(t *testing.T) {
	s := Parse("the,a")
	got := s.Filter([]string{"the", "quick", "a", "fox", "the"})
	assert.Equal(t, []string{"quick", "fox"}, got)
	assert.True(t, s.IsStop("the"))
	assert.False(t, s.IsStop("The"), "set holds normalized words only")
}

func TestHolderReplacesClearsOld(t *testing.T) {
	h := NewHolder("old")
	require.True(t, h.Words().IsStop("old"))

	h.Set("new")
	assert.False(t, h.Words().IsStop("old"), "old stopword should be gone after replace")
	assert.True(t, h.Words().IsStop("new"))
	assert.Equal(t, "new", h.Raw())

	h.Set("")
	assert.Empty(t, h.Words())
	assert.Equal(t, "", h.Raw())
}

func TestHolderZeroValue(t *testing.T) {
	var h Holder
	assert.Empty(t, h.Words())
	assert.Equal(t, "", h.Raw())
}

func TestHolderConcurrentAccess(t *testing.T) {
	h := NewHolder("a,b")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h.Set("a,b")
				h.Set("c")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				w := h.Words()
				// Either snapshot, never a mix.
				if w.IsStop("c") {
					assert.False(t, w.IsStop("a"))
				} else {
					assert.True(t, w.IsStop("a") && w.IsStop("b"))
				}
			}
		}()
	}
	wg.Wait()
}

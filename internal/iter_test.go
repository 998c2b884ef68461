package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	seq := IterSeq2Concat(
		slices.All([]string{"a", "b"}),
		slices.All([]string{}),
		slices.All([]string{"c"}),
	)

	keys := []int{}
	values := []string{}
	for key, value := range seq {
		keys = append(keys, key)
		values = append(values, value)
	}
	assert.Equal([]int{0, 1, 0}, keys)
	assert.Equal([]string{"a", "b", "c"}, values)

	// Later entries win when collected.
	merged := maps.Collect(IterSeq2Concat(
		maps.All(map[string]int{"x": 1, "y": 2}),
		maps.All(map[string]int{"x": 3}),
	))
	assert.Equal(map[string]int{"x": 3, "y": 2}, merged)

	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)

	empty := 0
	for range IterSeq2Concat[int, int]() {
		empty++
	}
	assert.Equal(0, empty)
}

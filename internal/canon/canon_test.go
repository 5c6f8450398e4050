package canon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pj4239460/story-graph-assistant/internal/canon"
)

func TestHash_DeterministicForEquivalentMaps(t *testing.T) {
	t.Parallel()

	a := map[string]interface{}{"b": 1, "a": 2, "c": []interface{}{1, 2, 3}}
	b := map[string]interface{}{"a": 2, "c": []interface{}{1, 2, 3}, "b": 1}

	assert.Equal(t, canon.Hash(a), canon.Hash(b), "key order in a Go map must not affect the canonical hash")
}

func TestHash_DifferentValuesProduceDifferentHashes(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, canon.Hash(map[string]int{"x": 1}), canon.Hash(map[string]int{"x": 2}))
}

func TestHash_ArrayOrderIsSignificant(t *testing.T) {
	t.Parallel()

	a := []int{1, 2, 3}
	b := []int{3, 2, 1}
	assert.NotEqual(t, canon.Hash(a), canon.Hash(b), "array order is part of the canonical encoding")
}

func TestMarshal_UnmarshalableValueErrors(t *testing.T) {
	t.Parallel()

	_, err := canon.Marshal(make(chan int))
	assert.Error(t, err)
}

func TestHash_UnmarshalableValueReturnsSentinel(t *testing.T) {
	t.Parallel()

	h := canon.Hash(make(chan int))
	assert.Contains(t, h, "error:")
}

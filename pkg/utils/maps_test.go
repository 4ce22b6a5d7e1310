package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeStringMapsLaterWins(t *testing.T) {
	merged := MergeStringMaps(
		map[string]string{"a": "1", "b": "2"},
		map[string]string{"b": "3", "c": "4"})

	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, merged)
}

func TestMergeStringMapsAllocatesFreshMap(t *testing.T) {
	orig := map[string]string{"a": "1"}
	merged := MergeStringMaps(orig)
	merged["b"] = "2"

	assert.NotContains(t, orig, "b")
}

func TestFirstNonZero(t *testing.T) {
	assert.Equal(t, 5, FirstNonZero(0, 5, 10))
	assert.Equal(t, 3, FirstNonZero(3))
	assert.Equal(t, 0, FirstNonZero(0, 0))
}

package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBFAddAndExists(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.BFReserve("filter", 0.01, 1000))

	isNew, err := s.BFAdd("filter", "hello")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = s.BFAdd("filter", "hello")
	require.NoError(t, err)
	assert.False(t, isNew, "adding the same item twice is not new the second time")

	exists, err := s.BFExists("filter", "hello")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.BFExists("filter", "never-added")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBFMAddAndMExists(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.BFReserve("filter", 0.01, 1000))

	results, err := s.BFMAdd("filter", []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, results)

	exists, err := s.BFMExists("filter", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, exists)
}

func TestBFCard(t *testing.T) {
	s := NewStore(0)

	count, err := s.BFCard("missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "a filter that was never created has cardinality 0")

	require.NoError(t, s.BFReserve("filter", 0.01, 1000))
	s.BFAdd("filter", "x")
	s.BFAdd("filter", "y")

	count, err = s.BFCard("filter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBFInfoReportsObservedErrorRate(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.BFReserve("filter", 0.01, 100))

	for i := 0; i < 50; i++ {
		s.BFAdd("filter", fmt.Sprintf("item-%d", i))
	}

	info, err := s.BFInfo("filter")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), info.Capacity)
	assert.Greater(t, info.ActualErrorRate, 0.0)
	assert.Less(t, info.ActualErrorRate, 1.0)
}

func TestBFReserveRejectsExistingKey(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.BFReserve("filter", 0.01, 100))
	err := s.BFReserve("filter", 0.01, 100)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

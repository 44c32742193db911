package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPFAddCreatesKeyAndReportsChange(t *testing.T) {
	s := NewStore(0)

	changed, err := s.PFAdd("hll", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.PFAdd("hll", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.False(t, changed, "re-adding the same elements touches no register")
}

func TestPFCountEstimatesWithinTolerance(t *testing.T) {
	s := NewStore(0)

	const n = 2000
	elements := make([]string, n)
	for i := 0; i < n; i++ {
		elements[i] = fmt.Sprintf("element-%d", i)
	}
	_, err := s.PFAdd("hll", elements)
	require.NoError(t, err)

	count, err := s.PFCount([]string{"hll"})
	require.NoError(t, err)

	// HyperLogLog is an estimator, not an exact counter; allow generous slack.
	assert.InEpsilon(t, n, float64(count), 0.1)
}

func TestPFCountMissingKeyIsZero(t *testing.T) {
	s := NewStore(0)
	count, err := s.PFCount([]string{"missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPFMergeUnionsSources(t *testing.T) {
	s := NewStore(0)
	_, addErrA := s.PFAdd("a", []string{"x", "y", "z"})
	require.NoError(t, addErrA)
	_, addErrB := s.PFAdd("b", []string{"y", "z", "w"})
	require.NoError(t, addErrB)

	require.NoError(t, s.PFMerge("dest", []string{"a", "b"}))

	count, countErr := s.PFCount([]string{"dest"})
	require.NoError(t, countErr)
	assert.InEpsilon(t, 4, float64(count), 0.5)

	union, unionErr := s.PFCount([]string{"a", "b"})
	require.NoError(t, unionErr)
	assert.Equal(t, count, union, "PFMerge's destination matches the live union of its sources")
}

func TestPFDebugRegistersLengthMatchesPrecision(t *testing.T) {
	s := NewStore(0)
	_, addErr := s.PFAdd("hll", []string{"a"})
	require.NoError(t, addErr)

	regs, err := s.PFDebugRegisters("hll")
	require.NoError(t, err)
	assert.Len(t, regs, 1<<DefaultPrecision)
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBitGetBit(t *testing.T) {
	s := NewStore(0)

	old, err := s.SetBit("mykey", 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, old)

	bit, err := s.GetBit("mykey", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, bit)

	bit, err = s.GetBit("mykey", 100)
	require.NoError(t, err)
	assert.Equal(t, 0, bit, "bits past the end of the string read as 0")
}

func TestBitCount(t *testing.T) {
	s := NewStore(0)
	s.data["mykey"] = &Value{Data: "foobar", Type: StringType}

	count, err := s.BitCount("mykey", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(26), count)

	start, end := int64(1), int64(1)
	count, err = s.BitCount("mykey", &start, &end)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestBitOpAnd(t *testing.T) {
	s := NewStore(0)
	s.data["a"] = &Value{Data: "abc", Type: StringType}
	s.data["b"] = &Value{Data: "abd", Type: StringType}

	n, err := s.BitOpAnd("dest", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	dest := s.data["dest"].Data.(string)
	assert.Equal(t, byte('a'&'a'), dest[0])
	assert.Equal(t, byte('b'&'b'), dest[1])
	assert.Equal(t, byte('c'&'d'), dest[2])
}

func TestBitFieldSetAndGet(t *testing.T) {
	s := NewStore(0)

	ops := []BitFieldOp{
		{Op: "SET", Signed: false, Bits: 8, Offset: 0, Value: 255, Overflow: "WRAP"},
		{Op: "GET", Signed: false, Bits: 8, Offset: 0},
	}
	results, err := s.BitField("bf", ops)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(0), results[0]) // old value before the SET
	assert.Equal(t, int64(255), results[1])
}

func TestBitFieldIncrByOverflowWrap(t *testing.T) {
	s := NewStore(0)

	ops := []BitFieldOp{
		{Op: "SET", Signed: false, Bits: 8, Offset: 0, Value: 250, Overflow: "WRAP"},
		{Op: "INCRBY", Signed: false, Bits: 8, Offset: 0, Value: 10, Overflow: "WRAP"},
	}
	results, err := s.BitField("bf", ops)
	require.NoError(t, err)
	assert.Equal(t, int64(4), results[1], "250+10 wraps around a u8 field to 4")
}

func TestBitFieldIncrByOverflowFail(t *testing.T) {
	s := NewStore(0)

	ops := []BitFieldOp{
		{Op: "SET", Signed: false, Bits: 8, Offset: 0, Value: 250, Overflow: "WRAP"},
		{Op: "INCRBY", Signed: false, Bits: 8, Offset: 0, Value: 10, Overflow: "FAIL"},
	}
	results, err := s.BitField("bf", ops)
	require.NoError(t, err)
	assert.Nil(t, results[1], "an overflowing INCRBY under FAIL reports nil instead of wrapping")
}

func TestBitFieldSignedReadback(t *testing.T) {
	s := NewStore(0)

	ops := []BitFieldOp{
		{Op: "SET", Signed: true, Bits: 8, Offset: 0, Value: -1, Overflow: "WRAP"},
		{Op: "GET", Signed: true, Bits: 8, Offset: 0},
	}
	results, err := s.BitField("bf", ops)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), results[1])
}

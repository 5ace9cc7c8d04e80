package runtimemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeInt_RoundTrips(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -42} {
		assert.Equal(t, n, DecodeInt(EncodeInt(n)))
	}
}

func TestFormat_IntsAndBooleans(t *testing.T) {
	assert.Equal(t, "7", Format(EncodeInt(7), nil))
	assert.Equal(t, "-3", Format(EncodeInt(-3), nil))
	assert.Equal(t, "true", Format(SnakeTrue, nil))
	assert.Equal(t, "false", Format(SnakeFalse, nil))
}

func TestFormat_ClosurePrintsPlaceholder(t *testing.T) {
	assert.Contains(t, Format(ClosureTag|0x10, nil), "<closure>")
}

// TestFormat_ArrayLayoutMatchesCodegen exercises the same
// [classID-or-0, 2*len, elem0, elem1, ...] heap layout that
// compileArrayLiteral emits: word 0 holds the class tag (0 for a
// plain array literal), word 1 holds the tagged length, and the
// elements follow starting at byte offset 16.
func TestFormat_ArrayLayoutMatchesCodegen(t *testing.T) {
	heap := Heap{
		0,                // classID-or-0
		EncodeInt(3),     // 2*len encoding of length 3
		EncodeInt(10),    // elem 0
		EncodeInt(20),    // elem 1
		EncodeInt(30),    // elem 2
	}
	addr := ArrayTag // array starts at byte 0, tagged
	assert.Equal(t, "[10, 20, 30]", Format(addr, heap))
}

func TestFormat_SelfReferentialArrayPrintsLoopInsteadOfRecursing(t *testing.T) {
	// A one-element array whose sole element points back at itself.
	heap := Heap{
		0,
		EncodeInt(1),
		ArrayTag, // elem 0 is the array's own tagged address
	}
	assert.Equal(t, "[<loop>]", Format(ArrayTag, heap))
}

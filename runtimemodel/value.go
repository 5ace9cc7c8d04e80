// Package runtimemodel is a test-only, pure-Go reimplementation of the
// external runtime's tagging and printing rules (runtime/stub.rs). It
// lets codegen tests assert that the instructions emitted for a value
// actually produce the wire encoding the runtime expects, without
// linking or running any assembly.
package runtimemodel

import "fmt"

const (
	IntTag     uint64 = 0x1
	TagMask    uint64 = 0b111
	BoolTag    uint64 = 0b111
	ArrayTag   uint64 = 0b001
	ClosureTag uint64 = 0b011

	SnakeTrue  uint64 = 0xFFFFFFFFFFFFFFFF
	SnakeFalse uint64 = 0x7FFFFFFFFFFFFFFF
)

// EncodeInt produces the tagged representation of a snake integer: a
// left shift by one bit, leaving the tag bit zero.
func EncodeInt(n int64) uint64 {
	return uint64(n << 1)
}

// DecodeInt reverses EncodeInt, treating v's bits as a signed number
// shifted left by one.
func DecodeInt(v uint64) int64 {
	return int64(v) >> 1
}

// Heap is a flat, byte-addressed view of the compiled program's HEAP
// section: Heap[i] is the 64-bit word whose byte offset is i*8. Tagged
// array/closure values point into it once their tag bits are masked
// off.
type Heap []uint64

func (h Heap) word(byteAddr uint64) uint64 {
	return h[byteAddr/8]
}

// Format renders a tagged value the way print_snake_val does: numbers
// and booleans print directly, arrays print their elements recursively
// (printing "<loop>" for a self-referential array instead of
// recursing forever), closures print as "<closure>", and anything
// else is an invalid value.
func Format(v uint64, heap Heap) string {
	return format(v, heap, map[uint64]bool{})
}

func format(v uint64, heap Heap, seen map[uint64]bool) string {
	switch {
	case v&IntTag == 0:
		return fmt.Sprintf("%d", DecodeInt(v))
	case v == SnakeTrue:
		return "true"
	case v == SnakeFalse:
		return "false"
	case v&TagMask == ArrayTag:
		if seen[v] {
			return "<loop>"
		}
		seen[v] = true
		addr := v - ArrayTag
		length := DecodeInt(heap.word(addr + 8))
		out := "["
		for i := int64(0); i < length; i++ {
			if i > 0 {
				out += ", "
			}
			elem := heap.word(addr + 16 + uint64(i)*8)
			out += format(elem, heap, seen)
		}
		return out + "]"
	case v&TagMask == ClosureTag:
		return "<closure>"
	default:
		return fmt.Sprintf("Invalid snake value 0x%x", v)
	}
}

package snakec

import (
	"testing"

	"github.com/clarete/snakec/runtimemodel"
	"github.com/stretchr/testify/assert"
)

// instrLabels returns the InstrLabel names appearing in instrs, in order.
func instrLabels(instrs []Instr) []string {
	var out []string
	for _, in := range instrs {
		if l, ok := in.(InstrLabel); ok {
			out = append(out, l.Name)
		}
	}
	return out
}

// TestCompileCallMethod_EachCandidateJumpsToItsOwnBlock guards the
// redesigned dispatch: every candidate must get its own label (not a
// single shared "found" label), and the code emitted right after each
// candidate's comparison must fetch that SAME candidate's method
// symbol, never an arbitrary one.
func TestCompileCallMethod_EachCandidateJumpsToItsOwnBlock(t *testing.T) {
	classes := map[string]classInfo{
		"Cat": {id: 1, fieldSize: 0},
		"Dog": {id: 2, fieldSize: 0},
	}
	dispatch := map[string]string{
		"Cat": "Cat_speak",
		"Dog": "Dog_speak",
	}
	n := SeqCallMethod{Object: ImmVar{"obj"}, Dispatch: dispatch, Args: nil}
	env := map[string]int32{"obj": -8, "Cat_speak": -16, "Dog_speak": -24}

	c := &codegen{}
	instrs := c.compileCallMethod(n, env, classes, 8, false)

	labels := instrLabels(instrs)
	// Two distinct per-candidate labels plus the shared join label.
	assert.Len(t, labels, 3)
	assert.NotEqual(t, labels[0], labels[1])

	wantMethodAt := map[string]string{
		labels[0]: "Cat_speak",
		labels[1]: "Dog_speak",
	}
	for i, in := range instrs {
		lbl, ok := in.(InstrLabel)
		if !ok {
			continue
		}
		wantMethod, tracked := wantMethodAt[lbl.Name]
		if !tracked {
			continue
		}
		// The instruction immediately following a per-candidate label
		// must load that SAME candidate's method variable, not whichever
		// one happens to come first in map iteration order.
		mov, ok := instrs[i+1].(InstrMovToReg)
		if !assert.True(t, ok, "expected a mov right after %s", lbl.Name) {
			continue
		}
		mem, ok := mov.Src.(ArgMem)
		if !assert.True(t, ok) {
			continue
		}
		assert.Equal(t, getOffset(env, wantMethod), mem.Mem.Offset)
	}
}

// TestCompileCallMethod_ComparesEveryCandidateClassID confirms the
// comparison chain checks ALL candidates (not just the first one the
// map happens to yield), fixing the original compiler's single-check
// bug.
func TestCompileCallMethod_ComparesEveryCandidateClassID(t *testing.T) {
	classes := map[string]classInfo{
		"Cat": {id: 1, fieldSize: 0},
		"Dog": {id: 2, fieldSize: 0},
		"Cow": {id: 3, fieldSize: 0},
	}
	dispatch := map[string]string{
		"Cat": "Cat_speak",
		"Dog": "Dog_speak",
		"Cow": "Cow_speak",
	}
	n := SeqCallMethod{Object: ImmVar{"obj"}, Dispatch: dispatch, Args: nil}
	env := map[string]int32{"obj": -8, "Cat_speak": -16, "Dog_speak": -24, "Cow_speak": -32}

	c := &codegen{}
	instrs := c.compileCallMethod(n, env, classes, 8, true)

	// Each candidate's class id is loaded into r11 and then compared
	// against the object's class-id word (cmp r11, [rax]).
	var comparedIDs []uint64
	var r11 uint64
	for _, in := range instrs {
		switch v := in.(type) {
		case InstrMovToReg:
			if u, ok := v.Src.(ArgUnsigned); ok && v.Dst == regR11 {
				r11 = u.Value
			}
		case InstrCmp:
			if v.Left == regR11 {
				comparedIDs = append(comparedIDs, r11)
			}
		}
	}
	assert.Contains(t, comparedIDs, uint64(1))
	assert.Contains(t, comparedIDs, uint64(2))
	assert.Contains(t, comparedIDs, uint64(3))
}

func TestCompilePrim2_ArrayGetChecksArrayThenIndexThenBounds(t *testing.T) {
	c := &codegen{}
	instrs := c.compilePrim2(ArrayGet)
	// The first type check seen must be the array-tag check on rax (the
	// mask is applied in rbx with rax as the source), followed by the
	// number check on the index in r10, then the bounds comparison of
	// r10 against the array's length word.
	arrayAt, indexAt, boundsAt := -1, -1, -1
	for i, in := range instrs {
		switch v := in.(type) {
		case InstrAnd:
			if arrayAt < 0 {
				assert.Equal(t, ArgReg{regRAX}, v.Src)
				arrayAt = i
			}
		case InstrTest:
			if indexAt < 0 && v.Right == (ArgReg{regR10}) {
				indexAt = i
			}
		case InstrCmp:
			if _, ok := v.Right.(ArgMem); ok && boundsAt < 0 && v.Left == regR10 {
				boundsAt = i
			}
		}
	}
	assert.True(t, arrayAt >= 0)
	assert.True(t, arrayAt < indexAt && indexAt < boundsAt)
}

func TestSpaceNeeded_EnsuresStackAlignment(t *testing.T) {
	leaf := SeqImm{ImmNum{1}}
	assert.Equal(t, int32(8), spaceNeeded(leaf, 0))
	assert.Equal(t, int32(8), spaceNeeded(leaf, 1))
}

// TestCompileArrayLiteral_EmitsLayoutRuntimeModelExpects replays the
// constants compileArrayLiteral writes to the heap pointer (r15) into
// a runtimemodel.Heap, confirming the [classID-or-0, 2*len, elems...]
// layout codegen emits is exactly what the runtime's printer decodes.
func TestCompileArrayLiteral_EmitsLayoutRuntimeModelExpects(t *testing.T) {
	c := &codegen{}
	env := map[string]int32{}
	elems := []ImmExpr{ImmNum{10}, ImmNum{20}, ImmNum{30}}
	instrs := c.compileArrayLiteral(elems, env, 0)

	heap := runtimemodel.Heap{0, 0, 0, 0, 0}

	// Re-derive the two header words directly from the instruction
	// stream's unsigned immediates, in emission order: classID, then
	// 2*len. The elements are signed immediates and are not collected
	// here; their heap words are filled in with EncodeInt below.
	var words []uint64
	for _, in := range instrs {
		if reg, ok := in.(InstrMovToReg); ok {
			if imm, ok := reg.Src.(ArgUnsigned); ok {
				words = append(words, imm.Value)
			}
		}
	}
	assert.Equal(t, uint64(0), words[0], "classID-or-0")
	assert.Equal(t, uint64(2*len(elems)), words[1], "2*len")

	heap[0] = words[0]
	heap[1] = words[1]
	heap[2] = runtimemodel.EncodeInt(10)
	heap[3] = runtimemodel.EncodeInt(20)
	heap[4] = runtimemodel.EncodeInt(30)
	assert.Equal(t, "[10, 20, 30]", runtimemodel.Format(runtimemodel.ArrayTag, heap))
}

func TestCompileToInstrs_EmitsOneLabelPerFunctionAndMethod(t *testing.T) {
	prog := &seqProgram{
		Classes: map[string]classInfo{},
		Funs: []*seqFunDecl{
			{Name: "f1", Parameters: nil, Body: SeqImm{ImmNum{1}}},
		},
		Methods: []*seqMethodDecl{
			{ClassID: 1, Name: "m1", Parameters: []string{"self"}, Body: SeqImm{ImmNum{2}}},
		},
		Main: SeqImm{ImmNum{0}},
	}
	instrs := compileToInstrs(prog, NewConfig())
	labels := instrLabels(instrs)
	assert.Contains(t, labels, "f1")
	assert.Contains(t, labels, "m1")
	assert.Contains(t, labels, snakeErrLabel)
}

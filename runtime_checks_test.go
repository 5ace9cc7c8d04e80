package snakec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckRegType_NumberUsesTestNotAnd(t *testing.T) {
	instrs := checkRegType(regRAX, typeNum, errArith)
	found := false
	for _, in := range instrs {
		if _, ok := in.(InstrTest); ok {
			found = true
		}
	}
	assert.True(t, found, "number check must use the bit-0 test, not a mask-and-compare")
}

func TestCheckRegType_ArrayUsesTagMaskAndCompare(t *testing.T) {
	instrs := checkRegType(regRAX, typeArray, errArray)
	var sawAnd, sawCmp bool
	for _, in := range instrs {
		switch v := in.(type) {
		case InstrAnd:
			sawAnd = true
		case InstrCmp:
			sawCmp = true
			assert.Equal(t, ArgUnsigned{uint64(arrayTag)}, v.Right)
		}
	}
	assert.True(t, sawAnd && sawCmp)
}

func TestCheckPrim2Type_DispatchesByOperator(t *testing.T) {
	assert.NotEmpty(t, checkPrim2Type(regRAX, Lt))
	assert.NotEmpty(t, checkPrim2Type(regRAX, Add))
	assert.NotEmpty(t, checkPrim2Type(regRAX, And))
	assert.Nil(t, checkPrim2Type(regRAX, ArrayGet))
}

func TestMethodForClass_SortsByClassIDAndPreservesEveryCandidate(t *testing.T) {
	classes := map[string]classInfo{
		"Dog_3": {id: 3, fieldSize: 0},
		"Cat_1": {id: 1, fieldSize: 0},
		"Cow_2": {id: 2, fieldSize: 0},
	}
	dispatch := map[string]string{
		"Dog_3": "Dog_3_speak_9",
		"Cat_1": "Cat_1_speak_7",
		"Cow_2": "Cow_2_speak_8",
	}

	cands := methodForClass(dispatch, classes)
	if assert.Len(t, cands, 3) {
		assert.Equal(t, 1, cands[0].ClassID)
		assert.Equal(t, 2, cands[1].ClassID)
		assert.Equal(t, 3, cands[2].ClassID)
		assert.Equal(t, "Cat_1_speak_7", cands[0].Method)
		assert.Equal(t, "Cow_2_speak_8", cands[1].Method)
		assert.Equal(t, "Dog_3_speak_9", cands[2].Method)
	}
}

func TestCheckFieldNum_NoInstructionsWhenCountsMatch(t *testing.T) {
	assert.Nil(t, checkFieldNum(2, 2))
	assert.NotEmpty(t, checkFieldNum(1, 2))
}

func TestCallError_EmitsTrampolineLabel(t *testing.T) {
	instrs := callError()
	label, ok := instrs[0].(InstrLabel)
	if assert.True(t, ok) {
		assert.Equal(t, snakeErrLabel, label.Name)
	}
	call, ok := instrs[1].(InstrCall)
	if assert.True(t, ok) {
		assert.Equal(t, JmpLabel{"snake_error"}, call.Target)
	}
}

package snakec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialize_SimpleOperandsStayInline(t *testing.T) {
	prog := NewPrim2Node(Add, NewNumNode(1, rg()), NewNumNode(2, rg()), rg())
	out, ok := Sequentialize(prog).(SeqPrim2)
	if assert.True(t, ok) {
		assert.Equal(t, ImmNum{1}, out.Left)
		assert.Equal(t, ImmNum{2}, out.Right)
	}
}

func TestSequentialize_CompoundOperandGetsLetBound(t *testing.T) {
	inner := NewPrim2Node(Add, NewNumNode(1, rg()), NewNumNode(2, rg()), rg())
	prog := NewPrim2Node(Mul, inner, NewNumNode(3, rg()), rg())

	out, ok := Sequentialize(prog).(*SeqLet)
	if assert.True(t, ok, "compound left operand should force a let binding") {
		bound, ok := out.Bound.(SeqPrim2)
		assert.True(t, ok)
		assert.Equal(t, Add, bound.Op)

		body, ok := out.Body.(SeqPrim2)
		if assert.True(t, ok) {
			assert.Equal(t, Mul, body.Op)
			assert.Equal(t, ImmVar{out.Var}, body.Left)
		}
	}
}

func TestSequentialize_SeqNodeDiscardsFirstResult(t *testing.T) {
	prog := NewSeqNode(NewPrim1Node(Print, NewNumNode(1, rg()), rg()), NewNumNode(2, rg()), rg())
	out, ok := Sequentialize(prog).(*SeqLet)
	if assert.True(t, ok) {
		_, isPrim1 := out.Bound.(SeqPrim1)
		assert.True(t, isPrim1)
		body, ok := out.Body.(SeqImm)
		if assert.True(t, ok) {
			assert.Equal(t, ImmNum{2}, body.Value)
		}
	}
}

func TestSequentialize_IfWithCompoundConditionLetBinds(t *testing.T) {
	cond := NewPrim2Node(Lt, NewNumNode(1, rg()), NewNumNode(2, rg()), rg())
	prog := NewIfNode(cond, NewNumNode(10, rg()), NewNumNode(20, rg()), rg())

	out, ok := Sequentialize(prog).(*SeqLet)
	if assert.True(t, ok) {
		body, ok := out.Body.(*SeqIf)
		if assert.True(t, ok) {
			assert.Equal(t, ImmVar{out.Var}, body.Cond)
		}
	}
}

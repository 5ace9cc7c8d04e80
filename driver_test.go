package snakec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile_WrapsBodyInFixedNasmFrame(t *testing.T) {
	prog := NewPrim2Node(Add, NewNumNode(1, rg()), NewNumNode(2, rg()), rg())
	asm, err := Compile(prog, nil)
	assert.NoError(t, err)
	assert.Contains(t, asm, "section .data")
	assert.Contains(t, asm, "HEAP:")
	assert.Contains(t, asm, "global start_here")
	assert.Contains(t, asm, "extern snake_error")
	assert.Contains(t, asm, "extern print_snake_val")
	assert.Contains(t, asm, "start_here:")
	assert.Contains(t, asm, "call main")
	assert.Contains(t, asm, "main:")
}

func TestCompile_RejectsInvalidProgramBeforeGeneratingCode(t *testing.T) {
	prog := NewVarNode("undefined", rg())
	_, err := Compile(prog, nil)
	assert.Error(t, err)
	ce, ok := err.(*CompileError)
	if assert.True(t, ok) {
		assert.Equal(t, ErrUnboundVariable, ce.Kind)
	}
}

func TestCompile_MutualRecursionThroughLambdaLiftedFunctions(t *testing.T) {
	isEven := &FunDecl{Name: "isEven", Parameters: []string{"n"}, Body: NewIfNode(
		NewPrim2Node(Eq, NewVarNode("n", rg()), NewNumNode(0, rg()), rg()),
		NewBoolNode(true, rg()),
		NewCallNode(NewVarNode("isOdd", rg()), []Expr{NewPrim2Node(Sub, NewVarNode("n", rg()), NewNumNode(1, rg()), rg())}, rg()),
		rg(),
	)}
	isOdd := &FunDecl{Name: "isOdd", Parameters: []string{"n"}, Body: NewIfNode(
		NewPrim2Node(Eq, NewVarNode("n", rg()), NewNumNode(0, rg()), rg()),
		NewBoolNode(false, rg()),
		NewCallNode(NewVarNode("isEven", rg()), []Expr{NewPrim2Node(Sub, NewVarNode("n", rg()), NewNumNode(1, rg()), rg())}, rg()),
		rg(),
	)}
	prog := NewFunDefsNode([]*FunDecl{isEven, isOdd},
		NewCallNode(NewVarNode("isEven", rg()), []Expr{NewNumNode(4, rg())}, rg()), rg())

	asm, err := Compile(prog, nil)
	assert.NoError(t, err)
	assert.Contains(t, asm, "isEven_1:")
	assert.Contains(t, asm, "isOdd_2:")
	// proper tail call: jumps through the closure's stored code pointer,
	// never falls back to a call/ret pair for the recursive call.
	assert.True(t, strings.Contains(asm, "jmp rax") || strings.Contains(asm, "jmp r10"))
}

func TestCompile_MethodDispatchAcrossTwoClasses(t *testing.T) {
	cat := &FunDecl{Name: "speak", Parameters: nil, Body: NewNumNode(1, rg())}
	dog := &FunDecl{Name: "speak", Parameters: nil, Body: NewNumNode(2, rg())}
	prog := NewClassDefNode("Cat", nil, []*FunDecl{cat},
		NewClassDefNode("Dog", nil, []*FunDecl{dog},
			NewCallMethodNode(NewObjectNode("Cat", nil, rg()), "speak", nil, rg()),
			rg()),
		rg())

	asm, err := Compile(prog, nil)
	assert.NoError(t, err)
	assert.Contains(t, asm, "check object and method type")
	assert.Contains(t, asm, "Method_done")
}

func TestDecodeAST_RoundTripsASimpleProgram(t *testing.T) {
	src := `{
		"kind": "prim2",
		"op": "+",
		"left": {"kind": "num", "value": 1},
		"right": {"kind": "num", "value": 2}
	}`
	e, err := DecodeAST([]byte(src))
	assert.NoError(t, err)
	p, ok := e.(*Prim2Node)
	if assert.True(t, ok) {
		assert.Equal(t, Add, p.Op)
		assert.Equal(t, int64(1), p.Left.(*NumNode).Value)
		assert.Equal(t, int64(2), p.Right.(*NumNode).Value)
	}
}

func TestDecodeAST_UnknownKindErrors(t *testing.T) {
	_, err := DecodeAST([]byte(`{"kind": "nonsense"}`))
	assert.Error(t, err)
}

func TestDecodeAST_ArraySetUsesNewValueNotRight(t *testing.T) {
	src := `{
		"kind": "array_set",
		"array": {"kind": "var", "name": "a"},
		"index": {"kind": "num", "value": 0},
		"new_value": {"kind": "num", "value": 99}
	}`
	e, err := DecodeAST([]byte(src))
	assert.NoError(t, err)
	n, ok := e.(*ArraySetNode)
	if assert.True(t, ok) {
		assert.Equal(t, int64(99), n.Value.(*NumNode).Value)
	}
}

func TestDecodeAST_SetFieldUsesNewValueNotRight(t *testing.T) {
	src := `{
		"kind": "set_field",
		"field": "x",
		"new_value": {"kind": "num", "value": 7}
	}`
	e, err := DecodeAST([]byte(src))
	assert.NoError(t, err)
	n, ok := e.(*SetFieldNode)
	if assert.True(t, ok) {
		assert.Equal(t, "x", n.Field)
		assert.Equal(t, int64(7), n.Value.(*NumNode).Value)
	}
}

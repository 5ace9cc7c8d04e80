package snakec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLambdaLift_SingleFunctionHoisted(t *testing.T) {
	decl := &FunDecl{Name: "f", Parameters: []string{"a"}, Body: NewVarNode("a", rg())}
	prog := NewFunDefsNode([]*FunDecl{decl}, NewCallNode(NewVarNode("f", rg()), []Expr{NewNumNode(1, rg())}, rg()), rg())

	funcs, methods, main := LambdaLift(prog)

	assert.Len(t, funcs, 1)
	assert.Empty(t, methods)
	assert.Equal(t, "f", funcs[0].Name)
	assert.Equal(t, []string{"env_f", "a"}, funcs[0].Parameters)

	letNode, ok := main.(*LetNode)
	if assert.True(t, ok, "main should be the closure-building let") {
		assert.Equal(t, "env_f", letNode.Bindings[0].Name)
		assert.Equal(t, "f", letNode.Bindings[1].Name)
		makeClosure, ok := letNode.Bindings[1].Value.(*MakeClosureNode)
		if assert.True(t, ok) {
			assert.Equal(t, "f", makeClosure.CodeLabel)
			assert.Equal(t, 1, makeClosure.Arity)
		}
	}
}

func TestLambdaLift_MethodDefsProduceMethodDecls(t *testing.T) {
	decl := &FunDecl{Name: "getX", Parameters: nil, Body: NewNumNode(0, rg())}
	prog := &MethodDefsNode{base: newBase(rg()), ClassID: 1, Decls: []*FunDecl{decl}, Body: NewNumNode(0, rg())}

	funcs, methods, _ := LambdaLift(prog)
	assert.Empty(t, funcs)
	if assert.Len(t, methods, 1) {
		assert.Equal(t, 1, methods[0].ClassID)
		assert.Equal(t, "getX", methods[0].Decl.Name)
	}
}

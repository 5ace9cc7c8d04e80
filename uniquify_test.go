package snakec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniquify_LetBindingsGetDistinctNames(t *testing.T) {
	prog := NewLetNode([]LetBinding{
		{Name: "x", Value: NewNumNode(1, rg())},
		{Name: "x", Value: NewVarNode("x", rg())},
	}, NewVarNode("x", rg()), rg())

	out := Uniquify(prog).(*LetNode)
	assert.NotEqual(t, out.Bindings[0].Name, out.Bindings[1].Name)
	assert.Equal(t, "#x_1", out.Bindings[0].Name)

	body := out.Body.(*VarNode)
	assert.Equal(t, out.Bindings[1].Name, body.Name, "body should resolve to the inner x")
}

func TestUniquify_CallMethodBecomesDispatchTable(t *testing.T) {
	prog := NewClassDefNode("Point", []string{"x"},
		[]*FunDecl{{Name: "getX", Parameters: nil, Body: NewVarNode("x", rg())}},
		NewCallMethodNode(
			NewObjectNode("Point", []Expr{NewNumNode(3, rg())}, rg()),
			"getX", nil, rg()),
		rg())

	out := Uniquify(prog).(*ClassDefNode)
	call := out.Body.(*CallUniqMethodNode)

	assert.Len(t, call.Dispatch, 1)
	method, ok := call.Dispatch[out.Name]
	assert.True(t, ok, "dispatch table should key on the uniquified class name")
	assert.Equal(t, out.Methods[0].Name, method)
}

func TestUniquify_LambdaLiftsToFunDefs(t *testing.T) {
	prog := NewLambdaNode([]string{"a"}, NewVarNode("a", rg()), rg())
	out := Uniquify(prog).(*FunDefsNode)
	assert.Len(t, out.Decls, 1)
	assert.Len(t, out.Decls[0].Parameters, 1)
}

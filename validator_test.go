package snakec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rg() Range { return Range{} }

func TestValidate_OK(t *testing.T) {
	tests := []struct {
		name string
		prog Expr
	}{
		{
			name: "literal",
			prog: NewNumNode(5, rg()),
		},
		{
			name: "let binding in scope",
			prog: NewLetNode([]LetBinding{{Name: "x", Value: NewNumNode(1, rg())}}, NewVarNode("x", rg()), rg()),
		},
		{
			name: "class with field and method",
			prog: NewClassDefNode("Point", []string{"x", "y"},
				[]*FunDecl{{Name: "sum", Parameters: nil, Body: NewVarNode("x", rg())}},
				NewObjectNode("Point", []Expr{NewNumNode(1, rg()), NewNumNode(2, rg())}, rg()),
				rg()),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, Validate(tc.prog))
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		prog     Expr
		wantKind ErrorKind
	}{
		{
			name:     "unbound variable",
			prog:     NewVarNode("y", rg()),
			wantKind: ErrUnboundVariable,
		},
		{
			name: "duplicate let binding",
			prog: NewLetNode([]LetBinding{
				{Name: "x", Value: NewNumNode(1, rg())},
				{Name: "x", Value: NewNumNode(2, rg())},
			}, NewNumNode(0, rg()), rg()),
			wantKind: ErrDuplicateBinding,
		},
		{
			name: "duplicate argument name",
			prog: NewLambdaNode([]string{"a", "a"}, NewVarNode("a", rg()), rg()),
			wantKind: ErrDuplicateArgName,
		},
		{
			name:     "overflowing literal",
			prog:     NewNumNode(maxSnakeInt+1, rg()),
			wantKind: ErrOverflow,
		},
		{
			name: "object referencing undefined class",
			prog: NewObjectNode("Ghost", nil, rg()),
			wantKind: ErrUndefinedClass,
		},
		{
			name: "object with wrong field count",
			prog: NewClassDefNode("Point", []string{"x", "y"}, nil,
				NewObjectNode("Point", []Expr{NewNumNode(1, rg())}, rg()), rg()),
			wantKind: ErrWrongFieldSize,
		},
		{
			name: "call to undeclared method",
			prog: NewClassDefNode("Point", []string{"x"}, nil,
				NewCallMethodNode(NewObjectNode("Point", []Expr{NewNumNode(1, rg())}, rg()), "missing", nil, rg()),
				rg()),
			wantKind: ErrUndefinedMethod,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.prog)
			if assert.Error(t, err) {
				ce, ok := err.(*CompileError)
				if assert.True(t, ok, "expected *CompileError") {
					assert.Equal(t, tc.wantKind, ce.Kind)
				}
			}
		})
	}
}

package snakec

import (
	"encoding/json"
	"fmt"
)

// jsonNode is the wire shape of one surface AST node: a "kind"
// discriminator (mirroring the teacher's own NodeType tag on its
// flattened parse tree, tree.go) plus a flat bag of optional fields
// shared by all kinds; each kind reads only the fields it uses and
// leaves the rest at their zero value.
type jsonNode struct {
	Kind string `json:"kind"`

	Value    *int64    `json:"value,omitempty"`
	Bool     *bool     `json:"bool,omitempty"`
	Name     string    `json:"name,omitempty"`
	Op       string    `json:"op,omitempty"`
	Operand  *jsonNode `json:"operand,omitempty"`
	Left     *jsonNode `json:"left,omitempty"`
	Right    *jsonNode `json:"right,omitempty"`
	Cond     *jsonNode `json:"cond,omitempty"`
	Then     *jsonNode `json:"then,omitempty"`
	Else     *jsonNode `json:"else,omitempty"`
	Body     *jsonNode `json:"body,omitempty"`
	Array    *jsonNode `json:"array,omitempty"`
	Index    *jsonNode `json:"index,omitempty"`
	NewValue *jsonNode `json:"new_value,omitempty"`
	First    *jsonNode `json:"first,omitempty"`
	Second   *jsonNode `json:"second,omitempty"`
	Fun      *jsonNode `json:"fun,omitempty"`
	Receiver *jsonNode `json:"receiver,omitempty"`
	Field    string    `json:"field,omitempty"`
	Method   string    `json:"method,omitempty"`
	Class    string    `json:"class,omitempty"`

	Elems      []jsonNode      `json:"elems,omitempty"`
	Args       []jsonNode      `json:"args,omitempty"`
	Fields     []jsonNode      `json:"fields,omitempty"`
	FieldNames []string        `json:"field_names,omitempty"`
	Parameters []string        `json:"parameters,omitempty"`
	Bindings   []jsonBinding   `json:"bindings,omitempty"`
	Decls      []jsonFunDecl   `json:"decls,omitempty"`
}

type jsonBinding struct {
	Name  string   `json:"name"`
	Value jsonNode `json:"value"`
}

type jsonFunDecl struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
	Body       jsonNode `json:"body"`
}

// DecodeAST parses the JSON encoding of a surface program (spec.md
// §6.5): since the surface parser is out of scope, a fixture or an
// external frontend hands the compiler a tree shaped like this file's
// jsonNode instead of source text.
func DecodeAST(data []byte) (Expr, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("ast_json: %w", err)
	}
	return root.toExpr()
}

func decodeChild(n *jsonNode) (Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("ast_json: missing required child node")
	}
	return n.toExpr()
}

func decodeFunDecl(d jsonFunDecl) (*FunDecl, error) {
	body, err := d.Body.toExpr()
	if err != nil {
		return nil, err
	}
	return &FunDecl{Name: d.Name, Parameters: d.Parameters, Body: body}, nil
}

func (n jsonNode) toExpr() (Expr, error) {
	rg := Range{}
	switch n.Kind {
	case "num":
		if n.Value == nil {
			return nil, fmt.Errorf("ast_json: num node missing value")
		}
		return NewNumNode(*n.Value, rg), nil

	case "bool":
		if n.Bool == nil {
			return nil, fmt.Errorf("ast_json: bool node missing bool")
		}
		return NewBoolNode(*n.Bool, rg), nil

	case "var":
		return NewVarNode(n.Name, rg), nil

	case "prim1":
		operand, err := decodeChild(n.Operand)
		if err != nil {
			return nil, err
		}
		return NewPrim1Node(Prim1(n.Op), operand, rg), nil

	case "prim2":
		left, err := decodeChild(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeChild(n.Right)
		if err != nil {
			return nil, err
		}
		return NewPrim2Node(Prim2(n.Op), left, right, rg), nil

	case "let":
		bindings := make([]LetBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			v, err := b.Value.toExpr()
			if err != nil {
				return nil, err
			}
			bindings[i] = LetBinding{Name: b.Name, Value: v}
		}
		body, err := decodeChild(n.Body)
		if err != nil {
			return nil, err
		}
		return NewLetNode(bindings, body, rg), nil

	case "if":
		cond, err := decodeChild(n.Cond)
		if err != nil {
			return nil, err
		}
		thn, err := decodeChild(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeChild(n.Else)
		if err != nil {
			return nil, err
		}
		return NewIfNode(cond, thn, els, rg), nil

	case "array":
		elems := make([]Expr, len(n.Elems))
		for i, e := range n.Elems {
			v, err := e.toExpr()
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return NewArrayNode(elems, rg), nil

	case "array_set":
		array, err := decodeChild(n.Array)
		if err != nil {
			return nil, err
		}
		index, err := decodeChild(n.Index)
		if err != nil {
			return nil, err
		}
		value, err := decodeChild(n.NewValue)
		if err != nil {
			return nil, err
		}
		return NewArraySetNode(array, index, value, rg), nil

	case "seq":
		first, err := decodeChild(n.First)
		if err != nil {
			return nil, err
		}
		second, err := decodeChild(n.Second)
		if err != nil {
			return nil, err
		}
		return NewSeqNode(first, second, rg), nil

	case "def":
		decls := make([]*FunDecl, len(n.Decls))
		for i, d := range n.Decls {
			fd, err := decodeFunDecl(d)
			if err != nil {
				return nil, err
			}
			decls[i] = fd
		}
		body, err := decodeChild(n.Body)
		if err != nil {
			return nil, err
		}
		return NewFunDefsNode(decls, body, rg), nil

	case "call":
		fun, err := decodeChild(n.Fun)
		if err != nil {
			return nil, err
		}
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			v, err := a.toExpr()
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return NewCallNode(fun, args, rg), nil

	case "lambda":
		body, err := decodeChild(n.Body)
		if err != nil {
			return nil, err
		}
		return NewLambdaNode(n.Parameters, body, rg), nil

	case "class":
		methods := make([]*FunDecl, len(n.Decls))
		for i, d := range n.Decls {
			fd, err := decodeFunDecl(d)
			if err != nil {
				return nil, err
			}
			methods[i] = fd
		}
		body, err := decodeChild(n.Body)
		if err != nil {
			return nil, err
		}
		return NewClassDefNode(n.Name, n.FieldNames, methods, body, rg), nil

	case "object":
		fields := make([]Expr, len(n.Fields))
		for i, f := range n.Fields {
			v, err := f.toExpr()
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		return NewObjectNode(n.Class, fields, rg), nil

	case "call_method":
		receiver, err := decodeChild(n.Receiver)
		if err != nil {
			return nil, err
		}
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			v, err := a.toExpr()
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return NewCallMethodNode(receiver, n.Method, args, rg), nil

	case "set_field":
		value, err := decodeChild(n.NewValue)
		if err != nil {
			return nil, err
		}
		return NewSetFieldNode(n.Field, value, rg), nil

	default:
		return nil, fmt.Errorf("ast_json: unknown node kind %q", n.Kind)
	}
}

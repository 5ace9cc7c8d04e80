package snakec

import "fmt"

// classInfo records the compile-time identity assigned to a class:
// its dispatch id and the width of its instance array (lift.rs's
// ClassInfo).
type classInfo struct {
	id        int
	fieldSize int
}

// fieldBinding maps a uniquified field name to the self-array
// variable that holds it and its slot index within that array.
type fieldBinding struct {
	field     string
	arrayVar  string
	index     int
}

// classLifter rewrites field reads into array_get(self, i), field
// writes into array_set(self, i, v), and desugars each ClassDefNode
// into a MethodDefsNode whose methods take the instance array as an
// explicit first parameter (lift.rs's class_lift).
type classLifter struct {
	classes map[string]classInfo
}

// ClassLift removes every ClassDefNode and SetFieldNode from a
// uniquified program, replacing them with MethodDefsNode/array
// operations, and returns the compile-time class table codegen needs
// to size and tag object literals and to resolve method dispatch. No
// CallMethodNode may remain in e; Uniquify's output already satisfies
// that.
func ClassLift(e Expr) (map[string]classInfo, Expr) {
	cl := &classLifter{classes: map[string]classInfo{}}
	lifted := cl.run(e, nil)
	return cl.classes, lifted
}

func (cl *classLifter) run(e Expr, env []fieldBinding) Expr {
	switch n := e.(type) {
	case *NumNode:
		return NewNumNode(n.Value, n.Range())

	case *BoolNode:
		return NewBoolNode(n.Value, n.Range())

	case *VarNode:
		for i := len(env) - 1; i >= 0; i-- {
			if env[i].field == n.Name {
				return NewPrim2Node(ArrayGet,
					NewVarNode(env[i].arrayVar, n.Range()),
					NewNumNode(int64(env[i].index), n.Range()),
					n.Range())
			}
		}
		return NewVarNode(n.Name, n.Range())

	case *Prim1Node:
		return NewPrim1Node(n.Op, cl.run(n.Operand, env), n.Range())

	case *Prim2Node:
		return NewPrim2Node(n.Op, cl.run(n.Left, env), cl.run(n.Right, env), n.Range())

	case *LetNode:
		bindings := make([]LetBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = LetBinding{Name: b.Name, Value: cl.run(b.Value, env)}
		}
		return &LetNode{base: newBase(n.Range()), Bindings: bindings, Body: cl.run(n.Body, env)}

	case *IfNode:
		return &IfNode{
			base: newBase(n.Range()),
			Cond: cl.run(n.Cond, env),
			Then: cl.run(n.Then, env),
			Else: cl.run(n.Else, env),
		}

	case *ArrayNode:
		elems := make([]Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = cl.run(el, env)
		}
		return &ArrayNode{base: newBase(n.Range()), Elems: elems}

	case *ArraySetNode:
		return &ArraySetNode{
			base:  newBase(n.Range()),
			Array: cl.run(n.Array, env),
			Index: cl.run(n.Index, env),
			Value: cl.run(n.Value, env),
		}

	case *SeqNode:
		return &SeqNode{base: newBase(n.Range()), First: cl.run(n.First, env), Second: cl.run(n.Second, env)}

	case *FunDefsNode:
		decls := make([]*FunDecl, len(n.Decls))
		for i, d := range n.Decls {
			decls[i] = &FunDecl{Name: d.Name, Parameters: d.Parameters, Body: cl.run(d.Body, env)}
		}
		return &FunDefsNode{base: newBase(n.Range()), Decls: decls, Body: cl.run(n.Body, env)}

	case *CallNode:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cl.run(a, env)
		}
		return &CallNode{base: newBase(n.Range()), Fun: cl.run(n.Fun, env), Args: args}

	case *ObjectNode:
		fields := make([]Expr, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = cl.run(f, env)
		}
		return &ObjectNode{base: newBase(n.Range()), Class: n.Class, Fields: fields}

	case *CallUniqMethodNode:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cl.run(a, env)
		}
		return &CallUniqMethodNode{
			base:     newBase(n.Range()),
			Receiver: cl.run(n.Receiver, env),
			Dispatch: n.Dispatch,
			Args:     args,
		}

	case *SetFieldNode:
		var fb *fieldBinding
		for i := len(env) - 1; i >= 0; i-- {
			if env[i].field == n.Field {
				fb = &env[i]
				break
			}
		}
		if fb == nil {
			panic("class lift: trying to set undeclared field as variable: " + n.Field)
		}
		return &ArraySetNode{
			base:  newBase(n.Range()),
			Array: NewVarNode(fb.arrayVar, n.Range()),
			Index: NewNumNode(int64(fb.index), n.Range()),
			Value: cl.run(n.Value, env),
		}

	case *ClassDefNode:
		classID := len(cl.classes) + 1
		cl.classes[n.Name] = classInfo{id: classID, fieldSize: len(n.Fields)}
		body := cl.run(n.Body, env)

		selfVar := fmt.Sprintf("#%s_self", n.Name)
		methodEnv := env
		for i, f := range n.Fields {
			methodEnv = append(methodEnv, fieldBinding{field: f, arrayVar: selfVar, index: i})
		}

		methods := make([]*FunDecl, len(n.Methods))
		for i, m := range n.Methods {
			params := append([]string{selfVar}, m.Parameters...)
			methods[i] = &FunDecl{
				Name:       m.Name,
				Parameters: params,
				Body:       cl.run(m.Body, methodEnv),
			}
		}

		return &MethodDefsNode{
			base:    newBase(n.Range()),
			ClassID: classID,
			Decls:   methods,
			Body:    body,
		}

	case *CallMethodNode:
		panic("class lift: CallMethod should already be resolved by uniquify")

	default:
		panic("class lift: node should not exist before class lift")
	}
}

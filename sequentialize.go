package snakec

import "fmt"

// ImmExpr is an immediate operand in A-normal form: a literal or a
// variable reference, never a compound expression (sequence.rs's
// ImmExp).
type ImmExpr interface{ isImm() }

type ImmNum struct{ Value int64 }
type ImmBool struct{ Value bool }
type ImmVar struct{ Name string }

func (ImmNum) isImm()  {}
func (ImmBool) isImm() {}
func (ImmVar) isImm()  {}

// SeqExpr is a single node of the sequentialized (A-normal form) IR:
// every primitive operand is an ImmExpr, and every compound
// sub-computation has already been let-bound to a fresh name (see
// spec.md §3.4, §4.5).
type SeqExpr interface{ isSeq() }

type SeqImm struct{ Value ImmExpr }
type SeqPrim1 struct {
	Op      Prim1
	Operand ImmExpr
}
type SeqPrim2 struct {
	Op          Prim2
	Left, Right ImmExpr
}
type SeqLet struct {
	Var   string
	Bound SeqExpr
	Body  SeqExpr
}
type SeqIf struct {
	Cond       ImmExpr
	Then, Else SeqExpr
}
type SeqArray struct{ Elems []ImmExpr }
type SeqArraySet struct {
	Array, Index, Value ImmExpr
}
type SeqCallClosure struct {
	Fun  ImmExpr
	Args []ImmExpr
}
type SeqMakeClosure struct {
	Arity int
	Label string
	Env   ImmExpr
}
type SeqObject struct {
	Class  string
	Fields []ImmExpr
}
type SeqCallMethod struct {
	Object   ImmExpr
	Dispatch map[string]string
	Args     []ImmExpr
}

func (SeqImm) isSeq()         {}
func (SeqPrim1) isSeq()       {}
func (SeqPrim2) isSeq()       {}
func (*SeqLet) isSeq()        {}
func (*SeqIf) isSeq()         {}
func (SeqArray) isSeq()       {}
func (SeqArraySet) isSeq()    {}
func (SeqCallClosure) isSeq() {}
func (SeqMakeClosure) isSeq() {}
func (SeqObject) isSeq()      {}
func (SeqCallMethod) isSeq()  {}

// sequentializer assigns the fresh temporary names a compound operand
// needs once it is let-bound. The counter lives on the struct so two
// concurrent Compile calls never collide (see uniquifier).
type sequentializer struct {
	counter int
}

func (s *sequentializer) fresh(tag string) string {
	s.counter++
	return fmt.Sprintf("#%s_%d", tag, s.counter)
}

// Sequentialize lowers a lambda-lifted expression (a function or
// method body, or the program's entry body) into A-normal form.
func Sequentialize(e Expr) SeqExpr {
	s := &sequentializer{}
	return s.run(e)
}

func simpleExprToImm(e Expr) (ImmExpr, bool) {
	switch n := e.(type) {
	case *NumNode:
		return ImmNum{n.Value}, true
	case *BoolNode:
		return ImmBool{n.Value}, true
	case *VarNode:
		return ImmVar{n.Name}, true
	default:
		return nil, false
	}
}

// bindIfCompound returns e as an ImmExpr directly when it is already
// simple, otherwise it appends (freshName, e) to *pending so the
// caller can wrap its result in a Let for that binding.
func (s *sequentializer) bindIfCompound(e Expr, tag string, pending *[]LetBinding) ImmExpr {
	if imm, ok := simpleExprToImm(e); ok {
		return imm
	}
	name := s.fresh(tag)
	*pending = append(*pending, LetBinding{Name: name, Value: e})
	return ImmVar{name}
}

func (s *sequentializer) wrapPending(pending []LetBinding, body SeqExpr) SeqExpr {
	for i := len(pending) - 1; i >= 0; i-- {
		body = &SeqLet{Var: pending[i].Name, Bound: s.run(pending[i].Value), Body: body}
	}
	return body
}

func (s *sequentializer) run(e Expr) SeqExpr {
	switch n := e.(type) {
	case *NumNode:
		return SeqImm{ImmNum{n.Value}}

	case *BoolNode:
		return SeqImm{ImmBool{n.Value}}

	case *VarNode:
		return SeqImm{ImmVar{n.Name}}

	case *Prim1Node:
		if imm, ok := simpleExprToImm(n.Operand); ok {
			return SeqPrim1{Op: n.Op, Operand: imm}
		}
		x := s.fresh("prim1")
		return &SeqLet{Var: x, Bound: s.run(n.Operand), Body: SeqPrim1{Op: n.Op, Operand: ImmVar{x}}}

	case *Prim2Node:
		imm1, ok1 := simpleExprToImm(n.Left)
		imm2, ok2 := simpleExprToImm(n.Right)
		switch {
		case ok1 && ok2:
			return SeqPrim2{Op: n.Op, Left: imm1, Right: imm2}
		case !ok1 && ok2:
			x := s.fresh("prim2_1")
			return &SeqLet{Var: x, Bound: s.run(n.Left), Body: SeqPrim2{Op: n.Op, Left: ImmVar{x}, Right: imm2}}
		case ok1 && !ok2:
			x := s.fresh("prim2_2")
			return &SeqLet{Var: x, Bound: s.run(n.Right), Body: SeqPrim2{Op: n.Op, Left: imm1, Right: ImmVar{x}}}
		default:
			x1 := s.fresh("prim2_1")
			x2 := s.fresh("prim2_2")
			return &SeqLet{Var: x1, Bound: s.run(n.Left), Body: &SeqLet{
				Var: x2, Bound: s.run(n.Right), Body: SeqPrim2{Op: n.Op, Left: ImmVar{x1}, Right: ImmVar{x2}},
			}}
		}

	case *LetNode:
		body := s.run(n.Body)
		for i := len(n.Bindings) - 1; i >= 0; i-- {
			b := n.Bindings[i]
			body = &SeqLet{Var: b.Name, Bound: s.run(b.Value), Body: body}
		}
		return body

	case *IfNode:
		if imm, ok := simpleExprToImm(n.Cond); ok {
			return &SeqIf{Cond: imm, Then: s.run(n.Then), Else: s.run(n.Else)}
		}
		x := s.fresh("if")
		return &SeqLet{Var: x, Bound: s.run(n.Cond), Body: &SeqIf{Cond: ImmVar{x}, Then: s.run(n.Then), Else: s.run(n.Else)}}

	case *ArrayNode:
		var pending []LetBinding
		elems := make([]ImmExpr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = s.bindIfCompound(el, "array_element", &pending)
		}
		return s.wrapPending(pending, SeqArray{Elems: elems})

	case *ArraySetNode:
		var pending []LetBinding
		array := s.bindIfCompound(n.Array, "arrayset_array", &pending)
		index := s.bindIfCompound(n.Index, "arrayset_index", &pending)
		value := s.bindIfCompound(n.Value, "arrayset_value", &pending)
		return s.wrapPending(pending, SeqArraySet{Array: array, Index: index, Value: value})

	case *SeqNode:
		x := s.fresh("dummy")
		return &SeqLet{Var: x, Bound: s.run(n.First), Body: s.run(n.Second)}

	case *CallNode:
		var pending []LetBinding
		fun := s.bindIfCompound(n.Fun, "function", &pending)
		args := make([]ImmExpr, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.bindIfCompound(a, "call_arg", &pending)
		}
		return s.wrapPending(pending, SeqCallClosure{Fun: fun, Args: args})

	case *MakeClosureNode:
		imm, ok := simpleExprToImm(n.Env)
		if !ok {
			panic("sequentialize: closure environment guaranteed to be immediate")
		}
		return SeqMakeClosure{Arity: n.Arity, Label: n.CodeLabel, Env: imm}

	case *ObjectNode:
		var pending []LetBinding
		fields := make([]ImmExpr, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = s.bindIfCompound(f, "object_field", &pending)
		}
		return s.wrapPending(pending, SeqObject{Class: n.Class, Fields: fields})

	case *CallUniqMethodNode:
		var pending []LetBinding
		object := s.bindIfCompound(n.Receiver, "object", &pending)
		args := make([]ImmExpr, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.bindIfCompound(a, "call_method_arg", &pending)
		}
		return s.wrapPending(pending, SeqCallMethod{Object: object, Dispatch: n.Dispatch, Args: args})

	default:
		panic("sequentialize: node should not exist after lambda lift")
	}
}

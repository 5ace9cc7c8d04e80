package snakec

import "fmt"

// Range identifies a span of the annotation slot carried by every
// expression node: the source span the node was constructed with (the
// zero Range for trees decoded by DecodeAST). The passes carry it onto
// the nodes they build; unique labels come from codegen's own counter.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Expr is the interface implemented by every surface and
// intermediate expression node. Besides its Range, every node carries a
// plain int tag, -1 on construction; no pass in this package assigns it.
type Expr interface {
	Range() Range
	Tag() int
	SetTag(int)
	String() string
	Accept(AstVisitor) error
}

type base struct {
	rg  Range
	tag int
}

func newBase(rg Range) base { return base{rg: rg, tag: -1} }

func (b base) Range() Range   { return b.rg }
func (b base) Tag() int       { return b.tag }
func (b *base) SetTag(t int)  { b.tag = t }

// Prim1 is a unary primitive operator (see spec.md §3.2).
type Prim1 string

const (
	Add1    Prim1 = "add1"
	Sub1    Prim1 = "sub1"
	Not     Prim1 = "not"
	Print   Prim1 = "print"
	IsBool  Prim1 = "is_bool"
	IsNum   Prim1 = "is_num"
	IsArray Prim1 = "is_array"
	IsFun   Prim1 = "is_fun"
	Length  Prim1 = "length"
)

// Prim2 is a binary primitive operator (see spec.md §3.3).
type Prim2 string

const (
	Add      Prim2 = "+"
	Sub      Prim2 = "-"
	Mul      Prim2 = "*"
	And      Prim2 = "&&"
	Or       Prim2 = "||"
	Lt       Prim2 = "<"
	Gt       Prim2 = ">"
	Le       Prim2 = "<="
	Ge       Prim2 = ">="
	Eq       Prim2 = "=="
	Neq      Prim2 = "!="
	ArrayGet Prim2 = "array_get"
)

// ---- Literals, variables ----

type NumNode struct {
	base
	Value int64
}

func NewNumNode(v int64, rg Range) *NumNode { return &NumNode{base: newBase(rg), Value: v} }
func (n *NumNode) String() string           { return fmt.Sprintf("%d", n.Value) }
func (n *NumNode) Accept(v AstVisitor) error { return v.VisitNum(n) }

type BoolNode struct {
	base
	Value bool
}

func NewBoolNode(v bool, rg Range) *BoolNode { return &BoolNode{base: newBase(rg), Value: v} }
func (n *BoolNode) String() string           { return fmt.Sprintf("%t", n.Value) }
func (n *BoolNode) Accept(v AstVisitor) error { return v.VisitBool(n) }

type VarNode struct {
	base
	Name string
}

func NewVarNode(name string, rg Range) *VarNode { return &VarNode{base: newBase(rg), Name: name} }
func (n *VarNode) String() string               { return n.Name }
func (n *VarNode) Accept(v AstVisitor) error     { return v.VisitVar(n) }

// ---- Primitive applications ----

type Prim1Node struct {
	base
	Op      Prim1
	Operand Expr
}

func NewPrim1Node(op Prim1, operand Expr, rg Range) *Prim1Node {
	return &Prim1Node{base: newBase(rg), Op: op, Operand: operand}
}
func (n *Prim1Node) String() string           { return fmt.Sprintf("%s(%s)", n.Op, n.Operand) }
func (n *Prim1Node) Accept(v AstVisitor) error { return v.VisitPrim1(n) }

type Prim2Node struct {
	base
	Op    Prim2
	Left  Expr
	Right Expr
}

func NewPrim2Node(op Prim2, l, r Expr, rg Range) *Prim2Node {
	return &Prim2Node{base: newBase(rg), Op: op, Left: l, Right: r}
}
func (n *Prim2Node) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }
func (n *Prim2Node) Accept(v AstVisitor) error { return v.VisitPrim2(n) }

// ---- Let, If ----

type LetBinding struct {
	Name  string
	Value Expr
}

type LetNode struct {
	base
	Bindings []LetBinding
	Body     Expr
}

func NewLetNode(bindings []LetBinding, body Expr, rg Range) *LetNode {
	return &LetNode{base: newBase(rg), Bindings: bindings, Body: body}
}
func (n *LetNode) String() string {
	return fmt.Sprintf("let ... in %s", n.Body)
}
func (n *LetNode) Accept(v AstVisitor) error { return v.VisitLet(n) }

type IfNode struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func NewIfNode(cond, thn, els Expr, rg Range) *IfNode {
	return &IfNode{base: newBase(rg), Cond: cond, Then: thn, Else: els}
}
func (n *IfNode) String() string {
	return fmt.Sprintf("if %s then %s else %s", n.Cond, n.Then, n.Else)
}
func (n *IfNode) Accept(v AstVisitor) error { return v.VisitIf(n) }

// ---- Arrays ----

type ArrayNode struct {
	base
	Elems []Expr
}

func NewArrayNode(elems []Expr, rg Range) *ArrayNode {
	return &ArrayNode{base: newBase(rg), Elems: elems}
}
func (n *ArrayNode) String() string           { return fmt.Sprintf("array(%d)", len(n.Elems)) }
func (n *ArrayNode) Accept(v AstVisitor) error { return v.VisitArray(n) }

type ArraySetNode struct {
	base
	Array Expr
	Index Expr
	Value Expr
}

func NewArraySetNode(array, index, value Expr, rg Range) *ArraySetNode {
	return &ArraySetNode{base: newBase(rg), Array: array, Index: index, Value: value}
}
func (n *ArraySetNode) String() string {
	return fmt.Sprintf("array_set(%s, %s, %s)", n.Array, n.Index, n.Value)
}
func (n *ArraySetNode) Accept(v AstVisitor) error { return v.VisitArraySet(n) }

// ---- Sequencing ----

type SeqNode struct {
	base
	First  Expr
	Second Expr
}

func NewSeqNode(first, second Expr, rg Range) *SeqNode {
	return &SeqNode{base: newBase(rg), First: first, Second: second}
}
func (n *SeqNode) String() string           { return fmt.Sprintf("%s; %s", n.First, n.Second) }
func (n *SeqNode) Accept(v AstVisitor) error { return v.VisitSeq(n) }

// ---- Functions, lambdas, calls ----

// FunDecl is not itself an Expr: it is the named-function shape
// shared by FunDefsNode groups and (post class-lift) method groups.
type FunDecl struct {
	Name       string
	Parameters []string
	Body       Expr
	Tag        int
}

type FunDefsNode struct {
	base
	Decls []*FunDecl
	Body  Expr
}

func NewFunDefsNode(decls []*FunDecl, body Expr, rg Range) *FunDefsNode {
	return &FunDefsNode{base: newBase(rg), Decls: decls, Body: body}
}
func (n *FunDefsNode) String() string           { return fmt.Sprintf("def ...; %s", n.Body) }
func (n *FunDefsNode) Accept(v AstVisitor) error { return v.VisitFunDefs(n) }

type CallNode struct {
	base
	Fun  Expr
	Args []Expr
}

func NewCallNode(fun Expr, args []Expr, rg Range) *CallNode {
	return &CallNode{base: newBase(rg), Fun: fun, Args: args}
}
func (n *CallNode) String() string           { return fmt.Sprintf("%s(...)", n.Fun) }
func (n *CallNode) Accept(v AstVisitor) error { return v.VisitCall(n) }

type LambdaNode struct {
	base
	Parameters []string
	Body       Expr
}

func NewLambdaNode(params []string, body Expr, rg Range) *LambdaNode {
	return &LambdaNode{base: newBase(rg), Parameters: params, Body: body}
}
func (n *LambdaNode) String() string           { return "lambda(...)" }
func (n *LambdaNode) Accept(v AstVisitor) error { return v.VisitLambda(n) }

// MakeClosureNode is produced by the lambda lifter: allocate a
// 3-word closure record for `codeLabel` capturing `Env`.
type MakeClosureNode struct {
	base
	Arity     int
	CodeLabel string
	Env       Expr
}

func NewMakeClosureNode(arity int, codeLabel string, env Expr, rg Range) *MakeClosureNode {
	return &MakeClosureNode{base: newBase(rg), Arity: arity, CodeLabel: codeLabel, Env: env}
}
func (n *MakeClosureNode) String() string { return fmt.Sprintf("make_closure(%s)", n.CodeLabel) }
func (n *MakeClosureNode) Accept(v AstVisitor) error { return v.VisitMakeClosure(n) }

// ---- Classes and objects ----

type ClassDefNode struct {
	base
	Name    string
	Fields  []string
	Methods []*FunDecl
	Body    Expr
}

func NewClassDefNode(name string, fields []string, methods []*FunDecl, body Expr, rg Range) *ClassDefNode {
	return &ClassDefNode{base: newBase(rg), Name: name, Fields: fields, Methods: methods, Body: body}
}
func (n *ClassDefNode) String() string           { return fmt.Sprintf("class %s; %s", n.Name, n.Body) }
func (n *ClassDefNode) Accept(v AstVisitor) error { return v.VisitClassDef(n) }

// MethodDefsNode is produced by the class lifter: the methods
// declared by class `ClassID` rewritten to take `self` as their first
// parameter and to use array_get/array_set on it instead of field
// references.
type MethodDefsNode struct {
	base
	ClassID int
	Decls   []*FunDecl
	Body    Expr
}

func NewMethodDefsNode(classID int, decls []*FunDecl, body Expr, rg Range) *MethodDefsNode {
	return &MethodDefsNode{base: newBase(rg), ClassID: classID, Decls: decls, Body: body}
}
func (n *MethodDefsNode) String() string           { return fmt.Sprintf("methods(%d); %s", n.ClassID, n.Body) }
func (n *MethodDefsNode) Accept(v AstVisitor) error { return v.VisitMethodDefs(n) }

type ObjectNode struct {
	base
	Class  string
	Fields []Expr
}

func NewObjectNode(class string, fields []Expr, rg Range) *ObjectNode {
	return &ObjectNode{base: newBase(rg), Class: class, Fields: fields}
}
func (n *ObjectNode) String() string           { return fmt.Sprintf("new %s(...)", n.Class) }
func (n *ObjectNode) Accept(v AstVisitor) error { return v.VisitObject(n) }

// CallMethodNode is the surface method call `receiver.method(args)`.
// The uniquifier resolves it into a CallUniqMethodNode carrying the
// dispatch table; no CallMethodNode survives past that pass.
type CallMethodNode struct {
	base
	Receiver Expr
	Method   string
	Args     []Expr
}

func NewCallMethodNode(receiver Expr, method string, args []Expr, rg Range) *CallMethodNode {
	return &CallMethodNode{base: newBase(rg), Receiver: receiver, Method: method, Args: args}
}
func (n *CallMethodNode) String() string {
	return fmt.Sprintf("%s.%s(...)", n.Receiver, n.Method)
}
func (n *CallMethodNode) Accept(v AstVisitor) error { return v.VisitCallMethod(n) }

// CallUniqMethodNode is the uniquifier's rewrite of CallMethodNode:
// Dispatch maps each class's unique name to the unique symbol of the
// method it supplies for this source method name (see the GLOSSARY
// entry "Dispatch table").
type CallUniqMethodNode struct {
	base
	Receiver Expr
	Dispatch map[string]string
	Args     []Expr
}

func NewCallUniqMethodNode(receiver Expr, dispatch map[string]string, args []Expr, rg Range) *CallUniqMethodNode {
	return &CallUniqMethodNode{base: newBase(rg), Receiver: receiver, Dispatch: dispatch, Args: args}
}
func (n *CallUniqMethodNode) String() string { return fmt.Sprintf("%s.<dispatch>(...)", n.Receiver) }
func (n *CallUniqMethodNode) Accept(v AstVisitor) error { return v.VisitCallUniqMethod(n) }

// SetFieldNode assigns a field of the enclosing method's implicit
// receiver. It only appears inside a ClassDefNode's method bodies and
// is eliminated by the class lifter.
type SetFieldNode struct {
	base
	Field string
	Value Expr
}

func NewSetFieldNode(field string, value Expr, rg Range) *SetFieldNode {
	return &SetFieldNode{base: newBase(rg), Field: field, Value: value}
}
func (n *SetFieldNode) String() string           { return fmt.Sprintf("set_field(%s, %s)", n.Field, n.Value) }
func (n *SetFieldNode) Accept(v AstVisitor) error { return v.VisitSetField(n) }

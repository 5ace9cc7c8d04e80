package snakec

import "fmt"

// PrettyString renders the hierarchical structure of an expression as
// a box-drawing tree (used by the CLI's -ast-only mode).
func PrettyString(e Expr) string {
	p := &exprPrinter{treePrinter: newTreePrinter()}
	e.Accept(p)
	return p.output.String()
}

type exprPrinter struct {
	*treePrinter
}

func (p *exprPrinter) line(label string, children ...Expr) {
	p.writel(label)
	for i, c := range children {
		last := i == len(children)-1
		if last {
			p.pwrite("└── ")
			p.indent("    ")
		} else {
			p.pwrite("├── ")
			p.indent("│   ")
		}
		c.Accept(p)
		p.unindent()
	}
}

func (p *exprPrinter) VisitNum(n *NumNode) error  { p.writel(fmt.Sprintf("%d", n.Value)); return nil }
func (p *exprPrinter) VisitBool(n *BoolNode) error { p.writel(fmt.Sprintf("%t", n.Value)); return nil }
func (p *exprPrinter) VisitVar(n *VarNode) error   { p.writel(n.Name); return nil }

func (p *exprPrinter) VisitPrim1(n *Prim1Node) error {
	p.line(string(n.Op), n.Operand)
	return nil
}

func (p *exprPrinter) VisitPrim2(n *Prim2Node) error {
	p.line(string(n.Op), n.Left, n.Right)
	return nil
}

func (p *exprPrinter) VisitLet(n *LetNode) error {
	children := make([]Expr, 0, len(n.Bindings)+1)
	for _, b := range n.Bindings {
		children = append(children, b.Value)
	}
	children = append(children, n.Body)
	p.line("let", children...)
	return nil
}

func (p *exprPrinter) VisitIf(n *IfNode) error {
	p.line("if", n.Cond, n.Then, n.Else)
	return nil
}

func (p *exprPrinter) VisitArray(n *ArrayNode) error {
	p.line("array", n.Elems...)
	return nil
}

func (p *exprPrinter) VisitArraySet(n *ArraySetNode) error {
	p.line("array_set", n.Array, n.Index, n.Value)
	return nil
}

func (p *exprPrinter) VisitSeq(n *SeqNode) error {
	p.line(";", n.First, n.Second)
	return nil
}

func (p *exprPrinter) VisitFunDefs(n *FunDefsNode) error {
	children := make([]Expr, 0, len(n.Decls)+1)
	for _, d := range n.Decls {
		children = append(children, d.Body)
	}
	children = append(children, n.Body)
	p.line("fundefs", children...)
	return nil
}

func (p *exprPrinter) VisitCall(n *CallNode) error {
	p.line("call", append([]Expr{n.Fun}, n.Args...)...)
	return nil
}

func (p *exprPrinter) VisitLambda(n *LambdaNode) error {
	p.line("lambda", n.Body)
	return nil
}

func (p *exprPrinter) VisitMakeClosure(n *MakeClosureNode) error {
	p.line(fmt.Sprintf("make_closure(%s)", n.CodeLabel), n.Env)
	return nil
}

func (p *exprPrinter) VisitClassDef(n *ClassDefNode) error {
	children := make([]Expr, 0, len(n.Methods)+1)
	for _, m := range n.Methods {
		children = append(children, m.Body)
	}
	children = append(children, n.Body)
	p.line(fmt.Sprintf("class %s", n.Name), children...)
	return nil
}

func (p *exprPrinter) VisitMethodDefs(n *MethodDefsNode) error {
	children := make([]Expr, 0, len(n.Decls)+1)
	for _, d := range n.Decls {
		children = append(children, d.Body)
	}
	children = append(children, n.Body)
	p.line(fmt.Sprintf("methods(class=%d)", n.ClassID), children...)
	return nil
}

func (p *exprPrinter) VisitObject(n *ObjectNode) error {
	p.line(fmt.Sprintf("new %s", n.Class), n.Fields...)
	return nil
}

func (p *exprPrinter) VisitCallMethod(n *CallMethodNode) error {
	p.line(fmt.Sprintf(".%s", n.Method), append([]Expr{n.Receiver}, n.Args...)...)
	return nil
}

func (p *exprPrinter) VisitCallUniqMethod(n *CallUniqMethodNode) error {
	p.line(".<dispatch>", append([]Expr{n.Receiver}, n.Args...)...)
	return nil
}

func (p *exprPrinter) VisitSetField(n *SetFieldNode) error {
	p.line(fmt.Sprintf("set_field(%s)", n.Field), n.Value)
	return nil
}

package snakec

// AstVisitor is the entry point every Expr dispatches into via
// Accept. Passes that need a full traversal (currently only the
// pretty-printer) implement it directly; the other passes use plain
// recursive functions with a type switch, following the same pattern
// the code generators in this family of compilers use for emission.
type AstVisitor interface {
	VisitNum(*NumNode) error
	VisitBool(*BoolNode) error
	VisitVar(*VarNode) error
	VisitPrim1(*Prim1Node) error
	VisitPrim2(*Prim2Node) error
	VisitLet(*LetNode) error
	VisitIf(*IfNode) error
	VisitArray(*ArrayNode) error
	VisitArraySet(*ArraySetNode) error
	VisitSeq(*SeqNode) error
	VisitFunDefs(*FunDefsNode) error
	VisitCall(*CallNode) error
	VisitLambda(*LambdaNode) error
	VisitMakeClosure(*MakeClosureNode) error
	VisitClassDef(*ClassDefNode) error
	VisitMethodDefs(*MethodDefsNode) error
	VisitObject(*ObjectNode) error
	VisitCallMethod(*CallMethodNode) error
	VisitCallUniqMethod(*CallUniqMethodNode) error
	VisitSetField(*SetFieldNode) error
}

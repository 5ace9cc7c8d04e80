package snakec

// maxSnakeInt and minSnakeInt bound the literal magnitudes the tagged
// integer representation can hold after being shifted left by one
// (spec.md §3.5, §4.1 "Overflow").
const (
	maxSnakeInt int64 = 1<<62 - 1
	minSnakeInt int64 = -(1 << 62)
)

type varKind int

const (
	varKindLocal varKind = iota
	varKindField
)

type scopeEntry struct {
	name string
	kind varKind
}

type classScope struct {
	name       string
	fieldCount int
}

// validator walks a surface expression tree once, checking scope,
// duplicate bindings, class/field/method references and integer
// magnitude. It stops at the first problem found (spec.md §4.1, §7).
type validator struct{}

// Validate checks a surface program for the error kinds named in
// spec.md §4.1. It never mutates its argument.
func Validate(e Expr) error {
	v := &validator{}
	return v.check(e, nil, nil, nil)
}

func lookupScope(env []scopeEntry, name string) (varKind, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i].name == name {
			return env[i].kind, true
		}
	}
	return 0, false
}

func lookupClass(env []classScope, name string) (int, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i].name == name {
			return env[i].fieldCount, true
		}
	}
	return 0, false
}

func containsString(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

func (v *validator) check(e Expr, varEnv []scopeEntry, classEnv []classScope, methodEnv []string) error {
	switch n := e.(type) {
	case *NumNode:
		if n.Value > maxSnakeInt || n.Value < minSnakeInt {
			return errOverflow(n.Value, n.Range())
		}
		return nil

	case *BoolNode:
		return nil

	case *VarNode:
		if _, ok := lookupScope(varEnv, n.Name); !ok {
			return errUnboundVariable(n.Name, n.Range())
		}
		return nil

	case *Prim1Node:
		return v.check(n.Operand, varEnv, classEnv, methodEnv)

	case *Prim2Node:
		if err := v.check(n.Left, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		return v.check(n.Right, varEnv, classEnv, methodEnv)

	case *LetNode:
		var seen []string
		for _, b := range n.Bindings {
			if containsString(seen, b.Name) {
				return errDuplicateBinding(b.Name, n.Range())
			}
			seen = append(seen, b.Name)
		}
		for _, b := range n.Bindings {
			if err := v.check(b.Value, varEnv, classEnv, methodEnv); err != nil {
				return err
			}
			varEnv = append(varEnv, scopeEntry{b.Name, varKindLocal})
		}
		return v.check(n.Body, varEnv, classEnv, methodEnv)

	case *IfNode:
		if err := v.check(n.Cond, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		if err := v.check(n.Then, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		return v.check(n.Else, varEnv, classEnv, methodEnv)

	case *ArrayNode:
		for _, el := range n.Elems {
			if err := v.check(el, varEnv, classEnv, methodEnv); err != nil {
				return err
			}
		}
		return nil

	case *ArraySetNode:
		if err := v.check(n.Array, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		if err := v.check(n.Index, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		return v.check(n.Value, varEnv, classEnv, methodEnv)

	case *SeqNode:
		if err := v.check(n.First, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		return v.check(n.Second, varEnv, classEnv, methodEnv)

	case *FunDefsNode:
		var seen []string
		for _, d := range n.Decls {
			if containsString(seen, d.Name) {
				return errDuplicateFunName(d.Name, n.Range())
			}
			seen = append(seen, d.Name)
			varEnv = append(varEnv, scopeEntry{d.Name, varKindLocal})
		}
		for _, d := range n.Decls {
			if err := checkDuplicateArgs(d.Parameters, n.Range()); err != nil {
				return err
			}
			bodyEnv := varEnv
			for _, p := range d.Parameters {
				bodyEnv = append(bodyEnv, scopeEntry{p, varKindLocal})
			}
			if err := v.check(d.Body, bodyEnv, classEnv, methodEnv); err != nil {
				return err
			}
		}
		return v.check(n.Body, varEnv, classEnv, methodEnv)

	case *CallNode:
		for _, a := range n.Args {
			if err := v.check(a, varEnv, classEnv, methodEnv); err != nil {
				return err
			}
		}
		return v.check(n.Fun, varEnv, classEnv, methodEnv)

	case *LambdaNode:
		if err := checkDuplicateArgs(n.Parameters, n.Range()); err != nil {
			return err
		}
		for _, p := range n.Parameters {
			varEnv = append(varEnv, scopeEntry{p, varKindLocal})
		}
		return v.check(n.Body, varEnv, classEnv, methodEnv)

	case *ClassDefNode:
		classEnv = append(classEnv, classScope{n.Name, len(n.Fields)})

		var seenFields []string
		for _, f := range n.Fields {
			if containsString(seenFields, f) {
				return errDuplicateField(f, n.Range())
			}
			seenFields = append(seenFields, f)
		}

		var seenMethods []string
		for _, m := range n.Methods {
			if containsString(seenMethods, m.Name) {
				return errDuplicateMethod(m.Name, n.Range())
			}
			seenMethods = append(seenMethods, m.Name)
		}

		methodBodyEnv := varEnv
		for _, f := range n.Fields {
			methodBodyEnv = append(methodBodyEnv, scopeEntry{f, varKindField})
		}
		for _, m := range n.Methods {
			methodBodyEnv = append(methodBodyEnv, scopeEntry{m.Name, varKindField})
		}

		for _, m := range n.Methods {
			methodEnv = append(methodEnv, m.Name)
		}

		for _, m := range n.Methods {
			if err := checkDuplicateArgs(m.Parameters, n.Range()); err != nil {
				return err
			}
			bodyEnv := methodBodyEnv
			for _, p := range m.Parameters {
				bodyEnv = append(bodyEnv, scopeEntry{p, varKindLocal})
			}
			if err := v.check(m.Body, bodyEnv, classEnv, methodEnv); err != nil {
				return err
			}
		}

		return v.check(n.Body, varEnv, classEnv, methodEnv)

	case *ObjectNode:
		for _, f := range n.Fields {
			if err := v.check(f, varEnv, classEnv, methodEnv); err != nil {
				return err
			}
		}
		fieldCount, ok := lookupClass(classEnv, n.Class)
		if !ok {
			return errUndefinedClass(n.Class, n.Range())
		}
		if fieldCount != len(n.Fields) {
			return errWrongFieldSize(n.Class, n.Range())
		}
		return nil

	case *CallMethodNode:
		for _, a := range n.Args {
			if err := v.check(a, varEnv, classEnv, methodEnv); err != nil {
				return err
			}
		}
		if err := v.check(n.Receiver, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		if !containsString(methodEnv, n.Method) {
			return errUndefinedMethod(n.Method, n.Range())
		}
		return nil

	case *SetFieldNode:
		if err := v.check(n.Value, varEnv, classEnv, methodEnv); err != nil {
			return err
		}
		kind, ok := lookupScope(varEnv, n.Field)
		if !ok || kind != varKindField {
			return errUndefinedField(n.Field, n.Range())
		}
		return nil

	default:
		panic("validator: node should not exist before uniquify")
	}
}

func checkDuplicateArgs(params []string, rg Range) error {
	var seen []string
	for _, p := range params {
		if containsString(seen, p) {
			return errDuplicateArgName(p, rg)
		}
		seen = append(seen, p)
	}
	return nil
}

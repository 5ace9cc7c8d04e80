package snakec

// MethodDecl is a method hoisted out of its MethodDefsNode by the
// lambda lifter: ClassID ties it back to the class that declared it,
// Decl is the method itself with its captured-environment parameter
// prepended (lift.rs's MethodDecl).
type MethodDecl struct {
	ClassID int
	Decl    *FunDecl
}

// LambdaLift removes every FunDefsNode and MethodDefsNode from a
// class-lifted program. Each named function becomes a free-standing
// top-level FunDecl/MethodDecl taking its captured environment as an
// explicit first array parameter; the call site becomes a Let that
// allocates the environment array, builds a closure per function, and
// back-patches each function's own array slot so mutually-recursive
// functions can find each other through the array (lift.rs's
// lambda_lift; see spec.md §4.4).
func LambdaLift(e Expr) (funcs []*FunDecl, methods []*MethodDecl, main Expr) {
	return lambdaLift(e, nil)
}

func lambdaLift(e Expr, env []string) ([]*FunDecl, []*MethodDecl, Expr) {
	switch n := e.(type) {
	case *NumNode:
		return nil, nil, NewNumNode(n.Value, n.Range())

	case *BoolNode:
		return nil, nil, NewBoolNode(n.Value, n.Range())

	case *VarNode:
		return nil, nil, NewVarNode(n.Name, n.Range())

	case *Prim1Node:
		funcs, methods, main := lambdaLift(n.Operand, env)
		return funcs, methods, NewPrim1Node(n.Op, main, n.Range())

	case *Prim2Node:
		funcs1, methods1, main1 := lambdaLift(n.Left, env)
		funcs2, methods2, main2 := lambdaLift(n.Right, env)
		return append(funcs1, funcs2...), append(methods1, methods2...),
			NewPrim2Node(n.Op, main1, main2, n.Range())

	case *LetNode:
		var funcs []*FunDecl
		var methods []*MethodDecl
		bindings := make([]LetBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			bf, bm, bv := lambdaLift(b.Value, env)
			funcs = append(funcs, bf...)
			methods = append(methods, bm...)
			env = append(env, b.Name)
			bindings[i] = LetBinding{Name: b.Name, Value: bv}
		}
		bodyFuncs, bodyMethods, bodyMain := lambdaLift(n.Body, env)
		funcs = append(funcs, bodyFuncs...)
		methods = append(methods, bodyMethods...)
		return funcs, methods, &LetNode{base: newBase(n.Range()), Bindings: bindings, Body: bodyMain}

	case *IfNode:
		f1, m1, cond := lambdaLift(n.Cond, env)
		f2, m2, thn := lambdaLift(n.Then, env)
		f3, m3, els := lambdaLift(n.Else, env)
		funcs := append(append(f1, f2...), f3...)
		methods := append(append(m1, m2...), m3...)
		return funcs, methods, &IfNode{base: newBase(n.Range()), Cond: cond, Then: thn, Else: els}

	case *ArrayNode:
		var funcs []*FunDecl
		var methods []*MethodDecl
		elems := make([]Expr, len(n.Elems))
		for i, el := range n.Elems {
			f, m, v := lambdaLift(el, env)
			funcs = append(funcs, f...)
			methods = append(methods, m...)
			elems[i] = v
		}
		return funcs, methods, &ArrayNode{base: newBase(n.Range()), Elems: elems}

	case *ArraySetNode:
		f1, m1, arr := lambdaLift(n.Array, env)
		f2, m2, idx := lambdaLift(n.Index, env)
		f3, m3, val := lambdaLift(n.Value, env)
		funcs := append(append(f1, f2...), f3...)
		methods := append(append(m1, m2...), m3...)
		return funcs, methods, &ArraySetNode{base: newBase(n.Range()), Array: arr, Index: idx, Value: val}

	case *SeqNode:
		f1, m1, first := lambdaLift(n.First, env)
		f2, m2, second := lambdaLift(n.Second, env)
		return append(f1, f2...), append(m1, m2...),
			&SeqNode{base: newBase(n.Range()), First: first, Second: second}

	case *CallNode:
		funcs, methods, fun := lambdaLift(n.Fun, env)
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			f, m, v := lambdaLift(a, env)
			funcs = append(funcs, f...)
			methods = append(methods, m...)
			args[i] = v
		}
		return funcs, methods, &CallNode{base: newBase(n.Range()), Fun: fun, Args: args}

	case *ObjectNode:
		var funcs []*FunDecl
		var methods []*MethodDecl
		fields := make([]Expr, len(n.Fields))
		for i, field := range n.Fields {
			f, m, v := lambdaLift(field, env)
			funcs = append(funcs, f...)
			methods = append(methods, m...)
			fields[i] = v
		}
		return funcs, methods, &ObjectNode{base: newBase(n.Range()), Class: n.Class, Fields: fields}

	case *CallUniqMethodNode:
		var funcs []*FunDecl
		var methods []*MethodDecl
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			f, m, v := lambdaLift(a, env)
			funcs = append(funcs, f...)
			methods = append(methods, m...)
			args[i] = v
		}
		fo, mo, obj := lambdaLift(n.Receiver, env)
		funcs = append(funcs, fo...)
		methods = append(methods, mo...)
		return funcs, methods, &CallUniqMethodNode{base: newBase(n.Range()), Receiver: obj, Dispatch: n.Dispatch, Args: args}

	case *FunDefsNode:
		return liftDeclGroup(n.Range(), declNames(n.Decls), env, n.Decls, n.Body,
			func(envVar string, params []string, body Expr) (*FunDecl, *MethodDecl) {
				return &FunDecl{Parameters: params, Body: body}, nil
			})

	case *MethodDefsNode:
		return liftDeclGroup(n.Range(), declNames(n.Decls), env, n.Decls, n.Body,
			func(envVar string, params []string, body Expr) (*FunDecl, *MethodDecl) {
				return nil, &MethodDecl{ClassID: n.ClassID, Decl: &FunDecl{Parameters: params, Body: body}}
			})

	default:
		panic("lambda lift: node should not exist before lambda lift")
	}
}

func declNames(decls []*FunDecl) []string {
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	return names
}

// liftDeclGroup implements the shared shape of FunDefsNode and
// MethodDefsNode lowering: hoist each declaration into a top-level
// entry taking the captured environment array as its first parameter,
// and rewrite the call site into a Let that builds that array,
// allocates one closure per declaration, and overwrites each
// declaration's own array slot so mutual recursion resolves through
// the array rather than through direct Go-level recursion.
func liftDeclGroup(
	rg Range,
	names []string,
	env []string,
	decls []*FunDecl,
	body Expr,
	makeEntry func(envVar string, params []string, body Expr) (*FunDecl, *MethodDecl),
) ([]*FunDecl, []*MethodDecl, Expr) {
	envVarName := "env"
	for _, name := range names {
		envVarName += "_" + name
	}
	group := append(append([]string{}, env...), names...)

	var funcs []*FunDecl
	var methods []*MethodDecl

	for _, d := range decls {
		declEnv := append(append([]string{}, group...), envVarName)
		declEnv = append(declEnv, d.Parameters...)
		bf, bm, liftedBody := lambdaLift(d.Body, declEnv)
		funcs = append(funcs, bf...)
		methods = append(methods, bm...)

		bindings := make([]LetBinding, len(group))
		for j, x := range group {
			bindings[j] = LetBinding{
				Name: x,
				Value: NewPrim2Node(ArrayGet, NewVarNode(envVarName, rg), NewNumNode(int64(j), rg), rg),
			}
		}
		mainBody := &LetNode{base: newBase(rg), Bindings: bindings, Body: liftedBody}

		params := append([]string{envVarName}, d.Parameters...)
		entry, method := makeEntry(envVarName, params, mainBody)
		if entry != nil {
			entry.Name = d.Name
			funcs = append(funcs, entry)
		}
		if method != nil {
			method.Decl.Name = d.Name
			methods = append(methods, method)
		}
	}

	bf, bm, liftedMain := lambdaLift(body, group)
	funcs = append(funcs, bf...)
	methods = append(methods, bm...)

	envClosure := make([]Expr, len(group))
	for i, x := range group {
		if i < len(group)-len(decls) {
			envClosure[i] = NewVarNode(x, rg)
		} else {
			envClosure[i] = NewNumNode(0, rg)
		}
	}

	closureBindings := make([]LetBinding, 0, len(decls)+1)
	closureBindings = append(closureBindings, LetBinding{
		Name:  envVarName,
		Value: &ArrayNode{base: newBase(rg), Elems: envClosure},
	})
	for _, d := range decls {
		closureBindings = append(closureBindings, LetBinding{
			Name:  d.Name,
			Value: NewMakeClosureNode(len(d.Parameters), d.Name, NewVarNode(envVarName, rg), rg),
		})
	}

	mainBody := liftedMain
	for i := len(decls) - 1; i >= 0; i-- {
		d := decls[i]
		mainBody = &SeqNode{
			base: newBase(rg),
			First: &ArraySetNode{
				base:  newBase(rg),
				Array: NewVarNode(envVarName, rg),
				Index: NewNumNode(int64(len(group)-len(decls)+i), rg),
				Value: NewVarNode(d.Name, rg),
			},
			Second: mainBody,
		}
	}

	return funcs, methods, &LetNode{base: newBase(rg), Bindings: closureBindings, Body: mainBody}
}

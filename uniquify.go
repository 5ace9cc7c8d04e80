package snakec

import "fmt"

// uniquifier renames every binding occurrence (let bindings, function
// and lambda parameters, class/field/method names) to a name that
// cannot collide with any other binding in the program, and turns
// CallMethod into CallUniqMethod carrying a full per-class dispatch
// table (scope.rs's uniquify). The counter lives on the struct, not a
// package global, so concurrent Compile calls never share state.
type uniquifier struct {
	counter int
}

func (u *uniquifier) fresh() int {
	u.counter++
	return u.counter
}

type varBinding struct{ name, uniq string }
type classBinding struct{ name, uniq string }

// methodEnv maps a source method name to the dispatch table built up
// for it so far: class-unique-name -> method-unique-symbol.
type methodEnv map[string]map[string]string

func cloneMethodEnv(m methodEnv) methodEnv {
	out := make(methodEnv, len(m))
	for k, tbl := range m {
		inner := make(map[string]string, len(tbl))
		for ck, cv := range tbl {
			inner[ck] = cv
		}
		out[k] = inner
	}
	return out
}

func lookupVar(env []varBinding, name string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i].name == name {
			return env[i].uniq, true
		}
	}
	return "", false
}

func lookupClassBinding(env []classBinding, name string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i].name == name {
			return env[i].uniq, true
		}
	}
	return "", false
}

// Uniquify renames a validated surface program so every bound name is
// globally unique and rewrites CallMethod into CallUniqMethod.
func Uniquify(e Expr) Expr {
	u := &uniquifier{}
	return u.run(e, nil, nil, methodEnv{})
}

func (u *uniquifier) run(e Expr, varEnv []varBinding, classEnv []classBinding, methods methodEnv) Expr {
	switch n := e.(type) {
	case *NumNode:
		return NewNumNode(n.Value, n.Range())

	case *BoolNode:
		return NewBoolNode(n.Value, n.Range())

	case *VarNode:
		uniq, ok := lookupVar(varEnv, n.Name)
		if !ok {
			panic("uniquify: variable guaranteed to be in scope: " + n.Name)
		}
		return NewVarNode(uniq, n.Range())

	case *Prim1Node:
		return NewPrim1Node(n.Op, u.run(n.Operand, varEnv, classEnv, methods), n.Range())

	case *Prim2Node:
		return NewPrim2Node(n.Op,
			u.run(n.Left, varEnv, classEnv, methods),
			u.run(n.Right, varEnv, classEnv, methods),
			n.Range())

	case *LetNode:
		uniqBindings := make([]LetBinding, 0, len(n.Bindings))
		for _, b := range n.Bindings {
			uniqName := fmt.Sprintf("#%s_%d", b.Name, u.fresh())
			value := u.run(b.Value, varEnv, classEnv, methods)
			uniqBindings = append(uniqBindings, LetBinding{Name: uniqName, Value: value})
			varEnv = append(varEnv, varBinding{b.Name, uniqName})
		}
		body := u.run(n.Body, varEnv, classEnv, methods)
		return &LetNode{base: newBase(n.Range()), Bindings: uniqBindings, Body: body}

	case *IfNode:
		return &IfNode{
			base: newBase(n.Range()),
			Cond: u.run(n.Cond, varEnv, classEnv, methods),
			Then: u.run(n.Then, varEnv, classEnv, methods),
			Else: u.run(n.Else, varEnv, classEnv, methods),
		}

	case *ArrayNode:
		elems := make([]Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = u.run(el, varEnv, classEnv, methods)
		}
		return &ArrayNode{base: newBase(n.Range()), Elems: elems}

	case *ArraySetNode:
		return &ArraySetNode{
			base:  newBase(n.Range()),
			Array: u.run(n.Array, varEnv, classEnv, methods),
			Index: u.run(n.Index, varEnv, classEnv, methods),
			Value: u.run(n.Value, varEnv, classEnv, methods),
		}

	case *SeqNode:
		return &SeqNode{
			base:   newBase(n.Range()),
			First:  u.run(n.First, varEnv, classEnv, methods),
			Second: u.run(n.Second, varEnv, classEnv, methods),
		}

	case *FunDefsNode:
		for _, d := range n.Decls {
			uniqName := fmt.Sprintf("%s_%d", d.Name, u.fresh())
			varEnv = append(varEnv, varBinding{d.Name, uniqName})
		}
		uniqDecls := make([]*FunDecl, len(n.Decls))
		for i, d := range n.Decls {
			uniqFun, _ := lookupVar(varEnv, d.Name)
			envClone := varEnv
			uniqArgs := make([]string, len(d.Parameters))
			for j, p := range d.Parameters {
				uniqArg := fmt.Sprintf("#%s_%d", p, u.fresh())
				envClone = append(envClone, varBinding{p, uniqArg})
				uniqArgs[j] = uniqArg
			}
			uniqDecls[i] = &FunDecl{
				Name:       uniqFun,
				Parameters: uniqArgs,
				Body:       u.run(d.Body, envClone, classEnv, methods),
			}
		}
		return &FunDefsNode{base: newBase(n.Range()), Decls: uniqDecls, Body: u.run(n.Body, varEnv, classEnv, methods)}

	case *CallNode:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = u.run(a, varEnv, classEnv, methods)
		}
		return &CallNode{base: newBase(n.Range()), Fun: u.run(n.Fun, varEnv, classEnv, methods), Args: args}

	case *LambdaNode:
		id := u.fresh()
		uniqParams := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			uniqParam := fmt.Sprintf("#%s_%d", p, id)
			varEnv = append(varEnv, varBinding{p, uniqParam})
			uniqParams[i] = uniqParam
		}
		uniqName := fmt.Sprintf("Lambda_%d", id)
		decl := &FunDecl{
			Name:       uniqName,
			Parameters: uniqParams,
			Body:       u.run(n.Body, varEnv, classEnv, methods),
		}
		return &FunDefsNode{
			base:  newBase(n.Range()),
			Decls: []*FunDecl{decl},
			Body:  NewVarNode(uniqName, n.Range()),
		}

	case *ClassDefNode:
		id := u.fresh()
		uniqName := fmt.Sprintf("%s_%d", n.Name, id)
		classEnv = append(classEnv, classBinding{n.Name, uniqName})

		varEnvOuter := varEnv
		uniqFields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			uniqField := fmt.Sprintf("#%s_%s", uniqName, f)
			varEnv = append(varEnv, varBinding{f, uniqField})
			uniqFields[i] = uniqField
		}
		for _, m := range n.Methods {
			methodID := u.fresh()
			uniqMethodName := fmt.Sprintf("%s_%s_%d", uniqName, m.Name, methodID)
			varEnv = append(varEnv, varBinding{m.Name, uniqMethodName})
			m.Tag = methodID
		}

		methods = cloneMethodEnv(methods)
		uniqMethods := make([]*FunDecl, len(n.Methods))
		for i, m := range n.Methods {
			uniqMethodName := fmt.Sprintf("%s_%s_%d", uniqName, m.Name, m.Tag)
			tbl, ok := methods[m.Name]
			if !ok {
				tbl = map[string]string{}
			}
			tbl[uniqName] = uniqMethodName
			methods[m.Name] = tbl

			envClone := varEnv
			uniqArgs := make([]string, len(m.Parameters))
			for j, p := range m.Parameters {
				uniqArg := fmt.Sprintf("#%s_%d", p, u.fresh())
				envClone = append(envClone, varBinding{p, uniqArg})
				uniqArgs[j] = uniqArg
			}
			uniqMethods[i] = &FunDecl{
				Name:       uniqMethodName,
				Parameters: uniqArgs,
				Body:       u.run(m.Body, envClone, classEnv, methods),
			}
		}

		return &ClassDefNode{
			base:    newBase(n.Range()),
			Name:    uniqName,
			Fields:  uniqFields,
			Methods: uniqMethods,
			Body:    u.run(n.Body, varEnvOuter, classEnv, methods),
		}

	case *ObjectNode:
		uniqClass, ok := lookupClassBinding(classEnv, n.Class)
		if !ok {
			panic("uniquify: class guaranteed to be in scope: " + n.Class)
		}
		fields := make([]Expr, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = u.run(f, varEnv, classEnv, methods)
		}
		return &ObjectNode{base: newBase(n.Range()), Class: uniqClass, Fields: fields}

	case *CallMethodNode:
		tbl, ok := methods[n.Method]
		if !ok {
			panic("uniquify: method guaranteed to be in scope: " + n.Method)
		}
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = u.run(a, varEnv, classEnv, methods)
		}
		dispatch := make(map[string]string, len(tbl))
		for k, v := range tbl {
			dispatch[k] = v
		}
		return &CallUniqMethodNode{
			base:     newBase(n.Range()),
			Receiver: u.run(n.Receiver, varEnv, classEnv, methods),
			Dispatch: dispatch,
			Args:     args,
		}

	case *SetFieldNode:
		uniqField, ok := lookupVar(varEnv, n.Field)
		if !ok {
			panic("uniquify: field guaranteed to be in scope: " + n.Field)
		}
		return &SetFieldNode{
			base:  newBase(n.Range()),
			Field: uniqField,
			Value: u.run(n.Value, varEnv, classEnv, methods),
		}

	default:
		panic("uniquify: node should not exist before uniquify")
	}
}

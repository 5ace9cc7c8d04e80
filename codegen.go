package snakec

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// codegen lowers a sequentialized function/method/main body into a
// straight-line x86-64 instruction list (compile.rs's
// compile_to_instrs_help and friends). Unlike the original, which
// threaded a pre-assigned annotation integer through every IR node for
// unique label suffixes (tag_exp/tag_prog/tag_sprog), this carries its
// own monotonic counter and mints a label suffix exactly when it needs
// one — the numbering is equivalent, it just happens during codegen
// instead of as a separate annotate-then-consume pass, which Go's
// mutable structs make unnecessary.
type codegen struct {
	counter int

	// omitFieldCountGuard skips the runtime field-count check on object
	// construction (Config "compiler.omit_field_count_guard"): the class
	// lifter and validator already agree on field counts for every
	// ObjectNode it produces, so the guard only matters for malformed
	// input the validator should have already rejected.
	omitFieldCountGuard bool
}

func (c *codegen) fresh() int {
	c.counter++
	return c.counter
}

func getOffset(env map[string]int32, name string) Offset {
	off, ok := env[name]
	if !ok {
		panic(fmt.Sprintf("codegen: variable %q is guaranteed to be in scope", name))
	}
	return constOffset(off)
}

func compileImm(imm ImmExpr, env map[string]int32) Arg {
	switch v := imm.(type) {
	case ImmNum:
		return ArgSigned{v.Value << 1}
	case ImmBool:
		if v.Value {
			return ArgUnsigned{snakeTrue}
		}
		return ArgUnsigned{snakeFalse}
	case ImmVar:
		return ArgMem{MemRef{Reg: regRSP, Offset: getOffset(env, v.Name)}}
	default:
		panic("codegen: unknown immediate")
	}
}

// compilePrintCall renders the out-of-line call to the external
// print_snake_val helper. It moves rsp down by one word more than a
// non-tail closure call (nonTailCall) does, so that rsp is 16-byte
// aligned at the call into the runtime.
func compilePrintCall(space int32) []Instr {
	return []Instr{
		InstrMovToReg{Dst: regRDI, Src: ArgReg{regRAX}},
		InstrSub{Dst: regRSP, Src: ArgSigned{int64(space + 8)}},
		InstrCall{JmpLabel{"print_snake_val"}},
		InstrAdd{Dst: regRSP, Src: ArgSigned{int64(space + 8)}},
	}
}

func (c *codegen) compilePrim1(p Prim1, space int32) []Instr {
	switch p {
	case Add1:
		instr := []Instr{InstrComment{"Add1"}, InstrAdd{Dst: regRAX, Src: ArgSigned{1 << 1}}}
		return append(instr, checkOverflow()...)
	case Sub1:
		instr := []Instr{InstrComment{"Sub1"}, InstrSub{Dst: regRAX, Src: ArgSigned{1 << 1}}}
		return append(instr, checkOverflow()...)
	case Not:
		return []Instr{
			InstrComment{"Not"},
			InstrMovToReg{Dst: regR10, Src: ArgUnsigned{xorNot}},
			InstrXor{Dst: regRAX, Src: ArgReg{regR10}},
		}
	case Print:
		return append([]Instr{InstrComment{"Print"}}, compilePrintCall(space)...)
	case IsNum:
		return []Instr{
			InstrComment{"IsNum"},
			InstrMovToReg{Dst: regR10, Src: ArgUnsigned{intTag}},
			InstrAnd{Dst: regRAX, Src: ArgReg{regR10}},
			InstrShl{Dst: regRAX, Src: ArgUnsigned{63}},
			InstrMovToReg{Dst: regR10, Src: ArgUnsigned{snakeTrue}},
			InstrXor{Dst: regRAX, Src: ArgReg{regR10}},
		}
	case IsBool, IsArray, IsFun:
		ann := c.fresh()
		mismatch := fmt.Sprintf("MisMatch_%d", ann)
		var tag uint32
		switch p {
		case IsBool:
			tag = boolTag
		case IsArray:
			tag = arrayTag
		case IsFun:
			tag = closureTag
		}
		return []Instr{
			InstrComment{"IsBool/IsArray/IsFun"},
			InstrMovToReg{Dst: regR10, Src: ArgUnsigned{tagMask}},
			InstrAnd{Dst: regRAX, Src: ArgReg{regR10}},
			InstrCmp{Left: regRAX, Right: ArgUnsigned{uint64(tag)}},
			InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{snakeFalse}},
			InstrJne{JmpLabel{mismatch}},
			InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{snakeTrue}},
			InstrLabel{mismatch},
		}
	case Length:
		return []Instr{
			InstrComment{"Array Length"},
			InstrSub{Dst: regRAX, Src: ArgUnsigned{uint64(arrayTag)}},
			InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: regRAX, Offset: constOffset(8)}}},
		}
	default:
		panic("codegen: unknown Prim1")
	}
}

func (c *codegen) compilePrim2(p Prim2) []Instr {
	switch p {
	case Add:
		return append([]Instr{InstrComment{"Add"}, InstrAdd{Dst: regRAX, Src: ArgReg{regR10}}}, checkOverflow()...)
	case Sub:
		return append([]Instr{InstrComment{"Sub"}, InstrSub{Dst: regRAX, Src: ArgReg{regR10}}}, checkOverflow()...)
	case Mul:
		instr := append([]Instr{InstrComment{"Mul"}, InstrIMul{Dst: regRAX, Src: ArgReg{regR10}}}, checkOverflow()...)
		return append(instr, InstrSar{Dst: regRAX, Src: ArgUnsigned{1}})
	case And:
		return []Instr{InstrAnd{Dst: regRAX, Src: ArgReg{regR10}}}
	case Or:
		return []Instr{InstrOr{Dst: regRAX, Src: ArgReg{regR10}}}
	case Lt, Gt, Le, Ge, Eq, Neq:
		ann := c.fresh()
		var name string
		switch p {
		case Lt:
			name = "less_than"
		case Gt:
			name = "greater_than"
		case Le:
			name = "less_equal"
		case Ge:
			name = "greater_equal"
		case Eq:
			name = "equal"
		case Neq:
			name = "unequal"
		}
		label := fmt.Sprintf("%s_%d", name, ann)
		instr := []Instr{
			InstrComment{"Compare"},
			InstrCmp{Left: regRAX, Right: ArgReg{regR10}},
			InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{snakeTrue}},
		}
		switch p {
		case Lt:
			instr = append(instr, InstrJl{JmpLabel{label}})
		case Gt:
			instr = append(instr, InstrJg{JmpLabel{label}})
		case Le:
			instr = append(instr, InstrJle{JmpLabel{label}})
		case Ge:
			instr = append(instr, InstrJge{JmpLabel{label}})
		case Eq:
			instr = append(instr, InstrJe{JmpLabel{label}})
		case Neq:
			instr = append(instr, InstrJne{JmpLabel{label}})
		}
		instr = append(instr, InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{snakeFalse}}, InstrLabel{label})
		return instr
	case ArrayGet:
		instr := []Instr{InstrComment{"ArrayGet"}}
		instr = append(instr, checkArrayType(regRAX)...)
		instr = append(instr, InstrSub{Dst: regRAX, Src: ArgUnsigned{uint64(arrayTag)}})
		instr = append(instr, checkIndexType(regR10)...)
		instr = append(instr, checkBounding(regR10, regRAX)...)
		instr = append(instr, InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{
			Reg: regRAX, Offset: computedOffset(regR10, 4, 16)}}})
		return instr
	default:
		panic("codegen: unknown Prim2")
	}
}

// tailCopyDown overwrites the caller's own argument slots with the
// outgoing call's, preserving the return address, then jumps to the
// callee without growing the stack (proper tail call).
func tailCopyDown(space int32, slotCount int32, target x86asm.Reg) []Instr {
	instr := []Instr{InstrComment{"Tail call"}}
	argIdx := int32(8)
	for i := int32(0); i < slotCount; i++ {
		instr = append(instr,
			InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: regRSP, Offset: constOffset(-space - argIdx - 8)}}},
			InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-argIdx)}, Src: regRAX},
		)
		argIdx += 8
	}
	instr = append(instr,
		InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: target, Offset: constOffset(8)}}},
		InstrJmp{JmpReg{regRAX}},
	)
	return instr
}

func nonTailCall(space int32, target x86asm.Reg) []Instr {
	return []Instr{
		InstrSub{Dst: regRSP, Src: ArgSigned{int64(space)}},
		InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: target, Offset: constOffset(8)}}},
		InstrCall{JmpReg{regRAX}},
		InstrAdd{Dst: regRSP, Src: ArgSigned{int64(space)}},
	}
}

func (c *codegen) compile(e SeqExpr, env map[string]int32, classes map[string]classInfo, space int32, isTail bool, envSize int) []Instr {
	switch n := e.(type) {
	case SeqImm:
		return []Instr{InstrMovToReg{Dst: regRAX, Src: compileImm(n.Value, env)}}

	case SeqPrim1:
		instr := []Instr{InstrComment{"Prim1"}, InstrMovToReg{Dst: regRAX, Src: compileImm(n.Operand, env)}}
		instr = append(instr, checkPrim1Type(regRAX, n.Op)...)
		return append(instr, c.compilePrim1(n.Op, space)...)

	case SeqPrim2:
		instr := []Instr{InstrComment{"Prim2"}, InstrMovToReg{Dst: regRAX, Src: compileImm(n.Left, env)}}
		instr = append(instr, checkPrim2Type(regRAX, n.Op)...)
		instr = append(instr, InstrMovToReg{Dst: regR10, Src: compileImm(n.Right, env)})
		instr = append(instr, checkPrim2Type(regR10, n.Op)...)
		return append(instr, c.compilePrim2(n.Op)...)

	case SeqArray:
		return c.compileArrayLiteral(n.Elems, env, 0)

	case SeqArraySet:
		instr := []Instr{
			InstrComment{"ArraySet"},
			InstrMovToReg{Dst: regRAX, Src: compileImm(n.Array, env)},
		}
		instr = append(instr, checkArrayType(regRAX)...)
		instr = append(instr, InstrSub{Dst: regRAX, Src: ArgUnsigned{uint64(arrayTag)}})
		instr = append(instr, InstrMovToReg{Dst: regR10, Src: compileImm(n.Index, env)})
		instr = append(instr, checkIndexType(regR10)...)
		instr = append(instr, checkBounding(regR10, regRAX)...)
		instr = append(instr,
			InstrMovToReg{Dst: regRBX, Src: compileImm(n.Value, env)},
			InstrMovToMem{Dst: MemRef{Reg: regRAX, Offset: computedOffset(regR10, 4, 16)}, Src: regRBX},
			InstrAdd{Dst: regRAX, Src: ArgUnsigned{uint64(arrayTag)}},
		)
		return instr

	case *SeqLet:
		instr := c.compile(n.Bound, env, classes, space, false, envSize)
		newEnv := cloneOffsetEnv(env)
		newEnv[n.Var] = -8 * (int32(envSize) + 1)
		instr = append(instr, InstrComment{"Let"},
			InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: getOffset(newEnv, n.Var)}, Src: regRAX})
		return append(instr, c.compile(n.Body, newEnv, classes, space, isTail, envSize+1)...)

	case *SeqIf:
		ann := c.fresh()
		ifFalse := fmt.Sprintf("if_false_%d", ann)
		done := fmt.Sprintf("done_%d", ann)
		instr := []Instr{InstrComment{"If"}, InstrMovToReg{Dst: regRAX, Src: compileImm(n.Cond, env)}}
		instr = append(instr, checkIfType(regRAX)...)
		instr = append(instr,
			InstrMovToReg{Dst: regR10, Src: ArgUnsigned{snakeFalse}},
			InstrCmp{Left: regRAX, Right: ArgReg{regR10}},
			InstrJe{JmpLabel{ifFalse}},
		)
		instr = append(instr, c.compile(n.Then, env, classes, space, isTail, envSize)...)
		instr = append(instr, InstrJmp{JmpLabel{done}}, InstrLabel{ifFalse})
		instr = append(instr, c.compile(n.Else, env, classes, space, isTail, envSize)...)
		return append(instr, InstrLabel{done})

	case SeqMakeClosure:
		return []Instr{
			InstrComment{"MakeClosure"},
			InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{uint64(n.Arity)}},
			InstrMovToMem{Dst: MemRef{Reg: regR15, Offset: constOffset(0)}, Src: regRAX},
			InstrMovToReg{Dst: regRAX, Src: ArgLabel{n.Label}},
			InstrMovToMem{Dst: MemRef{Reg: regR15, Offset: constOffset(8)}, Src: regRAX},
			InstrMovToReg{Dst: regRAX, Src: compileImm(n.Env, env)},
			InstrMovToMem{Dst: MemRef{Reg: regR15, Offset: constOffset(16)}, Src: regRAX},
			InstrMovToReg{Dst: regRAX, Src: ArgReg{regR15}},
			InstrAdd{Dst: regRAX, Src: ArgUnsigned{uint64(closureTag)}},
			InstrAdd{Dst: regR15, Src: ArgUnsigned{24}},
		}

	case SeqCallClosure:
		instr := []Instr{
			InstrComment{"CallClosure"},
			InstrMovToReg{Dst: regR10, Src: compileImm(n.Fun, env)},
		}
		instr = append(instr, checkClosureType(regR10)...)
		instr = append(instr, InstrSub{Dst: regR10, Src: ArgUnsigned{uint64(closureTag)}})
		instr = append(instr, checkArityNumber(regR10, uint64(len(n.Args)))...)
		instr = append(instr, pushClosureCall(env, space, regR10, n.Args)...)
		if isTail {
			instr = append(instr, tailCopyDown(space, int32(len(n.Args)+1), regR10)...)
		} else {
			instr = append(instr, InstrComment{"CallClosure-Non Tail Recursion"})
			instr = append(instr, nonTailCall(space, regR10)...)
		}
		return instr

	case SeqObject:
		info, ok := classes[n.Class]
		if !ok {
			panic("codegen: class is guaranteed to be in scope")
		}
		instr := []Instr{InstrComment{"Object"}}
		if !c.omitFieldCountGuard {
			instr = append(instr, checkFieldNum(len(n.Fields), info.fieldSize)...)
		}
		instr = append(instr, c.compileObjectLiteral(info.id, n.Fields, env)...)
		return instr

	case SeqCallMethod:
		return c.compileCallMethod(n, env, classes, space, isTail)

	default:
		panic("codegen: unknown sequentialized expression")
	}
}

func cloneOffsetEnv(env map[string]int32) map[string]int32 {
	out := make(map[string]int32, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	return out
}

// compileArrayLiteral and compileObjectLiteral share the same heap
// layout: [classID-or-0, 2*len, elem0, elem1, ...], tagged with
// ARRAY_TAG once the bump pointer is captured.
func (c *codegen) compileArrayLiteral(elems []ImmExpr, env map[string]int32, classID uint64) []Instr {
	instr := []Instr{InstrComment{"Array"}}
	instr = append(instr,
		InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{classID}},
		InstrMovToMem{Dst: MemRef{Reg: regR15, Offset: constOffset(0)}, Src: regRAX},
		InstrMovToReg{Dst: regRAX, Src: ArgUnsigned{2 * uint64(len(elems))}},
		InstrMovToMem{Dst: MemRef{Reg: regR15, Offset: constOffset(8)}, Src: regRAX},
	)
	for i, el := range elems {
		instr = append(instr,
			InstrMovToReg{Dst: regRAX, Src: compileImm(el, env)},
			InstrMovToMem{Dst: MemRef{Reg: regR15, Offset: constOffset(int32(8 * (i + 2)))}, Src: regRAX},
		)
	}
	instr = append(instr,
		InstrMovToReg{Dst: regRAX, Src: ArgReg{regR15}},
		InstrAdd{Dst: regRAX, Src: ArgUnsigned{uint64(arrayTag)}},
		InstrAdd{Dst: regR15, Src: ArgUnsigned{uint64(8 * (len(elems) + 2))}},
	)
	return instr
}

func (c *codegen) compileObjectLiteral(classID int, fields []ImmExpr, env map[string]int32) []Instr {
	return c.compileArrayLiteral(fields, env, uint64(classID))
}

func pushClosureCall(env map[string]int32, space int32, closureReg x86asm.Reg, args []ImmExpr) []Instr {
	instr := []Instr{
		InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: closureReg, Offset: constOffset(16)}}},
		InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-space - 16)}, Src: regRAX},
	}
	count := int32(24)
	for _, a := range args {
		instr = append(instr,
			InstrMovToReg{Dst: regRAX, Src: compileImm(a, env)},
			InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-space - count)}, Src: regRAX},
		)
		count += 8
	}
	return instr
}

func pushMethodCall(env map[string]int32, space int32, closureReg x86asm.Reg, object ImmExpr, args []ImmExpr) []Instr {
	instr := []Instr{
		InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: closureReg, Offset: constOffset(16)}}},
		InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-space - 16)}, Src: regRAX},
		InstrMovToReg{Dst: regRAX, Src: compileImm(object, env)},
		InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-space - 24)}, Src: regRAX},
	}
	count := int32(32)
	for _, a := range args {
		instr = append(instr,
			InstrMovToReg{Dst: regRAX, Src: compileImm(a, env)},
			InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-space - count)}, Src: regRAX},
		)
		count += 8
	}
	return instr
}

// compileCallMethod implements the redesigned dispatch: every
// candidate class the uniquifier recorded for this call site is
// checked against the object's runtime class id, in ascending class-id
// order, and each match jumps straight to that candidate's own
// method-call block — as opposed to checking only the first candidate
// and then invoking whichever candidate happened to be visited first,
// which is what the original compiler did.
func (c *codegen) compileCallMethod(n SeqCallMethod, env map[string]int32, classes map[string]classInfo, space int32, isTail bool) []Instr {
	cands := methodForClass(n.Dispatch, classes)
	ann := c.fresh()

	instr := []Instr{
		InstrComment{"CallMethod"},
		InstrMovToReg{Dst: regRAX, Src: compileImm(n.Object, env)},
	}
	instr = append(instr, checkArrayType(regRAX)...)
	instr = append(instr, InstrSub{Dst: regRAX, Src: ArgUnsigned{uint64(arrayTag)}})

	labels := make([]string, len(cands))
	instr = append(instr, InstrComment{"check object and method type"})
	for i, cand := range cands {
		labels[i] = fmt.Sprintf("Method_%d_%d", ann, cand.ClassID)
		instr = append(instr,
			InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(errMethodType)}},
			InstrMovToReg{Dst: regR11, Src: ArgUnsigned{uint64(cand.ClassID)}},
			InstrCmp{Left: regR11, Right: ArgMem{MemRef{Reg: regRAX, Offset: constOffset(0)}}},
			InstrJe{JmpLabel{labels[i]}},
		)
	}
	doneLabel := fmt.Sprintf("Method_done_%d", ann)
	instr = append(instr, InstrJmp{JmpLabel{snakeErrLabel}})

	for i, cand := range cands {
		instr = append(instr, InstrLabel{labels[i]})
		instr = append(instr, InstrMovToReg{Dst: regR10, Src: compileImm(ImmVar{cand.Method}, env)})
		instr = append(instr, checkClosureType(regR10)...)
		instr = append(instr, InstrSub{Dst: regR10, Src: ArgUnsigned{uint64(closureTag)}})
		instr = append(instr, checkArityNumber(regR10, uint64(len(n.Args)+1))...)
		instr = append(instr, pushMethodCall(env, space, regR10, n.Object, n.Args)...)
		if isTail {
			instr = append(instr, tailCopyDown(space, int32(len(n.Args)+2), regR10)...)
		} else {
			instr = append(instr, InstrComment{"CallMethod-Non Tail Recursion"})
			instr = append(instr, nonTailCall(space, regR10)...)
			instr = append(instr, InstrJmp{JmpLabel{doneLabel}})
		}
	}
	instr = append(instr, InstrLabel{doneLabel})
	return instr
}

func spaceNeededHelper(e SeqExpr) int32 {
	switch n := e.(type) {
	case *SeqLet:
		bound := spaceNeededHelper(n.Bound)
		body := 1 + spaceNeededHelper(n.Body)
		if bound > body {
			return bound
		}
		return body
	case *SeqIf:
		t := spaceNeededHelper(n.Then)
		e2 := spaceNeededHelper(n.Else)
		if t > e2 {
			return t
		}
		return e2
	default:
		return 0
	}
}

func spaceNeeded(e SeqExpr, argNum int32) int32 {
	varNum := spaceNeededHelper(e) + argNum
	if varNum%2 == 0 {
		return 8*varNum + 8
	}
	return 8 * varNum
}

func initPointers() []Instr {
	return []Instr{InstrMovToReg{Dst: regR15, Src: ArgLabel{"HEAP"}}}
}

// compileToInstrs lowers the whole sequentialized program: the program
// body (always in tail position, since it returns straight to the
// caller of `main`), then every free function, then every method, then
// the shared error trampoline.
func compileToInstrs(p *seqProgram, cfg *Config) []Instr {
	c := &codegen{omitFieldCountGuard: cfg.GetBool("compiler.omit_field_count_guard")}
	instr := c.compile(p.Main, map[string]int32{}, p.Classes, spaceNeeded(p.Main, 0), true, 0)
	instr = append(instr, InstrRet{})

	for _, fn := range p.Funs {
		instr = append(instr, InstrLabel{fn.Name})
		env := paramEnv(fn.Parameters)
		instr = append(instr, c.compile(fn.Body, env, p.Classes, spaceNeeded(fn.Body, int32(len(fn.Parameters))), true, len(fn.Parameters))...)
		instr = append(instr, InstrRet{})
	}

	for _, m := range p.Methods {
		instr = append(instr, InstrLabel{m.Name})
		env := paramEnv(m.Parameters)
		instr = append(instr, c.compile(m.Body, env, p.Classes, spaceNeeded(m.Body, int32(len(m.Parameters))), true, len(m.Parameters))...)
		instr = append(instr, InstrRet{})
	}

	instr = append(instr, callError()...)
	return instr
}

func paramEnv(params []string) map[string]int32 {
	env := make(map[string]int32, len(params))
	for i, p := range params {
		env[p] = -8 * (int32(i) + 1)
	}
	return env
}

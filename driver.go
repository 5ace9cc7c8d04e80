package snakec

import "fmt"

// seqFunDecl and seqMethodDecl are the sequentialized counterparts of
// FunDecl/MethodDecl, produced once lambda-lifted bodies have been run
// through Sequentialize (compile.rs's sequentialize_program).
type seqFunDecl struct {
	Name       string
	Parameters []string
	Body       SeqExpr
}

type seqMethodDecl struct {
	ClassID    int
	Name       string
	Parameters []string
	Body       SeqExpr
}

// seqProgram is the fully-lowered program codegen consumes: the class
// table, every free function and method in A-normal form, and the
// entry body (compile.rs's SeqProg).
type seqProgram struct {
	Classes map[string]classInfo
	Funs    []*seqFunDecl
	Methods []*seqMethodDecl
	Main    SeqExpr
}

func sequentializeProgram(classes map[string]classInfo, funs []*FunDecl, methods []*MethodDecl, main Expr) *seqProgram {
	seqFuns := make([]*seqFunDecl, len(funs))
	for i, f := range funs {
		seqFuns[i] = &seqFunDecl{Name: f.Name, Parameters: f.Parameters, Body: Sequentialize(f.Body)}
	}
	seqMethods := make([]*seqMethodDecl, len(methods))
	for i, m := range methods {
		seqMethods[i] = &seqMethodDecl{
			ClassID:    m.ClassID,
			Name:       m.Decl.Name,
			Parameters: m.Decl.Parameters,
			Body:       Sequentialize(m.Decl.Body),
		}
	}
	return &seqProgram{Classes: classes, Funs: seqFuns, Methods: seqMethods, Main: Sequentialize(main)}
}

// nasmTemplate is the fixed frame every compiled program is wrapped
// in: a 1024-word heap, the runtime's snake_error/print_snake_val
// externs, and a start_here entry point that sets up the heap pointer
// before calling main (compile.rs's compile_to_string).
const nasmTemplate = `section .data
HEAP:   times 1024 dq 0
section .text
        global start_here
        extern snake_error
        extern print_snake_val
start_here:
%s        call main
        ret
main:
%s
`

// Compile runs the full pipeline — validate, uniquify, lift classes,
// lift lambdas, sequentialize, and generate code — on a surface
// program, returning the NASM source for the whole unit (spec.md §4).
// A nil cfg falls back to NewConfig's defaults.
func Compile(prog Expr, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := Validate(prog); err != nil {
		return "", err
	}
	uniq := Uniquify(prog)
	classes, classLifted := ClassLift(uniq)
	funs, methods, main := LambdaLift(classLifted)
	seqProg := sequentializeProgram(classes, funs, methods, main)

	body := compileToInstrs(seqProg, cfg)
	return fmt.Sprintf(nasmTemplate, InstrsToString(initPointers()), InstrsToString(body)), nil
}

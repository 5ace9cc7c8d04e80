package snakec

import (
	"fmt"
	"strings"
)

// InstrsToString renders a straight-line instruction sequence as
// indented NASM source, one instruction per line (compile.rs's
// instrs_to_string).
func InstrsToString(instrs []Instr) string {
	var b strings.Builder
	for _, in := range instrs {
		switch i := in.(type) {
		case InstrLabel:
			fmt.Fprintf(&b, "%s:\n", i.Name)
		case InstrComment:
			fmt.Fprintf(&b, "  ; %s\n", i.Text)
		default:
			fmt.Fprintf(&b, "  %s\n", instrToString(in))
		}
	}
	return b.String()
}

func instrToString(in Instr) string {
	switch i := in.(type) {
	case InstrMovToReg:
		return fmt.Sprintf("mov %s, %s", regName(i.Dst), argString(i.Src))
	case InstrMovToMem:
		return fmt.Sprintf("mov %s, %s", memString(i.Dst), regName(i.Src))
	case InstrAdd:
		return fmt.Sprintf("add %s, %s", regName(i.Dst), argString(i.Src))
	case InstrSub:
		return fmt.Sprintf("sub %s, %s", regName(i.Dst), argString(i.Src))
	case InstrIMul:
		return fmt.Sprintf("imul %s, %s", regName(i.Dst), argString(i.Src))
	case InstrAnd:
		return fmt.Sprintf("and %s, %s", regName(i.Dst), argString(i.Src))
	case InstrOr:
		return fmt.Sprintf("or %s, %s", regName(i.Dst), argString(i.Src))
	case InstrXor:
		return fmt.Sprintf("xor %s, %s", regName(i.Dst), argString(i.Src))
	case InstrSar:
		return fmt.Sprintf("sar %s, %s", regName(i.Dst), argString(i.Src))
	case InstrShl:
		return fmt.Sprintf("shl %s, %s", regName(i.Dst), argString(i.Src))
	case InstrCmp:
		return fmt.Sprintf("cmp %s, %s", regName(i.Left), argString(i.Right))
	case InstrTest:
		return fmt.Sprintf("test %s, %s", regName(i.Left), argString(i.Right))
	case InstrJmp:
		return fmt.Sprintf("jmp %s", jmpArgString(i.Target))
	case InstrJe:
		return fmt.Sprintf("je %s", jmpArgString(i.Target))
	case InstrJne:
		return fmt.Sprintf("jne %s", jmpArgString(i.Target))
	case InstrJnz:
		return fmt.Sprintf("jnz %s", jmpArgString(i.Target))
	case InstrJl:
		return fmt.Sprintf("jl %s", jmpArgString(i.Target))
	case InstrJle:
		return fmt.Sprintf("jle %s", jmpArgString(i.Target))
	case InstrJg:
		return fmt.Sprintf("jg %s", jmpArgString(i.Target))
	case InstrJge:
		return fmt.Sprintf("jge %s", jmpArgString(i.Target))
	case InstrJo:
		return fmt.Sprintf("jo %s", jmpArgString(i.Target))
	case InstrCall:
		return fmt.Sprintf("call %s", jmpArgString(i.Target))
	case InstrRet:
		return "ret"
	default:
		panic("asm printer: unknown instruction")
	}
}

func regName(r interface{ String() string }) string {
	return strings.ToLower(r.String())
}

func argString(a Arg) string {
	switch v := a.(type) {
	case ArgSigned:
		return fmt.Sprintf("%d", v.Value)
	case ArgUnsigned:
		return fmt.Sprintf("%d", v.Value)
	case ArgReg:
		return regName(v.Reg)
	case ArgMem:
		return memString(v.Mem)
	case ArgLabel:
		return v.Label
	default:
		panic("asm printer: unknown arg")
	}
}

func memString(m MemRef) string {
	switch m.Offset.Kind {
	case OffsetConstant:
		if m.Offset.Constant == 0 {
			return fmt.Sprintf("qword [%s]", regName(m.Reg))
		}
		return fmt.Sprintf("qword [%s + %d]", regName(m.Reg), m.Offset.Constant)
	case OffsetComputed:
		return fmt.Sprintf("qword [%s + %s * %d + %d]",
			regName(m.Reg), regName(m.Offset.Reg), m.Offset.Factor, m.Offset.Constant)
	default:
		panic("asm printer: unknown offset kind")
	}
}

func jmpArgString(j JmpArg) string {
	switch v := j.(type) {
	case JmpLabel:
		return v.Label
	case JmpReg:
		return regName(v.Reg)
	default:
		panic("asm printer: unknown jump target")
	}
}

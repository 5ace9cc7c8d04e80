package snakec

import "golang.org/x/arch/x86/x86asm"

// Registers are named with the x86asm.Reg enum from golang.org/x/arch
// rather than a hand-rolled one, the same package the rest of this
// corpus reaches for when it needs canonical x86 register identities.
// Only a handful of general-purpose 64-bit registers are ever used by
// generated code.
const (
	regRAX = x86asm.RAX
	regRBX = x86asm.RBX
	regRDI = x86asm.RDI
	regRSP = x86asm.RSP
	regR10 = x86asm.R10
	regR11 = x86asm.R11
	regR15 = x86asm.R15
)

// Offset is the displacement half of a memory operand: either a
// constant byte offset from the base register, or one computed from a
// second register scaled by factor plus a constant (used for indexed
// array/field access), mirroring the original compiler's asm module.
type Offset struct {
	Kind     OffsetKind
	Constant int32
	Reg      x86asm.Reg
	Factor   int32
}

type OffsetKind int

const (
	OffsetConstant OffsetKind = iota
	OffsetComputed
)

func constOffset(c int32) Offset { return Offset{Kind: OffsetConstant, Constant: c} }

func computedOffset(reg x86asm.Reg, factor, constant int32) Offset {
	return Offset{Kind: OffsetComputed, Reg: reg, Factor: factor, Constant: constant}
}

// MemRef is a `[base + offset]` memory operand.
type MemRef struct {
	Reg    x86asm.Reg
	Offset Offset
}

// Arg is any operand to an instruction: an immediate, a register, a
// memory reference, or a code label used as an immediate address.
type Arg interface{ isArg() }

type ArgSigned struct{ Value int64 }
type ArgUnsigned struct{ Value uint64 }
type ArgReg struct{ Reg x86asm.Reg }
type ArgMem struct{ Mem MemRef }
type ArgLabel struct{ Label string }

func (ArgSigned) isArg()   {}
func (ArgUnsigned) isArg() {}
func (ArgReg) isArg()      {}
func (ArgMem) isArg()      {}
func (ArgLabel) isArg()    {}

// JmpArg is the target of a jump or call: a label or an indirect
// register (used for closure calls and proper tail calls).
type JmpArg interface{ isJmpArg() }

type JmpLabel struct{ Label string }
type JmpReg struct{ Reg x86asm.Reg }

func (JmpLabel) isJmpArg() {}
func (JmpReg) isJmpArg()   {}

// Instr is one generated instruction. Two-operand instructions always
// write to a register or memory operand on their left; NASM's
// encoding rules (no mem-to-mem) are enforced by construction, not by
// a runtime check, since every emitter in this package only ever
// builds well-formed operand pairs.
type Instr interface{ isInstr() }

type InstrMovToReg struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrMovToMem struct {
	Dst MemRef
	Src x86asm.Reg
}
type InstrAdd struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrSub struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrIMul struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrAnd struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrOr struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrXor struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrSar struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrShl struct {
	Dst x86asm.Reg
	Src Arg
}
type InstrCmp struct {
	Left  x86asm.Reg
	Right Arg
}
type InstrTest struct {
	Left  x86asm.Reg
	Right Arg
}
type InstrLabel struct{ Name string }
type InstrComment struct{ Text string }
type InstrJmp struct{ Target JmpArg }
type InstrJe struct{ Target JmpArg }
type InstrJne struct{ Target JmpArg }
type InstrJnz struct{ Target JmpArg }
type InstrJl struct{ Target JmpArg }
type InstrJle struct{ Target JmpArg }
type InstrJg struct{ Target JmpArg }
type InstrJge struct{ Target JmpArg }
type InstrJo struct{ Target JmpArg }
type InstrCall struct{ Target JmpArg }
type InstrRet struct{}

func (InstrMovToReg) isInstr() {}
func (InstrMovToMem) isInstr() {}
func (InstrAdd) isInstr()      {}
func (InstrSub) isInstr()      {}
func (InstrIMul) isInstr()     {}
func (InstrAnd) isInstr()      {}
func (InstrOr) isInstr()       {}
func (InstrXor) isInstr()      {}
func (InstrSar) isInstr()      {}
func (InstrShl) isInstr()      {}
func (InstrCmp) isInstr()      {}
func (InstrTest) isInstr()     {}
func (InstrLabel) isInstr()    {}
func (InstrComment) isInstr()  {}
func (InstrJmp) isInstr()      {}
func (InstrJe) isInstr()       {}
func (InstrJne) isInstr()      {}
func (InstrJnz) isInstr()      {}
func (InstrJl) isInstr()       {}
func (InstrJle) isInstr()      {}
func (InstrJg) isInstr()       {}
func (InstrJge) isInstr()      {}
func (InstrJo) isInstr()       {}
func (InstrCall) isInstr()     {}
func (InstrRet) isInstr()      {}

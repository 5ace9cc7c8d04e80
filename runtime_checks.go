package snakec

import (
	"sort"

	"golang.org/x/arch/x86/x86asm"
)

// Tag bits and boxed-boolean constants for the value representation
// (spec.md §3.5; exact magnitudes taken from runtime/stub.rs).
const (
	intTag     uint64 = 0x1
	tagMask    uint64 = 0b111
	boolTag    uint32 = 0b111
	arrayTag   uint32 = 0b001
	closureTag uint32 = 0b011
	xorNot     uint64 = 0x8000000000000000

	snakeTrue  uint64 = 0xFFFFFFFFFFFFFFFF
	snakeFalse uint64 = 0x7FFFFFFFFFFFFFFF
)

// runtimeErr is the stable error code passed to snake_error in Rdi;
// values and ordering must match the external runtime's error table
// (spec.md §6.3).
type runtimeErr int

const (
	errIf runtimeErr = iota
	errCmp
	errArith
	errLogic
	errOverflowRuntime
	errArray
	errIndex
	errBounding
	errLength
	errClosure
	errArity
	errMethodType
	errFieldNum
)

const snakeErrLabel = "snake_err"

func checkOverflow() []Instr {
	return []Instr{
		InstrComment{"check calculation result overflow"},
		InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(errOverflowRuntime)}},
		InstrJo{JmpLabel{snakeErrLabel}},
	}
}

type valueType int

const (
	typeNum valueType = iota
	typeBool
	typeArray
	typeClosure
)

func checkRegType(reg x86asm.Reg, ty valueType, err runtimeErr) []Instr {
	if ty == typeNum {
		return []Instr{
			InstrComment{"check number type"},
			InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(err)}},
			InstrMovToReg{Dst: regRBX, Src: ArgUnsigned{intTag}},
			InstrTest{Left: regRBX, Right: ArgReg{reg}},
			InstrJnz{JmpLabel{snakeErrLabel}},
		}
	}
	var tag uint32
	switch ty {
	case typeBool:
		tag = boolTag
	case typeArray:
		tag = arrayTag
	case typeClosure:
		tag = closureTag
	}
	return []Instr{
		InstrComment{"check boolean/array/closure type"},
		InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(err)}},
		InstrMovToReg{Dst: regRBX, Src: ArgUnsigned{tagMask}},
		InstrAnd{Dst: regRBX, Src: ArgReg{reg}},
		InstrCmp{Left: regRBX, Right: ArgUnsigned{uint64(tag)}},
		InstrJne{JmpLabel{snakeErrLabel}},
	}
}

func checkPrim1Type(reg x86asm.Reg, p Prim1) []Instr {
	switch p {
	case Add1, Sub1:
		return checkRegType(reg, typeNum, errArith)
	case Not:
		return checkRegType(reg, typeBool, errLogic)
	case Length:
		return checkRegType(reg, typeArray, errLength)
	default:
		return nil
	}
}

func checkPrim2Type(reg x86asm.Reg, p Prim2) []Instr {
	switch p {
	case Lt, Gt, Le, Ge:
		return checkRegType(reg, typeNum, errCmp)
	case Add, Sub, Mul:
		return checkRegType(reg, typeNum, errArith)
	case And, Or:
		return checkRegType(reg, typeBool, errLogic)
	default:
		return nil
	}
}

func checkIfType(reg x86asm.Reg) []Instr      { return checkRegType(reg, typeBool, errIf) }
func checkArrayType(reg x86asm.Reg) []Instr    { return checkRegType(reg, typeArray, errArray) }
func checkIndexType(reg x86asm.Reg) []Instr    { return checkRegType(reg, typeNum, errIndex) }
func checkClosureType(reg x86asm.Reg) []Instr  { return checkRegType(reg, typeClosure, errClosure) }

func checkBounding(indexReg, addrReg x86asm.Reg) []Instr {
	return []Instr{
		InstrComment{"check array index bounding"},
		InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(errBounding)}},
		InstrCmp{Left: indexReg, Right: ArgMem{MemRef{Reg: addrReg, Offset: constOffset(8)}}},
		InstrJge{JmpLabel{snakeErrLabel}},
		InstrCmp{Left: indexReg, Right: ArgSigned{0}},
		InstrJl{JmpLabel{snakeErrLabel}},
	}
}

func checkArityNumber(reg x86asm.Reg, argNum uint64) []Instr {
	return []Instr{
		InstrComment{"check arity number"},
		InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(errArity)}},
		InstrMovToReg{Dst: regRBX, Src: ArgUnsigned{argNum}},
		InstrCmp{Left: regRBX, Right: ArgMem{MemRef{Reg: reg, Offset: constOffset(0)}}},
		InstrJne{JmpLabel{snakeErrLabel}},
	}
}

// methodForClass returns, for every class the uniquifier's dispatch
// table names at this call site, the runtime class id and the method
// symbol to invoke when the object's class id matches it — sorted by
// class id so codegen renders a deterministic comparison chain.
// Codegen compares the object's runtime class id against every
// candidate in turn and jumps straight to that candidate's own
// method-call block, rather than checking only one arbitrary candidate
// and then invoking whichever candidate happened to be visited first
// (the original compiler's bug).
func methodForClass(dispatch map[string]string, classes map[string]classInfo) []struct {
	ClassID int
	Method  string
} {
	var out []struct {
		ClassID int
		Method  string
	}
	for className, methodSym := range dispatch {
		out = append(out, struct {
			ClassID int
			Method  string
		}{classes[className].id, methodSym})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassID < out[j].ClassID })
	return out
}

func checkFieldNum(actual, correct int) []Instr {
	if actual == correct {
		return nil
	}
	return []Instr{
		InstrMovToReg{Dst: regRDI, Src: ArgUnsigned{uint64(errFieldNum)}},
		InstrJmp{JmpLabel{snakeErrLabel}},
	}
}

func callError() []Instr {
	return []Instr{
		InstrLabel{snakeErrLabel},
		InstrCall{JmpLabel{"snake_error"}},
	}
}

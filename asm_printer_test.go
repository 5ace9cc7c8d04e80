package snakec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrsToString_LabelsAndComments(t *testing.T) {
	out := InstrsToString([]Instr{
		InstrLabel{"main"},
		InstrComment{"Add"},
		InstrMovToReg{Dst: regRAX, Src: ArgSigned{2}},
	})
	assert.Equal(t, "main:\n  ; Add\n  mov rax, 2\n", out)
}

func TestInstrsToString_MemAndIndirectJump(t *testing.T) {
	out := InstrsToString([]Instr{
		InstrMovToMem{Dst: MemRef{Reg: regRSP, Offset: constOffset(-16)}, Src: regRAX},
		InstrCmp{Left: regR10, Right: ArgMem{MemRef{Reg: regRAX, Offset: constOffset(0)}}},
		InstrJmp{JmpReg{regR10}},
		InstrCall{JmpLabel{"print_snake_val"}},
	})
	assert.Equal(t, "  mov qword [rsp + -16], rax\n  cmp r10, qword [rax]\n  jmp r10\n  call print_snake_val\n", out)
}

func TestInstrsToString_ComputedOffset(t *testing.T) {
	out := InstrsToString([]Instr{
		InstrMovToReg{Dst: regRAX, Src: ArgMem{MemRef{Reg: regR10, Offset: computedOffset(regR11, 4, 16)}}},
	})
	assert.Equal(t, "  mov rax, qword [r10 + r11 * 4 + 16]\n", out)
}

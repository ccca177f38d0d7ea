package runtime

import "github.com/rv32im/tracevm/pkg/isa"

// evalAlu computes a = f(opcode, b, c) per spec.md §4.3's semantics table.
// Shift amounts are masked to the low 5 bits per RV32; wrap_add/sub/mul
// fall out of Go's native fixed-width uint32 arithmetic. Go's spec defines
// MinInt32 / -1 to wrap to MinInt32 (not panic) for the same reason Rust's
// wrapping_div does, so DIV needs no special case beyond division-by-zero.
func evalAlu(opcode isa.Opcode, b, c uint32) uint32 {
	switch opcode {
	case isa.ADD:
		return b + c
	case isa.SUB:
		return b - c
	case isa.XOR:
		return b ^ c
	case isa.OR:
		return b | c
	case isa.AND:
		return b & c
	case isa.SLL:
		return b << (c & 0x1F)
	case isa.SRL:
		return b >> (c & 0x1F)
	case isa.SRA:
		return uint32(int32(b) >> (c & 0x1F))
	case isa.SLT:
		if int32(b) < int32(c) {
			return 1
		}
		return 0
	case isa.SLTU:
		if b < c {
			return 1
		}
		return 0
	case isa.MUL:
		return b * c
	case isa.MULH:
		return uint32((int64(int32(b)) * int64(int32(c))) >> 32)
	case isa.MULHU:
		return uint32((uint64(b) * uint64(c)) >> 32)
	case isa.MULHSU:
		return uint32((int64(int32(b)) * int64(c)) >> 32)
	case isa.DIV:
		if c == 0 {
			return 0xFFFFFFFF
		}
		return uint32(int32(b) / int32(c))
	case isa.DIVU:
		if c == 0 {
			return 0xFFFFFFFF
		}
		return b / c
	case isa.REM:
		if c == 0 {
			return b
		}
		return uint32(int32(b) % int32(c))
	case isa.REMU:
		if c == 0 {
			return b
		}
		return b % c
	default:
		panic("runtime: evalAlu called with a non-ALU opcode")
	}
}

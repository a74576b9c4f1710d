// Package insts provides instruction definitions and decoding for the
// 32-bit word machine.
//
// Every instruction is a single 32-bit word. The top four bits select one of
// sixteen opcodes. Two layouts exist:
//   - Standard: register A in bits [8:6], B in bits [5:3], C in bits [2:0]
//   - Immediate: destination register in bits [27:25], a 25-bit unsigned
//     value in bits [24:0] (load-immediate only)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x30000053) // add r1, r2, r3
//	fmt.Printf("Op: %v, A: %d, B: %d, C: %d\n", inst.Op, inst.A, inst.B, inst.C)
package insts

package insts

import "fmt"

// Op represents a machine opcode. The numeric value is the opcode field.
type Op uint8

// Machine opcodes.
const (
	OpConditionalMove Op = iota
	OpArrayIndex
	OpArrayAmendment
	OpAdd
	OpMul
	OpDiv
	OpNand
	OpHalt
	OpAlloc
	OpAbandon
	OpOutput
	OpInput
	OpLoadProgram
	OpLoadImmediate
	OpSub
	OpMod

	// OpUnknown marks a word whose opcode field has no defined instruction.
	OpUnknown Op = 0xFF
)

// NumOps is the number of defined opcodes.
const NumOps = 16

var opNames = [NumOps]string{
	OpConditionalMove: "cmov",
	OpArrayIndex:      "index",
	OpArrayAmendment:  "amend",
	OpAdd:             "add",
	OpMul:             "mul",
	OpDiv:             "div",
	OpNand:            "nand",
	OpHalt:            "halt",
	OpAlloc:           "alloc",
	OpAbandon:         "abandon",
	OpOutput:          "out",
	OpInput:           "in",
	OpLoadProgram:     "ldprog",
	OpLoadImmediate:   "ldi",
	OpSub:             "sub",
	OpMod:             "mod",
}

// String returns the mnemonic of the opcode.
func (op Op) String() string {
	if op.Valid() {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Valid reports whether op names a defined instruction.
func (op Op) Valid() bool {
	return op < NumOps
}

// Format represents an instruction encoding layout.
type Format uint8

// Instruction formats.
const (
	FormatUnknown   Format = iota
	FormatStandard         // opcode + three 3-bit register fields
	FormatImmediate        // opcode + register + 25-bit value
)

// Field layout of an instruction word.
const (
	OpShift     = 28
	RegAShift   = 6
	RegBShift   = 3
	RegCShift   = 0
	RegMask     = 0x7
	ImmRegShift = 25
	ImmMask     = 1<<25 - 1
)

// Instruction represents a decoded instruction word.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding layout

	// Register fields. For the immediate layout A holds the destination
	// register and B, C are zero.
	A uint8
	B uint8
	C uint8

	// Imm is the 25-bit value of a load-immediate.
	Imm uint32

	// Word is the raw encoding.
	Word uint32
}

// String renders the instruction in mnemonic form.
func (i *Instruction) String() string {
	switch i.Op {
	case OpHalt:
		return "halt"
	case OpLoadImmediate:
		return fmt.Sprintf("ldi r%d, %d", i.A, i.Imm)
	case OpOutput, OpInput, OpAbandon:
		return fmt.Sprintf("%s r%d", i.Op, i.C)
	case OpLoadProgram:
		return fmt.Sprintf("ldprog r%d, r%d", i.B, i.C)
	case OpAlloc:
		return fmt.Sprintf("alloc r%d, r%d", i.A, i.B)
	case OpUnknown:
		return fmt.Sprintf(".word 0x%08X", i.Word)
	default:
		return fmt.Sprintf("%s r%d, r%d, r%d", i.Op, i.A, i.B, i.C)
	}
}

// Decoder decodes machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. Words whose opcode field has no
// defined instruction decode with Op set to OpUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown, Word: word}

	op := Op(word >> OpShift)
	if !op.Valid() {
		return inst
	}

	inst.Op = op
	if op == OpLoadImmediate {
		d.decodeImmediate(word, inst)
	} else {
		d.decodeStandard(word, inst)
	}

	return inst
}

// decodeStandard decodes the three-register layout.
// Format: op[31:28] | unused[27:9] | A[8:6] | B[5:3] | C[2:0]
func (d *Decoder) decodeStandard(word uint32, inst *Instruction) {
	inst.Format = FormatStandard
	inst.A = uint8((word >> RegAShift) & RegMask)
	inst.B = uint8((word >> RegBShift) & RegMask)
	inst.C = uint8((word >> RegCShift) & RegMask)
}

// decodeImmediate decodes the load-immediate layout.
// Format: op[31:28] | A[27:25] | value[24:0]
func (d *Decoder) decodeImmediate(word uint32, inst *Instruction) {
	inst.Format = FormatImmediate
	inst.A = uint8((word >> ImmRegShift) & RegMask)
	inst.Imm = word & ImmMask
}

// Disassemble decodes every word of a program into mnemonic text.
func Disassemble(program []uint32) []string {
	d := NewDecoder()
	lines := make([]string, len(program))
	for i, w := range program {
		lines[i] = d.Decode(w).String()
	}
	return lines
}

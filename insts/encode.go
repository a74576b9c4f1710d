package insts

// Encode packs a standard-layout instruction. Register indices are masked to
// three bits.
func Encode(op Op, a, b, c uint8) uint32 {
	return uint32(op&0xF)<<OpShift |
		uint32(a&RegMask)<<RegAShift |
		uint32(b&RegMask)<<RegBShift |
		uint32(c&RegMask)<<RegCShift
}

// EncodeImmediate packs a load-immediate instruction. Values wider than 25
// bits are truncated.
func EncodeImmediate(reg uint8, value uint32) uint32 {
	return uint32(OpLoadImmediate)<<OpShift |
		uint32(reg&RegMask)<<ImmRegShift |
		value&ImmMask
}

// EncodeCMov encodes: if rC != 0 then rA = rB.
func EncodeCMov(a, b, c uint8) uint32 { return Encode(OpConditionalMove, a, b, c) }

// EncodeIndex encodes: rA = array[rB][rC].
func EncodeIndex(a, b, c uint8) uint32 { return Encode(OpArrayIndex, a, b, c) }

// EncodeAmend encodes: array[rA][rB] = rC.
func EncodeAmend(a, b, c uint8) uint32 { return Encode(OpArrayAmendment, a, b, c) }

// EncodeAdd encodes: rA = rB + rC.
func EncodeAdd(a, b, c uint8) uint32 { return Encode(OpAdd, a, b, c) }

// EncodeSub encodes: rA = rB - rC.
func EncodeSub(a, b, c uint8) uint32 { return Encode(OpSub, a, b, c) }

// EncodeMul encodes: rA = rB * rC.
func EncodeMul(a, b, c uint8) uint32 { return Encode(OpMul, a, b, c) }

// EncodeDiv encodes: rA = rB / rC.
func EncodeDiv(a, b, c uint8) uint32 { return Encode(OpDiv, a, b, c) }

// EncodeMod encodes: rA = rB % rC.
func EncodeMod(a, b, c uint8) uint32 { return Encode(OpMod, a, b, c) }

// EncodeNand encodes: rA = ^(rB & rC).
func EncodeNand(a, b, c uint8) uint32 { return Encode(OpNand, a, b, c) }

// EncodeHalt encodes a halt.
func EncodeHalt() uint32 { return Encode(OpHalt, 0, 0, 0) }

// EncodeAlloc encodes: rA = alloc(rB words).
func EncodeAlloc(a, b uint8) uint32 { return Encode(OpAlloc, a, b, 0) }

// EncodeAbandon encodes: abandon(rC).
func EncodeAbandon(c uint8) uint32 { return Encode(OpAbandon, 0, 0, c) }

// EncodeOutput encodes: emit the low byte of rC.
func EncodeOutput(c uint8) uint32 { return Encode(OpOutput, 0, 0, c) }

// EncodeInput encodes: rC = next input byte.
func EncodeInput(c uint8) uint32 { return Encode(OpInput, 0, 0, c) }

// EncodeLoadProgram encodes: active array = rB, pc = rC.
func EncodeLoadProgram(b, c uint8) uint32 { return Encode(OpLoadProgram, 0, b, c) }

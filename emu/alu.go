package emu

// ALU implements the machine's register-to-register operations.
// Results wrap modulo 2^32.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// CMOV performs a conditional move: if rc != 0 then ra = rb
func (a *ALU) CMOV(ra, rb, rc uint8) {
	if a.regFile.ReadReg(rc) != 0 {
		a.regFile.WriteReg(ra, a.regFile.ReadReg(rb))
	}
}

// ADD performs addition: ra = rb + rc
func (a *ALU) ADD(ra, rb, rc uint8) {
	a.regFile.WriteReg(ra, a.regFile.ReadReg(rb)+a.regFile.ReadReg(rc))
}

// SUB performs subtraction: ra = rb - rc
func (a *ALU) SUB(ra, rb, rc uint8) {
	a.regFile.WriteReg(ra, a.regFile.ReadReg(rb)-a.regFile.ReadReg(rc))
}

// MUL performs multiplication: ra = rb * rc
func (a *ALU) MUL(ra, rb, rc uint8) {
	a.regFile.WriteReg(ra, a.regFile.ReadReg(rb)*a.regFile.ReadReg(rc))
}

// DIV performs unsigned division: ra = rb / rc
// The destination is left untouched when rc is zero.
func (a *ALU) DIV(ra, rb, rc uint8) error {
	divisor := a.regFile.ReadReg(rc)
	if divisor == 0 {
		return ErrDivisionByZero
	}

	a.regFile.WriteReg(ra, a.regFile.ReadReg(rb)/divisor)
	return nil
}

// MOD performs unsigned remainder: ra = rb % rc
// The destination is left untouched when rc is zero.
func (a *ALU) MOD(ra, rb, rc uint8) error {
	divisor := a.regFile.ReadReg(rc)
	if divisor == 0 {
		return ErrDivisionByZero
	}

	a.regFile.WriteReg(ra, a.regFile.ReadReg(rb)%divisor)
	return nil
}

// NAND performs bitwise not-and: ra = ^(rb & rc)
func (a *ALU) NAND(ra, rb, rc uint8) {
	a.regFile.WriteReg(ra, ^(a.regFile.ReadReg(rb) & a.regFile.ReadReg(rc)))
}

// LDI loads a 25-bit immediate: ra = imm
func (a *ALU) LDI(ra uint8, imm uint32) {
	a.regFile.WriteReg(ra, imm)
}

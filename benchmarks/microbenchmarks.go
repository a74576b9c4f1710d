package benchmarks

import (
	"strings"

	"github.com/sarchlab/umsim/insts"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific part of the timing model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		helloWorld(),
		arithmeticMix(),
		countingLoop(100),
		allocChurn(100),
		selfHostedJump(),
		echo("ping"),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		helloWorld(),
		countingLoop(10),
		selfHostedJump(),
	}
}

// BuildPrint returns instructions that write s one byte at a time through
// register reg.
func BuildPrint(reg uint8, s string) []uint32 {
	words := make([]uint32, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		words = append(words,
			insts.EncodeImmediate(reg, uint32(s[i])),
			insts.EncodeOutput(reg),
		)
	}
	return words
}

// BuildProgram concatenates instruction sequences.
func BuildProgram(parts ...[]uint32) []uint32 {
	var program []uint32
	for _, p := range parts {
		program = append(program, p...)
	}
	return program
}

// 1. Hello World - straight-line output
func helloWorld() Benchmark {
	const msg = "Hello, world!\n"
	return Benchmark{
		Name:           "hello_world",
		Description:    "load-immediate/output pairs - measures straight-line fetch",
		Program:        BuildProgram(BuildPrint(0, msg), []uint32{insts.EncodeHalt()}),
		ExpectedOutput: msg,
	}
}

// 2. Arithmetic Mix - multiply/divide latency
func arithmeticMix() Benchmark {
	return Benchmark{
		Name:        "arithmetic_mix",
		Description: "1000 / 7 and 1000 % 7, digit printed - measures divider latency",
		Program: []uint32{
			insts.EncodeImmediate(1, 1000),
			insts.EncodeImmediate(2, 7),
			insts.EncodeDiv(3, 1, 2),  // r3 = 142
			insts.EncodeMod(4, 1, 2),  // r4 = 6
			insts.EncodeMul(3, 3, 2),  // r3 = 994
			insts.EncodeAdd(3, 3, 4),  // r3 = 1000
			insts.EncodeSub(3, 3, 1),  // r3 = 0
			insts.EncodeImmediate(5, '0'),
			insts.EncodeAdd(6, 5, 4),
			insts.EncodeAdd(6, 6, 3),
			insts.EncodeOutput(6),
			insts.EncodeHalt(),
		},
		ExpectedOutput: "6",
	}
}

// 3. Counting Loop - load-program used as a conditional branch
//
// r7 starts as the exit address and is replaced by the loop address with a
// conditional move while the counter is non-zero.
func countingLoop(n uint32) Benchmark {
	return Benchmark{
		Name:        "counting_loop",
		Description: "one '.' per iteration via cmov + load-program - measures jump cost",
		Program: []uint32{
			insts.EncodeImmediate(1, n),
			insts.EncodeImmediate(2, 1),
			insts.EncodeImmediate(3, '.'),
			insts.EncodeImmediate(6, 5),  // loop
			insts.EncodeImmediate(5, 10), // exit
			insts.EncodeOutput(3),        // loop:
			insts.EncodeSub(1, 1, 2),
			insts.EncodeAdd(7, 5, 0),
			insts.EncodeCMov(7, 6, 1),
			insts.EncodeLoadProgram(0, 7),
			insts.EncodeImmediate(4, '\n'), // exit:
			insts.EncodeOutput(4),
			insts.EncodeHalt(),
		},
		ExpectedOutput: strings.Repeat(".", int(n)) + "\n",
	}
}

// 4. Allocation Churn - allocate, touch and abandon in a loop
func allocChurn(n uint32) Benchmark {
	return Benchmark{
		Name:        "alloc_churn",
		Description: "allocate/amend/index/abandon per iteration - measures heap and invalidation cost",
		Program: []uint32{
			insts.EncodeImmediate(1, n),
			insts.EncodeImmediate(2, 1),
			insts.EncodeImmediate(3, 8),
			insts.EncodeImmediate(6, 5),  // loop
			insts.EncodeImmediate(5, 13), // exit
			insts.EncodeAlloc(4, 3),      // loop:
			insts.EncodeAmend(4, 2, 1),
			insts.EncodeIndex(7, 4, 2),
			insts.EncodeAbandon(4),
			insts.EncodeSub(1, 1, 2),
			insts.EncodeAdd(7, 5, 0),
			insts.EncodeCMov(7, 6, 1),
			insts.EncodeLoadProgram(0, 7),
			insts.EncodeHalt(), // exit:
		},
		ExpectedOutput: "",
	}
}

// 5. Self-Hosted Jump - build code in a new array and run it there
//
// Opcodes sit above the 25-bit immediate, so the two generated words are
// assembled with a multiply by 1<<16.
func selfHostedJump() Benchmark {
	return Benchmark{
		Name:        "self_hosted_jump",
		Description: "writes 'out r3; halt' into a fresh array and switches to it - measures program switch",
		Program: []uint32{
			insts.EncodeImmediate(2, 0x10000),
			insts.EncodeImmediate(1, 0xA000),
			insts.EncodeMul(1, 1, 2),
			insts.EncodeImmediate(4, 3),
			insts.EncodeAdd(1, 1, 4), // out r3
			insts.EncodeImmediate(5, 0x7000),
			insts.EncodeMul(5, 5, 2), // halt
			insts.EncodeImmediate(6, 2),
			insts.EncodeAlloc(7, 6),
			insts.EncodeImmediate(4, 1),
			insts.EncodeAmend(7, 0, 1),
			insts.EncodeAmend(7, 4, 5),
			insts.EncodeImmediate(3, '!'),
			insts.EncodeLoadProgram(7, 0),
		},
		ExpectedOutput: "!",
	}
}

// 6. Echo - copy input to output until end of input
//
// End of input reads as all ones; adding one turns it into zero, which the
// conditional move uses to leave the loop.
func echo(input string) Benchmark {
	return Benchmark{
		Name:        "echo",
		Description: "input/output loop until end of input - measures port latency",
		Program: []uint32{
			insts.EncodeImmediate(2, 1),
			insts.EncodeImmediate(6, 4),  // loop
			insts.EncodeImmediate(5, 11), // exit
			insts.EncodeImmediate(3, 9),  // cont
			insts.EncodeInput(1),         // loop:
			insts.EncodeAdd(4, 1, 2),
			insts.EncodeAdd(7, 5, 0),
			insts.EncodeCMov(7, 3, 4),
			insts.EncodeLoadProgram(0, 7),
			insts.EncodeOutput(1), // cont:
			insts.EncodeLoadProgram(0, 6),
			insts.EncodeHalt(), // exit:
		},
		Input:          input,
		ExpectedOutput: input,
	}
}

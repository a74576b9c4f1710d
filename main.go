// Package main provides the entry point for umsim.
// umsim runs programs for the 32-bit word machine, with an optional
// cache and latency timing model.
//
// For the full CLI, use: go run ./cmd/umsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("umsim - 32-bit word machine emulator")
	fmt.Println("")
	fmt.Println("Usage: umsim [options] <program.um>")
	fmt.Println("       umsim disasm <program.um>")
	fmt.Println("       umsim bench [-format table|csv|json]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config           Path to a TOML run file")
	fmt.Println("  -max-instructions Stop after this many instructions")
	fmt.Println("  -heap-limit       Most words the heap may hold")
	fmt.Println("  -timing           Run under the timing model")
	fmt.Println("  -trace            Log every instruction")
	fmt.Println("  -verbose          Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/umsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/umsim' instead.")
	}
}

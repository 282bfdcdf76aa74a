// Package main provides the entry point for dp8sim.
// dp8sim is a deterministic model of an 8-bit ALU and register file datapath.
//
// For the full CLI, use: go run ./cmd/dp8sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("dp8sim - 8-bit datapath model")
	fmt.Println("Advisory timing on the Akita simulation engine")
	fmt.Println("")
	fmt.Println("Usage: dp8sim [options] <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  demo       Run the built-in walkthrough")
	fmt.Println("  run        Run Starlark scripts")
	fmt.Println("  exec       Execute one ALU operation")
	fmt.Println("  dump       Write registers and print the register file")
	fmt.Println("  bench      Run the benchmark programs")
	fmt.Println("  config     Print the machine configuration")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/dp8sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/dp8sim' instead.")
	}
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package cpu implements the psyCore core and its assembly loader.
//
// A core has a program counter (PC), a file of 32-bit work registers
// (W0-W15 by default), a status register with Z, N, V and C flags, a word
// stack, and a view of data memory. Instructions take one or more cycles;
// Step advances a core by exactly one cycle, and an instruction's effects
// land on its last cycle.
//
// Program text is loaded by an Assembler into an Image, which is shared
// read-only by every core running it. Cores that run together share a
// Domain, which holds the LOC locks and MEET barriers. The host steps all
// cores once per tick, then calls Domain.Commit.
package cpu

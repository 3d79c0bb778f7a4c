// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"io"
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/psycore/psycore/internal"
)

// DiagKind is the class of a load diagnostic.
type DiagKind int

//go:generate go tool stringer -linecomment -type=DiagKind
const (
	DIAG_PARSE   = DiagKind(0) // parse
	DIAG_DECODE  = DiagKind(1) // decode
	DIAG_ADDRESS = DiagKind(2) // address
	DIAG_SYMBOL  = DiagKind(3) // symbol
)

// Diagnostic reports a line that could not be loaded as written.
type Diagnostic struct {
	LineNo int      // Source line number.
	Text   string   // Raw source text.
	Kind   DiagKind // Failure class.
	Err    error    // Failure detail.
}

func (diag *Diagnostic) Error() string {
	return f("line %d '%v' %v: %v", diag.LineNo, diag.Text, diag.Kind, diag.Err)
}

func (diag *Diagnostic) Unwrap() error {
	return diag.Err
}

// Assembler is a two pass loader for psyCore assembly text.
//
// The first pass parses every line, assigns instruction addresses and
// collects labels and .EQU symbols. The second pass decodes the
// instructions, with forward references resolved, and the .DATA words.
//
// No single line aborts a load: bad lines are reported as Diagnostics.
// Lines that fail to parse, or land outside instruction memory, take no
// address. Lines that fail to decode become a NOP at their address so
// that later instructions keep their addresses.
type Assembler struct {
	Verbose bool              // If set, verbosely logs the assembler actions.
	Config  Config            // Memory sizes and register count. Zero for DefaultConfig().
	Symbol  map[string]uint32 // Symbols of the last load.

	predefine map[string]uint32 // Predefines
}

// Predefine defines a symbol for every following load.
func (asm *Assembler) Predefine(name string, value uint32) {
	if asm.predefine == nil {
		asm.predefine = map[string]uint32{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// config returns the effective configuration.
func (asm *Assembler) config() Config {
	if asm.Config.InstructionMemSize == 0 {
		return DefaultConfig()
	}
	return asm.Config
}

// placed is a line given an address in the first pass.
type placed struct {
	line    Line
	text    string
	address uint32
}

// ReadLines reads the raw lines of a source file.
func ReadLines(input io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	err = scanner.Err()
	return
}

// Parse reads and loads a source file.
func (asm *Assembler) Parse(input io.Reader) (img *Image, diags []Diagnostic, err error) {
	lines, err := ReadLines(input)
	if err != nil {
		return
	}

	img, diags = asm.Load(lines)
	return
}

// Load builds a program image from the lines of a source file.
// Diagnostics are returned in source line order.
func (asm *Assembler) Load(lines []string) (img *Image, diags []Diagnostic) {
	cfg := asm.config()

	img = NewImage(cfg.InstructionMemSize)

	report := func(lineno int, text string, kind DiagKind, err error) {
		diag := Diagnostic{LineNo: lineno, Text: text, Kind: kind, Err: err}
		logrus.WithFields(logrus.Fields{"line": lineno, "kind": kind}).Warn(diag.Error())
		diags = append(diags, diag)
	}

	symbols := maps.Collect(internal.IterSeq2Concat(cfg.Defines(), maps.All(asm.predefine)))
	dec := &Decoder{Registers: cfg.WorkRegisterCount, Symbols: symbols}

	var code []placed
	var data []placed
	occupied := map[uint32]int{}
	cursor := cfg.ResetAddr

	// Pass 1: addresses, labels and equates.
	for n, text := range lines {
		lineno := n + 1

		line, err := ParseLine(text)
		if err != nil {
			report(lineno, text, DIAG_PARSE, err)
			continue
		}
		line.LineNo = lineno

		if line.Empty() {
			continue
		}

		if asm.Verbose {
			logrus.WithFields(logrus.Fields{"line": lineno}).Debug(line.String())
		}

		switch line.Mnemonic {
		case ".EQU":
			kind, err := asm.equate(dec, &line)
			if err != nil {
				report(lineno, text, kind, err)
			}
			continue
		case ".DATA":
			data = append(data, placed{line: line, text: text})
			continue
		}

		address := cursor
		if line.HasAddress {
			address = line.Address
		}
		if address >= img.Size() {
			report(lineno, text, DIAG_ADDRESS, ErrAddressRange)
			continue
		}
		cursor = address + 1

		if first, ok := occupied[address]; ok {
			report(lineno, text, DIAG_ADDRESS, &ErrSyntax{LineNo: first, Line: lines[first-1], Err: ErrAddressOverlap})
			continue
		}
		occupied[address] = lineno

		if len(line.Label) != 0 {
			if _, ok := symbols[line.Label]; ok {
				report(lineno, text, DIAG_SYMBOL, ErrLabelDuplicate)
			} else {
				symbols[line.Label] = address
			}
		}

		code = append(code, placed{line: line, text: text, address: address})
	}

	// Pass 2: decode with all symbols known.
	for _, item := range code {
		line := &item.line
		inst, err := dec.Decode(line.Mnemonic, line.Args, item.address)
		if err != nil {
			report(line.LineNo, item.text, DIAG_DECODE, err)
			inst = makeNop(item.address)
		}
		inst.LineNo = line.LineNo
		_ = img.Place(inst)
	}

	for _, item := range data {
		words, err := asm.data(dec, cfg, &item.line)
		if err != nil {
			report(item.line.LineNo, item.text, DIAG_ADDRESS, err)
			continue
		}
		img.Data = append(img.Data, words...)
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int { return a.LineNo - b.LineNo })

	img.Symbols = symbols
	asm.Symbol = symbols

	return
}

// equate handles '.EQU NAME, VALUE'.
func (asm *Assembler) equate(dec *Decoder, line *Line) (kind DiagKind, err error) {
	kind = DIAG_SYMBOL

	if line.HasAddress || len(line.Label) != 0 || len(line.Args) != 2 {
		err = ErrEquateSyntax
		return
	}

	name := line.Args[0]
	if !isLetter(rune(name[0])) && name[0] != '_' {
		err = ErrEquateSyntax
		return
	}
	if _, ok, _ := dec.register(name); ok {
		err = ErrEquateSyntax
		return
	}

	if _, ok := dec.Symbols[name]; ok {
		err = ErrEquateDuplicate
		return
	}

	value, err := dec.value(line.Args[1])
	if err != nil {
		err = errors.Join(ErrEquateSyntax, err)
		return
	}

	dec.Symbols[name] = value
	return
}

// data handles '.DATA ADDR, VALUE...'.
func (asm *Assembler) data(dec *Decoder, cfg Config, line *Line) (words []DataWord, err error) {
	if line.HasAddress || len(line.Label) != 0 || len(line.Args) < 2 {
		err = ErrDataSyntax
		return
	}

	addr, err := dec.value(line.Args[0])
	if err != nil {
		err = errors.Join(ErrDataSyntax, err)
		return
	}

	for n, arg := range line.Args[1:] {
		var value uint32
		value, err = dec.value(arg)
		if err != nil {
			err = errors.Join(ErrDataSyntax, err)
			return
		}
		where := uint64(addr) + uint64(n)
		if where >= uint64(cfg.DataMemSize) {
			err = ErrAddressRange
			return
		}
		words = append(words, DataWord{Address: uint32(where), Value: int32(value), LineNo: line.LineNo})
	}

	return
}

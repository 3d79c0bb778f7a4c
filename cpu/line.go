// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"strconv"
	"strings"
)

// Line is a single line of assembly text, split into its fields.
// All fields except the comment are upper-cased.
type Line struct {
	LineNo     int      // Source line number, 1-based.
	HasAddress bool     // Set if the line carries an explicit address.
	Address    uint32   // Explicit address, if HasAddress.
	Label      string   // Symbolic label, or empty.
	Mnemonic   string   // Mnemonic, or empty for blank lines.
	Args       []string // Arguments, in source order.
	Comment    string   // Comment text following ';'.

	addrText string
}

// Empty returns true if the line has no address, label, or mnemonic.
func (line *Line) Empty() bool {
	return !line.HasAddress && len(line.Label) == 0 && len(line.Mnemonic) == 0
}

// String returns the normalized form of the line. The comment is dropped.
func (line *Line) String() string {
	var parts []string

	if line.HasAddress {
		parts = append(parts, line.addrText+":")
	}
	if len(line.Label) != 0 {
		parts = append(parts, line.Label+":")
	}
	if len(line.Mnemonic) != 0 {
		text := line.Mnemonic
		if len(line.Args) != 0 {
			text += " " + strings.Join(line.Args, ", ")
		}
		parts = append(parts, text)
	}

	return strings.Join(parts, " ")
}

// Normalize returns the canonical text of a line of assembly.
// Blank and comment-only lines normalize to the empty string.
func Normalize(text string) (normal string, err error) {
	line, err := ParseLine(text)
	if err != nil {
		return
	}

	normal = line.String()
	return
}

// lexer states
type lexState int

const (
	lexLead  = lexState(iota) // before address, label, or mnemonic
	lexWord                   // inside a leading word
	lexGap                    // after the mnemonic, before the first argument
	lexArg                    // inside an argument
	lexComma                  // after a comma, before the next argument
)

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isWord returns true for runes that may appear in a mnemonic, label, number or register.
func isWord(r rune) bool {
	return isLetter(r) || isDigit(r) || r == '_' || r == '.'
}

// isAllowed returns true for the assembly alphabet.
func isAllowed(r rune) bool {
	if isWord(r) || isSpace(r) {
		return true
	}
	switch r {
	case ',', '(', ')', '[', ']', ':', ';':
		return true
	}
	return false
}

// closer maps an opening bracket to its closing bracket.
var closer = map[rune]rune{
	'[': ']',
	'(': ')',
}

// ParseLine splits one line of assembly text into its fields.
//
// The line is scanned once, left to right:
//   - leading whitespace is skipped.
//   - a number followed by ':' is an explicit address.
//   - an identifier followed by ':' is a symbolic label.
//   - the next word is the mnemonic.
//   - comma separated arguments follow the mnemonic.
//   - ';' starts a comment that runs to the end of the line.
func ParseLine(text string) (line Line, err error) {
	var word strings.Builder
	var arg strings.Builder
	var brackets []rune
	var spaced bool

	state := lexLead

	endArg := func() (err error) {
		if len(brackets) != 0 {
			err = ErrBracketUnbalanced
			return
		}
		if arg.Len() == 0 {
			err = ErrArgumentEmpty
			return
		}
		line.Args = append(line.Args, strings.ToUpper(arg.String()))
		arg.Reset()
		spaced = false
		return
	}

	endWord := func() (err error) {
		mnemonic := strings.ToUpper(word.String())
		word.Reset()
		if isDigit(rune(mnemonic[0])) {
			err = ErrMnemonicInvalid
			return
		}
		line.Mnemonic = mnemonic
		return
	}

scan:
	for n, r := range text {
		if r == ';' {
			line.Comment = strings.TrimSpace(text[n+1:])
			break scan
		}

		if !isAllowed(r) {
			err = ErrCharacter(r)
			return
		}

		switch state {
		case lexLead:
			switch {
			case isSpace(r):
			case isWord(r):
				word.WriteRune(r)
				state = lexWord
			default:
				err = ErrMnemonicMissing
				return
			}
		case lexWord:
			switch {
			case isWord(r):
				word.WriteRune(r)
			case r == ':':
				err = line.setPrefix(word.String())
				if err != nil {
					return
				}
				word.Reset()
				state = lexLead
			case isSpace(r):
				err = endWord()
				if err != nil {
					return
				}
				state = lexGap
			default:
				err = ErrArgumentSpace
				return
			}
		case lexGap, lexComma, lexArg:
			if state != lexArg {
				if isSpace(r) {
					continue
				}
				if r == ',' {
					err = ErrArgumentEmpty
					return
				}
				state = lexArg
			}
			switch {
			case r == ':':
				err = ErrLabelPosition
				return
			case r == ',':
				err = endArg()
				if err != nil {
					return
				}
				state = lexComma
			case isSpace(r):
				switch {
				case arg.Len() == 0:
				case len(brackets) == 0:
					spaced = true
				default:
					// Inside brackets, only a gap after a word may split a token.
					text := arg.String()
					spaced = spaced || isWord(rune(text[len(text)-1]))
				}
			case r == '[' || r == '(':
				if spaced {
					err = ErrArgumentSpace
					return
				}
				brackets = append(brackets, r)
				arg.WriteRune(r)
			case r == ']' || r == ')':
				if len(brackets) == 0 || closer[brackets[len(brackets)-1]] != r {
					err = ErrBracketUnbalanced
					return
				}
				brackets = brackets[:len(brackets)-1]
				arg.WriteRune(r)
				spaced = false
			default:
				if spaced {
					err = ErrArgumentSpace
					return
				}
				arg.WriteRune(r)
			}
		}
	}

	switch state {
	case lexLead:
		if line.HasAddress || len(line.Label) != 0 {
			err = ErrMnemonicMissing
		}
	case lexWord:
		err = endWord()
	case lexArg:
		err = endArg()
	case lexComma:
		err = ErrArgumentEmpty
	}

	return
}

// setPrefix records an address or label that was followed by ':'.
func (line *Line) setPrefix(word string) (err error) {
	word = strings.ToUpper(word)

	if isDigit(rune(word[0])) {
		if line.HasAddress || len(line.Label) != 0 {
			err = ErrAddressPosition
			return
		}
		var addr uint32
		addr, err = parseNumber(word)
		if err != nil {
			return
		}
		line.HasAddress = true
		line.Address = addr
		line.addrText = word
		return
	}

	if len(line.Label) != 0 {
		err = ErrLabelMultiple
		return
	}
	line.Label = word

	return
}

// parseNumber parses a decimal or 0x-prefixed hexadecimal number.
func parseNumber(word string) (value uint32, err error) {
	base := 10
	digits := word
	if len(word) > 2 && word[0] == '0' && (word[1] == 'x' || word[1] == 'X') {
		base = 16
		digits = word[2:]
	}

	v64, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	return
}

package calc

import (
	"fmt"
	"strings"
)

// allowedChars is the full set of characters an expression may contain
const allowedChars = "0123456789.+-*/() "

// tokenKind identifies a lexical token
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return "unknown token"
	}
}

// token is a single lexical element with its byte offset in the input
type token struct {
	kind tokenKind
	text string
	pos  int
}

// SyntaxError reports malformed input at a byte offset
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// validChars reports whether every character of s is in the allow-list
func validChars(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(allowedChars, r) {
			return false
		}
	}
	return true
}

// tokenize splits an already validated expression into tokens.
// The returned slice always ends with a tokenEOF token.
func tokenize(s string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ':
			i++
		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
				if s[i] == '.' {
					dots++
				}
				i++
			}
			lit := s[start:i]
			if dots > 1 {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", lit)}
			}
			if lit == "." {
				return nil, &SyntaxError{Pos: start, Msg: "unexpected '.'"}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: lit, pos: start})
		default:
			kind, ok := operatorKinds[c]
			if !ok {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
			}
			tokens = append(tokens, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	return append(tokens, token{kind: tokenEOF, pos: len(s)}), nil
}

var operatorKinds = map[byte]tokenKind{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'(': tokenLParen,
	')': tokenRParen,
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

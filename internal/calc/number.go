package calc

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// maxIntDigits caps integer literals and integer results, in decimal digits
const maxIntDigits = 4300

var (
	errDivideByZero = errors.New("division by zero")
	errIntOverflow  = errors.New("integer too large to convert to float")
	errIntTooLong   = fmt.Errorf("integer exceeds %d digits", maxIntDigits)
)

// Number is either an exact integer or a float64
type Number struct {
	isFloat bool
	i       *big.Int
	f       float64
}

// intNumber returns an integer Number
func intNumber(v int64) Number {
	return Number{i: big.NewInt(v)}
}

// floatNumber returns a float Number
func floatNumber(v float64) Number {
	return Number{isFloat: true, f: v}
}

// IsFloat reports whether n holds a float
func (n Number) IsFloat() bool {
	return n.isFloat
}

// parseNumber converts a number literal produced by the lexer
func parseNumber(lit string, pos int) (Number, error) {
	if strings.Contains(lit, ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			var numErr *strconv.NumError
			// out of range literals round to ±Inf, matching float literal semantics
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				return floatNumber(f), nil
			}
			return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid number %q", lit)}
		}
		return floatNumber(f), nil
	}

	if len(lit) > 1 && lit[0] == '0' && strings.Trim(lit, "0") != "" {
		return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("leading zeros in integer %q", lit)}
	}
	if len(lit) > maxIntDigits {
		return Number{}, errIntTooLong
	}
	i, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid number %q", lit)}
	}
	return Number{i: i}, nil
}

// toFloat converts n to float64, failing when an integer does not fit
func (n Number) toFloat() (float64, error) {
	if n.isFloat {
		return n.f, nil
	}
	f, _ := new(big.Float).SetInt(n.i).Float64()
	if math.IsInf(f, 0) {
		return 0, errIntOverflow
	}
	return f, nil
}

func (n Number) isZero() bool {
	if n.isFloat {
		return n.f == 0
	}
	return n.i.Sign() == 0
}

func (n Number) neg() Number {
	if n.isFloat {
		return floatNumber(-n.f)
	}
	return Number{i: new(big.Int).Neg(n.i)}
}

// apply computes n op m. Division always yields a float.
func (n Number) apply(op tokenKind, m Number) (Number, error) {
	if op == tokenSlash {
		return n.div(m)
	}

	if !n.isFloat && !m.isFloat {
		r := new(big.Int)
		switch op {
		case tokenPlus:
			r.Add(n.i, m.i)
		case tokenMinus:
			r.Sub(n.i, m.i)
		case tokenStar:
			r.Mul(n.i, m.i)
		default:
			return Number{}, fmt.Errorf("unsupported operator %s", op)
		}
		return Number{i: r}, nil
	}

	a, b, err := floats(n, m)
	if err != nil {
		return Number{}, err
	}
	switch op {
	case tokenPlus:
		return floatNumber(a + b), nil
	case tokenMinus:
		return floatNumber(a - b), nil
	case tokenStar:
		return floatNumber(a * b), nil
	default:
		return Number{}, fmt.Errorf("unsupported operator %s", op)
	}
}

func (n Number) div(m Number) (Number, error) {
	if m.isZero() {
		return Number{}, errDivideByZero
	}

	if !n.isFloat && !m.isFloat {
		// correctly rounded true division of two integers
		f, _ := new(big.Rat).SetFrac(n.i, m.i).Float64()
		if math.IsInf(f, 0) {
			return Number{}, errIntOverflow
		}
		return floatNumber(f), nil
	}

	a, b, err := floats(n, m)
	if err != nil {
		return Number{}, err
	}
	return floatNumber(a / b), nil
}

func floats(n, m Number) (float64, float64, error) {
	a, err := n.toFloat()
	if err != nil {
		return 0, 0, err
	}
	b, err := m.toFloat()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// Format returns the canonical decimal representation of n.
//
// Integers print without a fractional part. Floats print in their shortest
// round-trip form and always carry a fractional digit or an exponent, so an
// integral quotient such as 10 / 2 prints as "5.0".
func (n Number) Format() (string, error) {
	if !n.isFloat {
		s := n.i.String()
		if len(strings.TrimPrefix(s, "-")) > maxIntDigits {
			return "", errIntTooLong
		}
		return s, nil
	}
	return formatFloat(n.f), nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	e := strconv.FormatFloat(f, 'e', -1, 64)
	if exp := decimalExponent(e); exp < -4 || exp >= 16 {
		return e
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// decimalExponent extracts the exponent from a strconv 'e' formatted float
func decimalExponent(e string) int {
	idx := strings.IndexByte(e, 'e')
	if idx < 0 {
		return 0
	}
	exp, err := strconv.Atoi(e[idx+1:])
	if err != nil {
		return 0
	}
	return exp
}

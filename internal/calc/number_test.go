package calc

import (
	"errors"
	"math"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{5, "5.0"},
		{-2.5, "-2.5"},
		{0.1, "0.1"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{1.5e16, "1.5e+16"},
		{1e100, "1e+100"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-1.5e-7, "-1.5e-07"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		lit     string
		want    string
		isFloat bool
		wantErr bool
	}{
		{lit: "0", want: "0"},
		{lit: "000", want: "0"},
		{lit: "42", want: "42"},
		{lit: "007", wantErr: true},
		{lit: "007.5", want: "7.5", isFloat: true},
		{lit: "1.", want: "1.0", isFloat: true},
		{lit: ".25", want: "0.25", isFloat: true},
	}
	for _, tt := range tests {
		n, err := parseNumber(tt.lit, 0)
		if tt.wantErr {
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("parseNumber(%q): expected syntax error, got %v", tt.lit, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseNumber(%q): %v", tt.lit, err)
			continue
		}
		if n.IsFloat() != tt.isFloat {
			t.Errorf("parseNumber(%q).IsFloat() = %v", tt.lit, n.IsFloat())
		}
		got, err := n.Format()
		if err != nil {
			t.Errorf("Format(%q): %v", tt.lit, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseNumber(%q) formats as %q, want %q", tt.lit, got, tt.want)
		}
	}
}

func TestNumberApply(t *testing.T) {
	sum, err := intNumber(2).apply(tokenPlus, intNumber(3))
	if err != nil || sum.IsFloat() {
		t.Fatalf("int + int: %v, float=%v", err, sum.IsFloat())
	}

	quotient, err := intNumber(6).apply(tokenSlash, intNumber(3))
	if err != nil {
		t.Fatalf("int / int: %v", err)
	}
	if !quotient.IsFloat() {
		t.Error("division of integers must produce a float")
	}

	mixed, err := intNumber(1).apply(tokenMinus, floatNumber(0.5))
	if err != nil || !mixed.IsFloat() {
		t.Fatalf("int - float: %v, float=%v", err, mixed.IsFloat())
	}

	if _, err := floatNumber(1).apply(tokenSlash, intNumber(0)); !errors.Is(err, errDivideByZero) {
		t.Errorf("expected errDivideByZero, got %v", err)
	}
}

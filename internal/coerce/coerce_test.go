package coerce

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
)

type threshold uint16

type delta int8

func TestUint64(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   uint64
		wantOK bool
	}{
		{uint64(math.MaxUint64), "uint64 max", math.MaxUint64, true},
		{uint8(7), "uint8", 7, true},
		{threshold(300), "named uint16", 300, true},
		{int(12), "int", 12, true},
		{int(-1), "int negative", 0, false},
		{int64(-5), "int64 negative", 0, false},
		{delta(3), "named int8", 3, true},
		{float64(42), "float64 integral", 42, true},
		{float64(3.5), "float64 fractional", 0, false},
		{float64(-1), "float64 negative", 0, false},
		{float64(1 << 64), "float64 too large", 0, false},
		{float32(100), "float32", 100, true},
		{json.Number("18446744073709551615"), "json.Number max", math.MaxUint64, true},
		{json.Number("18446744073709551616"), "json.Number overflow", 0, false},
		{json.Number("1.5"), "json.Number fractional", 0, false},
		{big.NewInt(99), "big.Int", 99, true},
		{big.NewInt(-1), "big.Int negative", 0, false},
		{"12", "string", 0, false},
		{nil, "nil", 0, false},
		{true, "bool", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Uint64(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Uint64(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Uint64(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestInt64(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   int64
		wantOK bool
	}{
		{int64(math.MinInt64), "int64 min", math.MinInt64, true},
		{int(-12), "int", -12, true},
		{delta(-3), "named int8", -3, true},
		{uint32(math.MaxUint32), "uint32", math.MaxUint32, true},
		{uint64(math.MaxUint64), "uint64 too large", 0, false},
		{float64(-42), "float64 integral", -42, true},
		{float64(0.25), "float64 fractional", 0, false},
		{float64(1 << 63), "float64 too large", 0, false},
		{json.Number("-9223372036854775808"), "json.Number min", math.MinInt64, true},
		{json.Number("9223372036854775808"), "json.Number overflow", 0, false},
		{big.NewInt(-7), "big.Int", -7, true},
		{"5", "string", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int64(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Int64(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Int64(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFloat64(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   float64
		wantOK bool
	}{
		{float64(1.5), "float64", 1.5, true},
		{float32(0.5), "float32", 0.5, true},
		{int(-3), "int", -3, true},
		{uint8(9), "uint8", 9, true},
		{json.Number("2.25"), "json.Number", 2.25, true},
		{json.Number("x"), "json.Number invalid", 0, false},
		{"1.0", "string", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Float64(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Float64(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Float64(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBig(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   string
		wantOK bool
	}{
		{"340282366920938463463374607431768211455", "decimal string", "340282366920938463463374607431768211455", true},
		{json.Number("-170141183460469231731687303715884105728"), "json.Number", "-170141183460469231731687303715884105728", true},
		{big.NewInt(-5), "big.Int", "-5", true},
		{(*big.Int)(nil), "nil big.Int", "", false},
		{uint64(math.MaxUint64), "uint64", "18446744073709551615", true},
		{int8(-8), "int8", "-8", true},
		{float64(1e20), "float64 integral", "100000000000000000000", true},
		{float64(1.5), "float64 fractional", "", false},
		{math.Inf(1), "float64 inf", "", false},
		{"12abc", "bad string", "", false},
		{[]byte("1"), "bytes", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Big(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Big(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Big(%v) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestBig_DoesNotAlias(t *testing.T) {
	in := big.NewInt(10)
	out, _ := Big(in)
	out.SetInt64(11)
	if in.Int64() != 10 {
		t.Error("Big should copy its input")
	}
}

func TestSafeMul(t *testing.T) {
	if v, ok := SafeMul(4, 8); !ok || v != 32 {
		t.Errorf("SafeMul(4, 8) = %d, %v", v, ok)
	}
	if _, ok := SafeMul(math.MaxInt, 2); ok {
		t.Error("SafeMul should detect overflow")
	}
	if _, ok := SafeMul(-1, 2); ok {
		t.Error("SafeMul should reject negatives")
	}
	if v, ok := SafeMul(math.MaxInt, 0); !ok || v != 0 {
		t.Errorf("SafeMul(max, 0) = %d, %v", v, ok)
	}
}

func TestSafeAdd(t *testing.T) {
	if v, ok := SafeAdd(4, 8); !ok || v != 12 {
		t.Errorf("SafeAdd(4, 8) = %d, %v", v, ok)
	}
	if _, ok := SafeAdd(math.MaxInt, 1); ok {
		t.Error("SafeAdd should detect overflow")
	}
	if _, ok := SafeAdd(1, -1); ok {
		t.Error("SafeAdd should reject negatives")
	}
}

func TestFits(t *testing.T) {
	if !FitsUnsigned(255, 8) || FitsUnsigned(256, 8) {
		t.Error("FitsUnsigned u8 bounds")
	}
	if !FitsUnsigned(math.MaxUint64, 64) {
		t.Error("FitsUnsigned u64 max")
	}
	if !FitsSigned(-128, 8) || !FitsSigned(127, 8) || FitsSigned(128, 8) || FitsSigned(-129, 8) {
		t.Error("FitsSigned i8 bounds")
	}
	if !FitsSigned(math.MinInt64, 64) {
		t.Error("FitsSigned i64 min")
	}
}

func TestTypeName(t *testing.T) {
	if TypeName(nil) != "nil" {
		t.Error("nil type name")
	}
	if TypeName(threshold(1)) != "coerce.threshold" {
		t.Errorf("TypeName = %s", TypeName(threshold(1)))
	}
}

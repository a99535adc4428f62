package value

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestU128_Big(t *testing.T) {
	tests := []struct {
		name string
		want string
		v    U128
	}{
		{"zero", "0", U128{}},
		{"low", "42", U128{Lo: 42}},
		{"high", "18446744073709551616", U128{Hi: 1}},
		{"max", "340282366920938463463374607431768211455", U128{Hi: math.MaxUint64, Lo: math.MaxUint64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
			b, _ := new(big.Int).SetString(tt.want, 10)
			back, ok := U128FromBig(b)
			if !ok || back != tt.v {
				t.Errorf("U128FromBig(%s) = %+v, %v", tt.want, back, ok)
			}
		})
	}
}

func TestI128_Big(t *testing.T) {
	tests := []struct {
		name string
		want string
		v    I128
	}{
		{"zero", "0", I128{}},
		{"minus one", "-1", I128{Hi: math.MaxUint64, Lo: math.MaxUint64}},
		{"from int64", "-9223372036854775808", I128From(math.MinInt64)},
		{"positive", "12345", I128From(12345)},
		{"min", "-170141183460469231731687303715884105728", I128{Hi: 1 << 63}},
		{"max", "170141183460469231731687303715884105727", I128{Hi: math.MaxInt64, Lo: math.MaxUint64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
			b, _ := new(big.Int).SetString(tt.want, 10)
			back, ok := I128FromBig(b)
			if !ok || back != tt.v {
				t.Errorf("I128FromBig(%s) = %+v, %v", tt.want, back, ok)
			}
		})
	}
}

func TestBigRange(t *testing.T) {
	if _, ok := U128FromBig(big.NewInt(-1)); ok {
		t.Error("negative should not fit u128")
	}
	if _, ok := U128FromBig(new(big.Int).Lsh(big.NewInt(1), 128)); ok {
		t.Error("2^128 should not fit u128")
	}
	if _, ok := I128FromBig(new(big.Int).Lsh(big.NewInt(1), 127)); ok {
		t.Error("2^127 should not fit i128")
	}
	if _, ok := U128FromBig(nil); ok {
		t.Error("nil should not convert")
	}
}

func TestPublicKey(t *testing.T) {
	var zero PublicKey
	if zero.String() != "11111111111111111111111111111111" {
		t.Errorf("zero key = %s", zero.String())
	}

	var k PublicKey
	for i := range k {
		k[i] = byte(i + 1)
	}
	back, ok := ParsePublicKey(k.String())
	if !ok || back != k {
		t.Errorf("ParsePublicKey round trip failed: %v %v", back, ok)
	}

	if _, ok := ParsePublicKey("not-base58-0OIl"); ok {
		t.Error("invalid base58 should fail")
	}
	if _, ok := ParsePublicKey("3yZe7d"); ok {
		t.Error("short key should fail")
	}
}

func TestOption(t *testing.T) {
	if None().IsSome() {
		t.Error("None should be empty")
	}
	if !Some(U8(1)).IsSome() {
		t.Error("Some should hold a value")
	}
}

func TestStruct_Get(t *testing.T) {
	s := Struct{{Name: "threshold", Value: U64(2)}, {Name: "nonce", Value: U8(7)}}
	v, ok := s.Get("nonce")
	if !ok || v != U8(7) {
		t.Errorf("Get(nonce) = %v, %v", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}
	if diff := cmp.Diff([]string{"threshold", "nonce"}, s.Names()); diff != "" {
		t.Errorf("Names mismatch:\n%s", diff)
	}
}

func TestToNative(t *testing.T) {
	var owner PublicKey
	owner[31] = 1

	v := Struct{
		{Name: "owners", Value: Vec{owner}},
		{Name: "threshold", Value: U64(2)},
		{Name: "supply", Value: U128{Hi: 1}},
		{Name: "delta", Value: I128From(-5)},
		{Name: "guardian", Value: None()},
		{Name: "label", Value: Some(String("ops"))},
		{Name: "data", Value: Bytes{1, 2}},
		{Name: "seed", Value: Array{U8(1), U8(2)}},
		{Name: "state", Value: Enum{Variant: "Locked", Fields: Struct{{Name: "until", Value: I64(-1)}}}},
	}

	want := map[string]any{
		"owners":    []any{owner.String()},
		"threshold": uint64(2),
		"supply":    "18446744073709551616",
		"delta":     "-5",
		"guardian":  nil,
		"label":     "ops",
		"data":      []byte{1, 2},
		"seed":      []any{uint8(1), uint8(2)},
		"state":     map[string]any{"Locked": map[string]any{"until": int64(-1)}},
	}

	got := ToNative(v)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToNative mismatch (-want +got):\n%s", diff)
	}

	if _, err := json.Marshal(got); err != nil {
		t.Errorf("native value should marshal to JSON: %v", err)
	}
}

func TestToNative_NestedOption(t *testing.T) {
	tests := []struct {
		v    Value
		want any
		name string
	}{
		{None(), nil, "none"},
		{Some(None()), []any{nil}, "some none"},
		{Some(Some(U8(7))), []any{uint8(7)}, "some some"},
		{Some(Some(Some(U8(7)))), []any{[]any{uint8(7)}}, "three levels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ToNative(tt.v)); diff != "" {
				t.Errorf("ToNative mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

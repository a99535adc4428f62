package accounts

import (
	"bytes"
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/accounts-coder/errors"
	"github.com/wippyai/accounts-coder/schema"
	"github.com/wippyai/accounts-coder/value"
)

func multisigSchema() *schema.Schema {
	return &schema.Schema{
		Name: "serum_multisig",
		Accounts: []schema.Record{
			{Name: "Multisig", Fields: []schema.Field{
				{Name: "owners", Type: &schema.Vec{Elem: schema.PublicKey}},
				{Name: "threshold", Type: schema.U64},
				{Name: "nonce", Type: schema.U8},
				{Name: "ownerSetSeqno", Type: schema.U32},
			}},
			{Name: "Transaction", Fields: []schema.Field{
				{Name: "multisig", Type: schema.PublicKey},
				{Name: "programId", Type: schema.PublicKey},
				{Name: "accounts", Type: &schema.Vec{Elem: schema.Defined("TransactionAccount")}},
				{Name: "data", Type: schema.Bytes},
				{Name: "signers", Type: &schema.Vec{Elem: schema.Bool}},
				{Name: "didExecute", Type: schema.Bool},
				{Name: "ownerSetSeqno", Type: schema.U32},
			}},
		},
		Types: []schema.TypeDef{
			{Name: "TransactionAccount", Type: &schema.Struct{Fields: []schema.Field{
				{Name: "pubkey", Type: schema.PublicKey},
				{Name: "isSigner", Type: schema.Bool},
				{Name: "isWritable", Type: schema.Bool},
			}}},
		},
	}
}

func newCoder(t *testing.T, opts Options) *Coder {
	t.Helper()
	c, err := New(multisigSchema(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func key(b byte) value.PublicKey {
	var k value.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func multisigValue() value.Struct {
	return value.Struct{
		{Name: "owners", Value: value.Vec{key(1), key(2)}},
		{Name: "threshold", Value: value.U64(2)},
		{Name: "nonce", Value: value.U8(255)},
		{Name: "ownerSetSeqno", Value: value.U32(0)},
	}
}

func TestNewDiscriminator(t *testing.T) {
	for _, name := range []string{"Multisig", "Transaction", "", "multisig"} {
		sum := sha256.Sum256([]byte("account:" + name))
		got := NewDiscriminator(name)
		if !bytes.Equal(got[:], sum[:8]) {
			t.Errorf("NewDiscriminator(%q) = %s, want %x", name, got, sum[:8])
		}
		if again := NewDiscriminator(name); again != got {
			t.Errorf("NewDiscriminator(%q) not stable", name)
		}
	}

	d := NewDiscriminator("Multisig")
	if len(d.String()) != 16 {
		t.Errorf("String() = %q", d.String())
	}
	raw, err := base58.Decode(d.Base58())
	if err != nil || !bytes.Equal(raw, d[:]) {
		t.Errorf("Base58() = %q does not round trip", d.Base58())
	}
	if NewDiscriminator("Multisig") == NewDiscriminator("multisig") {
		t.Error("discriminator must be case sensitive")
	}
}

func TestCoder_MultisigScenario(t *testing.T) {
	c := newCoder(t, DefaultOptions())

	data, err := c.Encode("Multisig", map[string]any{
		"owners":        []string{key(1).String(), key(2).String()},
		"threshold":     2,
		"nonce":         255,
		"ownerSetSeqno": 0,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) != 89 {
		t.Fatalf("len = %d, want 89", len(data))
	}
	disc := NewDiscriminator("Multisig")
	if !bytes.Equal(data[:8], disc[:]) {
		t.Errorf("prefix = %x, want %s", data[:8], disc)
	}
	if !bytes.Equal(data[8:12], []byte{2, 0, 0, 0}) {
		t.Errorf("owner count = %x", data[8:12])
	}

	got, err := c.Decode("Multisig", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(multisigValue(), got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestCoder_RoundTrip(t *testing.T) {
	c := newCoder(t, DefaultOptions())

	tests := []struct {
		value value.Struct
		name  string
	}{
		{multisigValue(), "Multisig"},
		{value.Struct{
			{Name: "multisig", Value: key(7)},
			{Name: "programId", Value: key(8)},
			{Name: "accounts", Value: value.Vec{
				value.Struct{
					{Name: "pubkey", Value: key(9)},
					{Name: "isSigner", Value: value.Bool(true)},
					{Name: "isWritable", Value: value.Bool(false)},
				},
			}},
			{Name: "data", Value: value.Bytes{0xde, 0xad}},
			{Name: "signers", Value: value.Vec{value.Bool(true), value.Bool(false)}},
			{Name: "didExecute", Value: value.Bool(false)},
			{Name: "ownerSetSeqno", Value: value.U32(3)},
		}, "Transaction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := c.Encode(tt.name, tt.value)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := c.Decode(tt.name, data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tt.value, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			name, decoded, err := c.DecodeAny(data)
			if err != nil {
				t.Fatalf("DecodeAny: %v", err)
			}
			if name != tt.name {
				t.Errorf("DecodeAny name = %q", name)
			}
			if diff := cmp.Diff(tt.value, decoded); diff != "" {
				t.Errorf("DecodeAny mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoder_Errors(t *testing.T) {
	c := newCoder(t, DefaultOptions())
	valid, err := c.Encode("Multisig", multisigValue())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	other, err := c.Encode("Transaction", map[string]any{
		"multisig": key(1), "programId": key(2), "accounts": []any{},
		"data": []byte{}, "signers": []bool{}, "didExecute": true, "ownerSetSeqno": 0,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tests := []struct {
		name    string
		account string
		data    []byte
		kind    errors.Kind
	}{
		{"seven bytes", "Multisig", valid[:7], errors.KindTruncatedInput},
		{"empty", "Multisig", nil, errors.KindTruncatedInput},
		{"discriminator only", "Multisig", valid[:8], errors.KindTruncatedInput},
		{"short owner list", "Multisig", valid[:60], errors.KindTruncatedInput},
		{"missing seqno", "Multisig", valid[:len(valid)-1], errors.KindTruncatedInput},
		{"other account", "Multisig", other, errors.KindDiscriminatorMismatch},
		{"unknown account", "DoesNotExist", valid, errors.KindUnknownAccountType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.account, tt.data)
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("kind = %s, want %s (%v)", errors.KindOf(err), tt.kind, err)
			}
		})
	}
}

func TestCoder_UnknownThenValid(t *testing.T) {
	c := newCoder(t, DefaultOptions())

	_, err := c.Encode("DoesNotExist", map[string]any{})
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindUnknownAccountType}) {
		t.Fatalf("expected unknown_account_type, got %v", err)
	}
	if _, err := c.Encode("Multisig", multisigValue()); err != nil {
		t.Fatalf("Encode after failure: %v", err)
	}
}

func TestCoder_EncodeShapeMismatch(t *testing.T) {
	c := newCoder(t, DefaultOptions())
	_, err := c.Encode("Multisig", map[string]any{
		"owners": []any{key(1)}, "threshold": -1, "nonce": 0, "ownerSetSeqno": 0,
	})
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindValueShapeMismatch {
		t.Fatalf("expected value_shape_mismatch, got %v", err)
	}
	if diff := cmp.Diff([]string{"threshold"}, e.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestCoder_TrailingBytes(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lenient := newCoder(t, Options{Logger: zap.New(core)})
	strict := newCoder(t, Options{Strict: true})

	data, err := lenient.Encode("Multisig", multisigValue())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	padded := append(append([]byte(nil), data...), 0, 0, 0)

	got, err := lenient.Decode("Multisig", padded)
	if err != nil {
		t.Fatalf("lenient Decode: %v", err)
	}
	if diff := cmp.Diff(multisigValue(), got); diff != "" {
		t.Errorf("lenient mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterMessage("ignoring trailing bytes").Len() != 1 {
		t.Errorf("expected one trailing bytes warning, got %d", logs.Len())
	}

	if _, err := strict.Decode("Multisig", padded); !errors.IsKind(err, errors.KindTrailingBytes) {
		t.Errorf("strict: expected trailing_bytes, got %v", err)
	}
	if _, err := strict.Decode("Multisig", data); err != nil {
		t.Errorf("strict exact: %v", err)
	}
}

func TestNew_Collision(t *testing.T) {
	s := multisigSchema()
	s.Accounts = append(s.Accounts, schema.Record{Name: "Multisig"})

	_, err := NewWithDefaults(s)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindDiscriminatorCollision}) {
		t.Fatalf("expected discriminator_collision, got %v", err)
	}
}

func TestNew_CompileErrors(t *testing.T) {
	tests := []struct {
		schema *schema.Schema
		name   string
		kind   errors.Kind
	}{
		{&schema.Schema{Accounts: []schema.Record{{Name: "A", Fields: []schema.Field{
			{Name: "x", Type: schema.Defined("Missing")},
		}}}}, "unresolved", errors.KindUnresolvedTypeReference},
		{&schema.Schema{
			Accounts: []schema.Record{{Name: "A", Fields: []schema.Field{{Name: "x", Type: schema.Defined("Loop")}}}},
			Types: []schema.TypeDef{{Name: "Loop", Type: &schema.Struct{Fields: []schema.Field{
				{Name: "self", Type: schema.Defined("Loop")},
			}}}},
		}, "cycle", errors.KindCyclicTypeDefinition},
		{&schema.Schema{
			Accounts: []schema.Record{{Name: "Marker", Fields: []schema.Field{
				{Name: "items", Type: &schema.Vec{Elem: schema.Defined("Unit")}},
			}}},
			Types: []schema.TypeDef{{Name: "Unit", Type: &schema.Struct{}}},
		}, "vec of empty struct", errors.KindUnsupportedTypeShape},
		{&schema.Schema{Accounts: []schema.Record{{Name: "Big", Fields: []schema.Field{
			{Name: "x", Type: &schema.Array{Elem: &schema.Array{Elem: schema.U8, Len: 1 << 40}, Len: 1 << 40}},
		}}}}, "array size overflow", errors.KindUnsupportedTypeShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWithDefaults(tt.schema); !errors.IsKind(err, tt.kind) {
				t.Errorf("kind = %s, want %s (%v)", errors.KindOf(err), tt.kind, err)
			}
		})
	}
}

func TestNew_EmptySchema(t *testing.T) {
	for _, s := range []*schema.Schema{nil, {}} {
		c, err := NewWithDefaults(s)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if len(c.Names()) != 0 {
			t.Errorf("Names = %v", c.Names())
		}
		if _, err := c.Encode("Multisig", nil); !errors.IsKind(err, errors.KindUnknownAccountType) {
			t.Errorf("expected unknown_account_type, got %v", err)
		}
	}
}

func TestCoder_Identify(t *testing.T) {
	c := newCoder(t, DefaultOptions())
	data, err := c.Encode("Multisig", multisigValue())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	name, err := c.Identify(data)
	if err != nil || name != "Multisig" {
		t.Errorf("Identify = %q, %v", name, err)
	}
	if _, err := c.Identify(data[:5]); !errors.IsKind(err, errors.KindTruncatedInput) {
		t.Errorf("short: %v", err)
	}
	unknown := NewDiscriminator("Other")
	if _, err := c.Identify(unknown[:]); !errors.IsKind(err, errors.KindUnknownAccountType) {
		t.Errorf("unknown: %v", err)
	}
}

func TestCoder_Metadata(t *testing.T) {
	c := newCoder(t, DefaultOptions())

	if diff := cmp.Diff([]string{"Multisig", "Transaction"}, c.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name  string
		size  int
		fixed bool
	}{
		{"Multisig", 8 + 17, false},
		{"Transaction", 8 + 81, false},
	}
	for _, tt := range tests {
		size, err := c.Size(tt.name)
		if err != nil || size != tt.size {
			t.Errorf("Size(%s) = %d, %v; want %d", tt.name, size, err, tt.size)
		}
		fixed, err := c.Fixed(tt.name)
		if err != nil || fixed != tt.fixed {
			t.Errorf("Fixed(%s) = %v, %v", tt.name, fixed, err)
		}
	}

	d, err := c.Discriminator("Multisig")
	if err != nil || d != NewDiscriminator("Multisig") {
		t.Errorf("Discriminator = %s, %v", d, err)
	}
	f, err := c.MemcmpFilter("Multisig")
	if err != nil {
		t.Fatalf("MemcmpFilter: %v", err)
	}
	if f.Offset != 0 || f.Bytes != d.Base58() {
		t.Errorf("MemcmpFilter = %+v", f)
	}
	if _, err := c.Size("DoesNotExist"); !errors.IsKind(err, errors.KindUnknownAccountType) {
		t.Errorf("Size unknown: %v", err)
	}
}

type multisig struct {
	Owners        []string
	Threshold     uint64
	Nonce         uint8
	OwnerSetSeqno uint32 `account:"ownerSetSeqno"`
}

func TestCoder_DecodeInto(t *testing.T) {
	c := newCoder(t, DefaultOptions())
	in := multisig{
		Owners:    []string{key(3).String()},
		Threshold: 1,
		Nonce:     4,
	}
	data, err := c.Encode("Multisig", in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out multisig
	if err := c.DecodeInto("Multisig", data, &out); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("DecodeInto mismatch (-want +got):\n%s", diff)
	}

	if err := c.DecodeInto("Multisig", data, out); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("non-pointer: %v", err)
	}
}

func TestCoder_Concurrent(t *testing.T) {
	c := newCoder(t, DefaultOptions())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n byte) {
			defer wg.Done()
			v := multisigValue()
			v[0].Value = value.Vec{key(n)}
			data, err := c.Encode("Multisig", v)
			if err != nil {
				t.Errorf("Encode: %v", err)
				return
			}
			got, err := c.Decode("Multisig", data)
			if err != nil {
				t.Errorf("Decode: %v", err)
				return
			}
			if diff := cmp.Diff(v, got); diff != "" {
				t.Errorf("mismatch:\n%s", diff)
			}
		}(byte(i))
	}
	wg.Wait()
}

package schema

import (
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/wippyai/accounts-coder/errors"
)

// hclDocument is the HCL form of a schema:
//
//	name    = "serum_multisig"
//	version = "0.1.0"
//
//	account "Multisig" {
//	  field "owners"    { type = "vec<publicKey>" }
//	  field "threshold" { type = "u64" }
//	}
//
//	type "TransactionAccount" {
//	  field "pubkey" { type = "publicKey" }
//	}
//
//	type "Status" {
//	  kind = "enum"
//	  variant "Active" {}
//	  variant "Frozen" {
//	    field "until" { type = "i64" }
//	  }
//	}
type hclDocument struct {
	Name     *string      `hcl:"name,optional"`
	Version  *string      `hcl:"version,optional"`
	Accounts []hclAccount `hcl:"account,block"`
	Types    []hclType    `hcl:"type,block"`
}

type hclAccount struct {
	Name   string     `hcl:"name,label"`
	Fields []hclField `hcl:"field,block"`
}

type hclType struct {
	Kind     *string      `hcl:"kind,optional"`
	Alias    *string      `hcl:"alias,optional"`
	Name     string       `hcl:"name,label"`
	Fields   []hclField   `hcl:"field,block"`
	Variants []hclVariant `hcl:"variant,block"`
}

type hclVariant struct {
	Name   string     `hcl:"name,label"`
	Fields []hclField `hcl:"field,block"`
}

type hclField struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

// ParseHCL reads an HCL schema document. filename selects the syntax
// (".hcl" native, ".json" HCL-JSON) and appears in diagnostics.
func ParseHCL(filename string, src []byte) (*Schema, error) {
	var doc hclDocument
	if err := hclsimple.Decode(filename, src, nil, &doc); err != nil {
		return nil, errors.Load("parse hcl schema "+filename, err)
	}

	s := &Schema{}
	if doc.Name != nil {
		s.Name = *doc.Name
	}
	if doc.Version != nil {
		s.Version = *doc.Version
	}

	for _, ht := range doc.Types {
		t, err := ht.toType()
		if err != nil {
			return nil, err
		}
		s.Types = append(s.Types, TypeDef{Name: ht.Name, Type: t})
	}

	for _, ha := range doc.Accounts {
		fields, err := hclFields(ha.Fields, []string{ha.Name})
		if err != nil {
			return nil, err
		}
		s.Accounts = append(s.Accounts, Record{Name: ha.Name, Fields: fields})
	}

	return s, nil
}

func (ht hclType) toType() (Type, error) {
	path := []string{ht.Name}

	kind := "struct"
	if ht.Kind != nil {
		kind = *ht.Kind
	}
	if ht.Alias != nil {
		kind = "alias"
	}

	switch {
	case kind != "enum" && len(ht.Variants) > 0:
		return nil, ht.misplaced("variant", kind)
	case kind != "struct" && len(ht.Fields) > 0:
		return nil, ht.misplaced("field", kind)
	}

	switch kind {
	case "struct":
		fields, err := hclFields(ht.Fields, path)
		if err != nil {
			return nil, err
		}
		return &Struct{Fields: fields}, nil

	case "enum":
		e := &Enum{Variants: make([]Variant, 0, len(ht.Variants))}
		for _, hv := range ht.Variants {
			fields, err := hclFields(hv.Fields, append(append([]string{}, path...), hv.Name))
			if err != nil {
				return nil, err
			}
			e.Variants = append(e.Variants, Variant{Name: hv.Name, Fields: fields})
		}
		return e, nil

	case "alias":
		t, err := ParseType(*ht.Alias)
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path(path...).
				Cause(err).
				Detail("invalid alias").
				Build()
		}
		return t, nil

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(path...).
			Detail("unsupported type kind %q", kind).
			Build()
	}
}

func (ht hclType) misplaced(block, kind string) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Path(ht.Name).
		Detail("%s blocks are not allowed in a %s type", block, kind).
		Build()
}

func hclFields(hfs []hclField, path []string) ([]Field, error) {
	if len(hfs) == 0 {
		return nil, nil
	}
	fields := make([]Field, 0, len(hfs))
	for _, hf := range hfs {
		t, err := ParseType(hf.Type)
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path(append(append([]string{}, path...), hf.Name)...).
				Cause(err).
				Detail("invalid field type").
				Build()
		}
		fields = append(fields, Field{Name: hf.Name, Type: t})
	}
	return fields, nil
}

package schema

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/wippyai/accounts-coder/errors"
)

type idlDocument struct {
	Metadata *idlMetadata `json:"metadata"`
	Version  string       `json:"version"`
	Name     string       `json:"name"`
	Accounts []idlTypeDef `json:"accounts"`
	Types    []idlTypeDef `json:"types"`
}

type idlMetadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type idlTypeDef struct {
	Type *idlTypeBody `json:"type"`
	Name string       `json:"name"`
}

type idlTypeBody struct {
	Alias    json.RawMessage `json:"alias"`
	Kind     string          `json:"kind"`
	Fields   json.RawMessage `json:"fields"`
	Variants []idlVariant    `json:"variants"`
}

type idlVariant struct {
	Name   string          `json:"name"`
	Fields json.RawMessage `json:"fields"`
}

type idlField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

// ParseIDL reads an Anchor-style IDL JSON document. Only the accounts and
// types sections are used; instructions, events and errors are ignored.
func ParseIDL(data []byte) (*Schema, error) {
	var doc idlDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Load("parse idl", err)
	}

	s := &Schema{Name: doc.Name, Version: doc.Version}
	if doc.Metadata != nil {
		if s.Name == "" {
			s.Name = doc.Metadata.Name
		}
		if s.Version == "" {
			s.Version = doc.Metadata.Version
		}
	}

	for _, td := range doc.Types {
		t, err := td.toType()
		if err != nil {
			return nil, err
		}
		s.Types = append(s.Types, TypeDef{Name: td.Name, Type: t})
	}

	for _, acc := range doc.Accounts {
		body := acc.Type
		if body == nil {
			// Newer IDLs list only the name and keep the layout under types.
			for _, td := range doc.Types {
				if td.Name == acc.Name {
					body = td.Type
					break
				}
			}
		}
		if body == nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path(acc.Name).
				Detail("account has no type definition").
				Build()
		}
		if body.Kind != "struct" {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path(acc.Name).
				Detail("account must be a struct, got %q", body.Kind).
				Build()
		}
		fields, err := parseIDLFields(body.Fields, []string{acc.Name})
		if err != nil {
			return nil, err
		}
		s.Accounts = append(s.Accounts, Record{Name: acc.Name, Fields: fields})
	}

	return s, nil
}

func (td idlTypeDef) toType() (Type, error) {
	path := []string{td.Name}
	if td.Type == nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(path...).
			Detail("type has no definition").
			Build()
	}

	switch td.Type.Kind {
	case "struct":
		fields, err := parseIDLFields(td.Type.Fields, path)
		if err != nil {
			return nil, err
		}
		return &Struct{Fields: fields}, nil

	case "enum":
		e := &Enum{Variants: make([]Variant, 0, len(td.Type.Variants))}
		for _, v := range td.Type.Variants {
			fields, err := parseIDLFields(v.Fields, append(append([]string{}, path...), v.Name))
			if err != nil {
				return nil, err
			}
			e.Variants = append(e.Variants, Variant{Name: v.Name, Fields: fields})
		}
		return e, nil

	case "alias", "type":
		return parseIDLType(td.Type.Alias, path)

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(path...).
			Detail("unsupported type kind %q", td.Type.Kind).
			Build()
	}
}

// parseIDLFields accepts named fields ([{name, type}]) and tuple fields
// ([type, ...]); tuple members are named by position.
func parseIDLFields(raw json.RawMessage, path []string) ([]Field, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(path...).
			Cause(err).
			Detail("fields must be an array").
			Build()
	}

	fields := make([]Field, 0, len(items))
	for i, item := range items {
		var named idlField
		if json.Unmarshal(item, &named) == nil && named.Name != "" && len(named.Type) > 0 {
			t, err := parseIDLType(named.Type, append(append([]string{}, path...), named.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: named.Name, Type: t})
			continue
		}

		name := strconv.Itoa(i)
		t, err := parseIDLType(item, append(append([]string{}, path...), name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: t})
	}
	return fields, nil
}

func parseIDLType(raw json.RawMessage, path []string) (Type, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if k, ok := PrimitiveKind(name); ok {
			return Primitive(k), nil
		}
		return Defined(name), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) != 1 {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(path...).
			Detail("invalid type %s", string(raw)).
			Build()
	}

	for key, inner := range obj {
		switch key {
		case "vec":
			elem, err := parseIDLType(inner, path)
			if err != nil {
				return nil, err
			}
			return &Vec{Elem: elem}, nil

		case "option":
			elem, err := parseIDLType(inner, path)
			if err != nil {
				return nil, err
			}
			return &Option{Elem: elem}, nil

		case "defined":
			// {"defined": "Name"} or {"defined": {"name": "Name"}}
			var ref string
			if err := json.Unmarshal(inner, &ref); err == nil {
				return Defined(ref), nil
			}
			var named struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(inner, &named); err == nil && named.Name != "" {
				return Defined(named.Name), nil
			}

		case "array":
			var pair []json.RawMessage
			if err := json.Unmarshal(inner, &pair); err == nil && len(pair) == 2 {
				elem, err := parseIDLType(pair[0], path)
				if err != nil {
					return nil, err
				}
				var n int
				if err := json.Unmarshal(pair[1], &n); err != nil {
					return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
						Path(path...).
						Cause(err).
						Detail("array length must be an integer").
						Build()
				}
				return &Array{Elem: elem, Len: n}, nil
			}
		}
	}

	return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Path(path...).
		Detail("invalid type %s", string(raw)).
		Build()
}

package schema

// Schema is the interface description handed to the coder.
type Schema struct {
	Name     string
	Version  string
	Accounts []Record
	Types    []TypeDef
}

// Record is a Record Definition: one decodable account shape.
type Record struct {
	Name   string
	Fields []Field
}

// TypeDef is a Shared Type Definition.
type TypeDef struct {
	Type Type
	Name string
}

// Account returns the record with the given name.
func (s *Schema) Account(name string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	for _, r := range s.Accounts {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}

// TypeDef returns the shared type with the given name.
func (s *Schema) TypeDef(name string) (TypeDef, bool) {
	if s == nil {
		return TypeDef{}, false
	}
	for _, td := range s.Types {
		if td.Name == name {
			return td, true
		}
	}
	return TypeDef{}, false
}

// AccountNames returns record names in declaration order.
func (s *Schema) AccountNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Accounts))
	for i, r := range s.Accounts {
		names[i] = r.Name
	}
	return names
}

// IsEmpty reports whether the schema declares no accounts.
func (s *Schema) IsEmpty() bool {
	return s == nil || len(s.Accounts) == 0
}

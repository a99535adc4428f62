package codec

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
)

// TagName is the struct tag consulted when matching Go struct fields to
// schema fields. `account:"-"` excludes a field.
const TagName = "account"

type goField struct {
	name  string
	tag   string
	index []int
}

var fieldCache sync.Map // reflect.Type -> []goField

// structFields lists the exported fields of t, flattening embedded structs.
func structFields(t reflect.Type) []goField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]goField)
	}

	var fields []goField
	var walk func(t reflect.Type, index []int)
	walk = func(t reflect.Type, index []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get(TagName)
			if tag == "-" {
				continue
			}
			idx := append(append([]int(nil), index...), i)
			if sf.Anonymous && tag == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, idx)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}
			fields = append(fields, goField{name: sf.Name, tag: tag, index: idx})
		}
	}
	walk(t, nil)

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]goField)
}

// findField picks the Go field for a schema field name. Tags win, then an
// exact name, then a case-insensitive match, then camelCase/snake_case
// equivalence.
func findField(fields []goField, name string) (goField, bool) {
	for _, f := range fields {
		if f.tag == name {
			return f, true
		}
	}
	for _, f := range fields {
		if f.tag == "" && f.name == name {
			return f, true
		}
	}
	for _, f := range fields {
		if f.tag == "" && strings.EqualFold(f.name, name) {
			return f, true
		}
	}
	for _, f := range fields {
		if f.tag == "" && sameWords(f.name, name) {
			return f, true
		}
	}
	return goField{}, false
}

// findKey does the same for map keys.
func findKey(keys []string, name string) (string, bool) {
	for _, k := range keys {
		if k == name {
			return k, true
		}
	}
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	for _, k := range keys {
		if sameWords(k, name) {
			return k, true
		}
	}
	return "", false
}

func sameWords(a, b string) bool {
	return strings.EqualFold(inflect.Camelize(a), inflect.Camelize(b))
}

// fieldByIndex walks index, allocating nil embedded pointers when alloc is
// set. It reports false when a nil embedded pointer blocks a read.
func fieldByIndex(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

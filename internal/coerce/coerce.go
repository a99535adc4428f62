package coerce

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
)

// Uint64 converts value to uint64. Negative, fractional and out of range
// inputs are rejected.
func Uint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case int:
		if v >= 0 {
			return uint64(v), true
		}
		return 0, false
	case float64:
		return floatToUint64(v)
	case json.Number:
		u, err := strconv.ParseUint(string(v), 10, 64)
		return u, err == nil
	case *big.Int:
		if v != nil && v.Sign() >= 0 && v.IsUint64() {
			return v.Uint64(), true
		}
		return 0, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := rv.Int(); i >= 0 {
			return uint64(i), true
		}
	case reflect.Float32, reflect.Float64:
		return floatToUint64(rv.Float())
	}
	return 0, false
}

// Int64 converts value to int64. Fractional and out of range inputs are
// rejected.
func Int64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return floatToInt64(v)
	case json.Number:
		i, err := strconv.ParseInt(string(v), 10, 64)
		return i, err == nil
	case *big.Int:
		if v != nil && v.IsInt64() {
			return v.Int64(), true
		}
		return 0, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), true
		}
	case reflect.Float32, reflect.Float64:
		return floatToInt64(rv.Float())
	}
	return 0, false
}

// Float64 converts any numeric input to float64.
func Float64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// Big converts value to a big integer. Decimal strings and json.Number are
// parsed exactly; floats must be integral.
func Big(value any) (*big.Int, bool) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, false
		}
		return new(big.Int).Set(v), true
	case json.Number:
		return new(big.Int).SetString(string(v), 10)
	case string:
		return new(big.Int).SetString(v, 10)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
			return nil, false
		}
		b, _ := big.NewFloat(f).Int(nil)
		return b, true
	}
	return nil, false
}

func floatToUint64(v float64) (uint64, bool) {
	// 1<<64 is exact in float64; anything below it converts without wrapping.
	if v >= 0 && v < float64(1<<64) && v == math.Trunc(v) {
		return uint64(v), true
	}
	return 0, false
}

func floatToInt64(v float64) (int64, bool) {
	if v >= math.MinInt64 && v < float64(1<<63) && v == math.Trunc(v) {
		return int64(v), true
	}
	return 0, false
}

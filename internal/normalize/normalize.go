// Package normalize maps upstream JSON of unknown shape onto canonical records.
//
// Each record declares, per field, the keys to probe in a `src` struct tag:
//
//	IDGondola int64 `json:"idGondola" src:"idGondola,id_gondola,id"`
//
// Without a `src` tag the json name and its snake_case form are probed. The
// mapping never fails: missing or malformed values degrade to zero values,
// and optional (pointer) fields stay nil.
package normalize

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"gondolatrack/internal/quantity"

	"github.com/shopspring/decimal"
)

var (
	quantityType = reflect.TypeOf(quantity.Quantity{})
	decimalType  = reflect.TypeOf(decimal.Decimal{})
)

// Decode parses a response body. Empty or invalid JSON yields nil.
func Decode(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Unwrap strips a {"data": ...} envelope.
func Unwrap(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["data"]; ok && inner != nil {
			return inner
		}
	}
	return v
}

// One maps a single record, unwrapping an envelope first.
func One[T any](raw any) T {
	var out T
	assign(reflect.ValueOf(&out).Elem(), Unwrap(raw))
	return out
}

// Many maps a list given bare or as {"data": [...]}. Anything else is an
// empty list.
func Many[T any](raw any) []T {
	list, _ := Unwrap(raw).([]any)
	out := make([]T, 0, len(list))
	for _, el := range list {
		var v T
		assign(reflect.ValueOf(&v).Elem(), el)
		out = append(out, v)
	}
	return out
}

// Field returns the first non-null value found under keys.
func Field(raw any, keys ...string) (any, bool) {
	m, _ := Unwrap(raw).(map[string]any)
	return lookup(m, keys)
}

// String reads a scalar field as text.
func String(raw any, keys ...string) string {
	v, _ := Field(raw, keys...)
	s, _ := toString(v)
	return s
}

func lookup(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// fill maps every exported field of the struct v from the object raw.
func fill(v reflect.Value, raw any) {
	m, _ := raw.(map[string]any)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		val, _ := lookup(m, probeKeys(f))
		assign(v.Field(i), val)
	}
}

func probeKeys(f reflect.StructField) []string {
	if src := f.Tag.Get("src"); src != "" {
		return strings.Split(src, ",")
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		name = f.Name
	}
	if snake := snakeCase(name); snake != name {
		return []string{name, snake}
	}
	return []string{name}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// assign sets v from raw and reports whether raw carried a usable value.
func assign(v reflect.Value, raw any) bool {
	switch v.Type() {
	case quantityType:
		v.Set(reflect.ValueOf(quantity.From(raw)))
		return raw != nil
	case decimalType:
		v.Set(reflect.ValueOf(quantity.Decimal(raw)))
		return raw != nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if raw == nil {
			return false
		}
		elem := reflect.New(v.Type().Elem())
		if !assign(elem.Elem(), raw) {
			return false
		}
		v.Set(elem)
		return true
	case reflect.String:
		s, ok := toString(raw)
		v.SetString(s)
		return ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toInt(raw)
		v.SetInt(n)
		return ok
	case reflect.Float32, reflect.Float64:
		n, ok := toFloat(raw)
		v.SetFloat(n)
		return ok
	case reflect.Bool:
		b, ok := toBool(raw)
		v.SetBool(b)
		return ok
	case reflect.Slice:
		list, ok := raw.([]any)
		out := reflect.MakeSlice(v.Type(), 0, len(list))
		for _, el := range list {
			item := reflect.New(v.Type().Elem()).Elem()
			assign(item, el)
			out = reflect.Append(out, item)
		}
		v.Set(out)
		return ok
	case reflect.Struct:
		fill(v, raw)
		_, ok := raw.(map[string]any)
		return ok
	case reflect.Interface:
		if raw != nil {
			v.Set(reflect.ValueOf(raw))
		}
		return raw != nil
	}
	return false
}

func toString(raw any) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

func toInt(raw any) (int64, bool) {
	switch x := raw.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		if f, err := x.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(x), true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f, true
		}
	case float64:
		return x, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch x := raw.(type) {
	case bool:
		return x, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return b, true
		}
	case json.Number:
		return x.String() != "0", true
	}
	return false, false
}

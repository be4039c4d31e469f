package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// maxDocumentDepth bounds nesting so a hostile payload cannot exhaust the stack.
const maxDocumentDepth = 512

// ErrNotObject is returned when a document's top level value is not a JSON object.
var ErrNotObject = errors.New("document root must be a JSON object")

var (
	compactJSON = jsoniter.Config{EscapeHTML: false, SortMapKeys: false}.Froze()
	indentJSON  = jsoniter.Config{EscapeHTML: false, SortMapKeys: false, IndentionStep: 2}.Froze()
)

// -- Ordered Document Model --

// Object is a JSON object that remembers the order its keys were decoded in.
// Values are one of *Object, []any, string, json.Number, bool or nil.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Len reports the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Set stores a value. A new key is appended; an existing key keeps its position.
func (o *Object) Set(key string, value any) *Object {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Entry is a single key/value pair of an Object.
type Entry struct {
	Key   string
	Value any
}

// Entries returns the key/value pairs in document order.
func (o *Object) Entries() []Entry {
	if o == nil {
		return nil
	}
	out := make([]Entry, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, Entry{Key: k, Value: o.values[k]})
	}
	return out
}

// Equal reports whether two objects hold the same keys, in the same order, with equal values.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !valuesEqual(o.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		af, aerr := av.Float64()
		bf, berr := bv.Float64()
		return aerr == nil && berr == nil && af == bf
	default:
		return a == b
	}
}

// MarshalJSON writes the object compactly, preserving key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	return encode(compactJSON, o)
}

// UnmarshalJSON replaces the object's contents with the decoded document.
func (o *Object) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

// -- Decoding --

// ParseDocument decodes a JSON object, keeping key order at every level.
// Numbers are kept as json.Number so their textual form survives a round trip.
func ParseDocument(data []byte) (*Object, error) {
	iter := jsoniter.ParseBytes(compactJSON, data)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, ErrNotObject
	}
	root := decodeValue(iter, 0)
	if iter.Error != nil {
		return nil, fmt.Errorf("decode document: %w", iter.Error)
	}
	// Anything other than whitespace after the root object is rejected.
	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue || iter.Error == nil {
		return nil, errors.New("decode document: unexpected data after root object")
	}
	obj, ok := root.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

func decodeValue(iter *jsoniter.Iterator, depth int) any {
	if depth > maxDocumentDepth {
		iter.ReportError("decodeValue", "document nested too deeply")
		return nil
	}
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		obj := NewObject()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			obj.Set(key, decodeValue(it, depth+1))
			return it.Error == nil
		})
		return obj
	case jsoniter.ArrayValue:
		arr := make([]any, 0)
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			arr = append(arr, decodeValue(it, depth+1))
			return it.Error == nil
		})
		return arr
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.NumberValue:
		return iter.ReadNumber()
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	default:
		iter.ReportError("decodeValue", "unexpected token")
		return nil
	}
}

// -- Encoding --

// MarshalIndent renders a document value with two-space indentation, preserving key order.
func MarshalIndent(v any) ([]byte, error) {
	return encode(indentJSON, v)
}

func encode(api jsoniter.API, v any) ([]byte, error) {
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)
	writeValue(stream, v)
	if stream.Error != nil {
		return nil, fmt.Errorf("encode document: %w", stream.Error)
	}
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

func writeValue(stream *jsoniter.Stream, v any) {
	switch t := v.(type) {
	case *Object:
		if t.Len() == 0 {
			stream.WriteEmptyObject()
			return
		}
		stream.WriteObjectStart()
		for i, k := range t.keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(k)
			writeValue(stream, t.values[k])
		}
		stream.WriteObjectEnd()
	case []any:
		if len(t) == 0 {
			stream.WriteEmptyArray()
			return
		}
		stream.WriteArrayStart()
		for i, item := range t {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, item)
		}
		stream.WriteArrayEnd()
	case string:
		stream.WriteString(t)
	case json.Number:
		stream.WriteRaw(t.String())
	case bool:
		stream.WriteBool(t)
	case nil:
		stream.WriteNil()
	default:
		stream.WriteVal(t)
	}
}

// -- Value Helpers --

// Truthy reports whether a document value counts as present.
// Null, false, zero and the empty string are absent. Every object and array is present.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err == nil && f != 0
	default:
		return true
	}
}

// Text renders a scalar value the way it is shown to a reader.
// Arrays are joined with commas and objects are written as compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, Text(item))
		}
		return strings.Join(parts, ",")
	case *Object:
		b, err := t.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// AsObject returns v as an *Object when it is one.
func AsObject(v any) (*Object, bool) {
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

// AsArray returns v as a slice when it is a JSON array.
func AsArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

// lookup walks a path of object keys, returning nil when any step is missing.
func lookup(v any, path ...string) any {
	cur := v
	for _, key := range path {
		obj, ok := AsObject(cur)
		if !ok {
			return nil
		}
		cur, _ = obj.Get(key)
	}
	return cur
}

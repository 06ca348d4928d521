// Package jsonfile implements an order-preserving model of nested JSON
// translation documents.
//
// A document is a tree of objects whose string leaves are the translatable
// values. Key order and nesting are kept exactly as in the source file;
// non-string leaves (numbers, booleans, nulls, arrays) are carried through
// verbatim. Go maps lose key order, so objects are decoded token by token
// instead of through map unmarshaling.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Value is a single JSON value inside a document.
//
// Exactly one representation is populated: Obj for nested objects, Str for
// string leaves (IsString true), Raw for every other leaf.
type Value struct {
	Obj      *Object
	Str      string
	IsString bool
	Raw      json.RawMessage
}

// Object is a JSON object with stable key order.
type Object struct {
	keys   []string
	values map[string]*Value
}

// Keys returns the object's keys in document order.
func (o *Object) Keys() []string {
	return o.keys
}

// Value returns the value stored under key, or nil.
func (o *Object) Value(key string) *Value {
	return o.values[key]
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// StringLeaves collects every string leaf of the tree in document order.
// The returned pointers alias the tree, so writing through them mutates
// the document; the slice length is also the translation unit total, which
// keeps progress counting and translation order in lockstep.
func (o *Object) StringLeaves() []*Value {
	var leaves []*Value
	o.walk(&leaves)
	return leaves
}

func (o *Object) walk(leaves *[]*Value) {
	for _, key := range o.keys {
		v := o.values[key]
		switch {
		case v.Obj != nil:
			v.Obj.walk(leaves)
		case v.IsString:
			*leaves = append(*leaves, v)
		}
	}
}

// Parse decodes a JSON document. The top-level value must be an object.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top-level JSON value must be an object, got %v", tok)
	}

	obj, err := parseObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return obj, nil
}

// ParseFile reads and decodes a JSON document from disk.
func ParseFile(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// parseObject consumes an object body whose opening brace has already been
// read, up to and including the closing brace.
func parseObject(dec *json.Decoder) (*Object, error) {
	obj := &Object{values: make(map[string]*Value)}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}

		val, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}

		obj.keys = append(obj.keys, key)
		obj.values[key] = val
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

func parseValue(raw json.RawMessage) (*Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch trimmed[0] {
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil { // opening brace
			return nil, err
		}
		obj, err := parseObject(dec)
		if err != nil {
			return nil, err
		}
		return &Value{Obj: obj}, nil

	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &Value{Str: s, IsString: true}, nil

	default:
		return &Value{Raw: append(json.RawMessage(nil), trimmed...)}, nil
	}
}

// Marshal serializes the document with 2-space indentation, preserving
// key order and nesting.
func (o *Object) Marshal() ([]byte, error) {
	var b bytes.Buffer
	if err := o.marshalInto(&b, ""); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// WriteFile serializes the document and writes it to disk.
func (o *Object) WriteFile(path string) error {
	data, err := o.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (o *Object) marshalInto(b *bytes.Buffer, indent string) error {
	if len(o.keys) == 0 {
		b.WriteString("{}")
		return nil
	}

	inner := indent + "  "
	b.WriteString("{\n")
	for i, key := range o.keys {
		b.WriteString(inner)
		b.WriteString(jsonString(key))
		b.WriteString(": ")
		if err := o.values[key].marshalInto(b, inner); err != nil {
			return err
		}
		if i < len(o.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteByte('}')
	return nil
}

func (v *Value) marshalInto(b *bytes.Buffer, indent string) error {
	switch {
	case v.Obj != nil:
		return v.Obj.marshalInto(b, indent)
	case v.IsString:
		b.WriteString(jsonString(v.Str))
		return nil
	default:
		// Re-indent raw leaves (arrays, numbers, ...) at the current level.
		var buf bytes.Buffer
		if err := json.Indent(&buf, v.Raw, indent, "  "); err != nil {
			return err
		}
		b.Write(buf.Bytes())
		return nil
	}
}

// jsonString encodes s as a JSON string literal.
func jsonString(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		// json.Marshal of a string cannot fail on valid UTF-8; replace
		// invalid bytes rather than panic.
		return jsonString(strings.ToValidUTF8(s, "�"))
	}
	return string(data)
}

package frontmatter

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a front-matter scalar or list of scalars.
type Value struct {
	kind  Kind
	str   string
	num   float64
	isInt bool
	b     bool
	list  []Value
}

func StringValue(s string) Value     { return Value{kind: KindString, str: s} }
func NumberValue(f float64) Value    { return Value{kind: KindNumber, num: f} }
func IntValue(i int64) Value         { return Value{kind: KindNumber, num: float64(i), isInt: true} }
func BoolValue(b bool) Value         { return Value{kind: KindBool, b: b} }
func ListValue(items ...Value) Value { return Value{kind: KindList, list: items} }

func (v Value) Kind() Kind { return v.kind }

// String renders the value the way it would appear in a template.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	default:
		return v.str
	}
}

// Interface returns the native Go value used for template bindings.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		if v.isInt {
			return int64(v.num)
		}
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	default:
		return v.str
	}
}

// ParseValue types a raw front-matter value. Quoted strings lose their
// quotes, numbers and booleans are recognised, and flow sequences of scalars
// become lists. Anything else is kept verbatim as a string.
func ParseValue(raw string) Value {
	if raw == "" {
		return StringValue("")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil || len(doc.Content) == 0 {
		return StringValue(raw)
	}

	node := doc.Content[0]
	switch node.Kind {
	case yaml.ScalarNode:
		return scalarValue(node)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			if child.Kind != yaml.ScalarNode {
				return StringValue(raw)
			}
			items = append(items, scalarValue(child))
		}
		return ListValue(items...)
	default:
		return StringValue(raw)
	}
}

func scalarValue(node *yaml.Node) Value {
	switch node.ShortTag() {
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return IntValue(i)
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return NumberValue(f)
		}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return BoolValue(b)
		}
	case "!!null":
		return StringValue("")
	}
	return StringValue(node.Value)
}

// KeyNotFoundError is returned by typed accessors for absent keys.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("front matter key %q not found", e.Key)
}

// TypeMismatchError is returned by typed accessors when the stored kind differs.
type TypeMismatchError struct {
	Key  string
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("front matter key %q is a %s, not a %s", e.Key, e.Got, e.Want)
}

// FrontMatter is an ordered mapping of keys to values. It is not modified
// after parsing; With returns a modified copy.
type FrontMatter struct {
	keys   []string
	values map[string]Value
}

// New returns an empty FrontMatter.
func New() *FrontMatter {
	return &FrontMatter{values: map[string]Value{}}
}

func (fm *FrontMatter) set(key string, v Value) {
	if _, exists := fm.values[key]; !exists {
		fm.keys = append(fm.keys, key)
	}
	fm.values[key] = v
}

// With returns a copy of fm with key set to v.
func (fm *FrontMatter) With(key string, v Value) *FrontMatter {
	cp := New()
	for _, k := range fm.Keys() {
		cp.set(k, fm.values[k])
	}
	cp.set(key, v)
	return cp
}

// Len returns the number of keys.
func (fm *FrontMatter) Len() int {
	if fm == nil {
		return 0
	}
	return len(fm.keys)
}

// Keys returns the keys in declaration order.
func (fm *FrontMatter) Keys() []string {
	if fm == nil {
		return nil
	}
	return append([]string(nil), fm.keys...)
}

// Get returns the raw value for key.
func (fm *FrontMatter) Get(key string) (Value, bool) {
	if fm == nil {
		return Value{}, false
	}
	v, ok := fm.values[key]
	return v, ok
}

// Has reports whether key is present.
func (fm *FrontMatter) Has(key string) bool {
	_, ok := fm.Get(key)
	return ok
}

func (fm *FrontMatter) typed(key string, want Kind) (Value, error) {
	v, ok := fm.Get(key)
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	if v.kind != want {
		return Value{}, &TypeMismatchError{Key: key, Want: want, Got: v.kind}
	}
	return v, nil
}

func (fm *FrontMatter) String(key string) (string, error) {
	v, err := fm.typed(key, KindString)
	return v.str, err
}

func (fm *FrontMatter) Number(key string) (float64, error) {
	v, err := fm.typed(key, KindNumber)
	return v.num, err
}

func (fm *FrontMatter) Bool(key string) (bool, error) {
	v, err := fm.typed(key, KindBool)
	return v.b, err
}

func (fm *FrontMatter) List(key string) ([]Value, error) {
	v, err := fm.typed(key, KindList)
	return v.list, err
}

// Map returns the metadata as native Go values.
func (fm *FrontMatter) Map() map[string]any {
	out := make(map[string]any, fm.Len())
	for _, k := range fm.Keys() {
		out[k] = fm.values[k].Interface()
	}
	return out
}

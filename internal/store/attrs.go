package store

import (
	"sort"
	"strconv"
)

// AttrKind is the value type of an attribute
type AttrKind string

const (
	AttrString AttrKind = "string"
	AttrBool   AttrKind = "bool"
	AttrInt    AttrKind = "int"
	AttrFloat  AttrKind = "float"
)

// Attr is a typed attribute value, stored as text
type Attr struct {
	Kind  AttrKind
	Value string
}

// Attributes maps attribute names to values
type Attributes map[string]Attr

// StringAttr creates a string attribute
func StringAttr(v string) Attr { return Attr{Kind: AttrString, Value: v} }

// BoolAttr creates a boolean attribute
func BoolAttr(v bool) Attr { return Attr{Kind: AttrBool, Value: strconv.FormatBool(v)} }

// IntAttr creates an integer attribute
func IntAttr(v int64) Attr { return Attr{Kind: AttrInt, Value: strconv.FormatInt(v, 10)} }

// FloatAttr creates a float attribute
func FloatAttr(v float64) Attr {
	return Attr{Kind: AttrFloat, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// String returns the raw value of key, or "" when missing
func (a Attributes) String(key string) string {
	return a[key].Value
}

// Bool returns the boolean value of key and whether it was present and well-formed
func (a Attributes) Bool(key string) (bool, bool) {
	attr, ok := a[key]
	if !ok || attr.Kind != AttrBool {
		return false, false
	}
	v, err := strconv.ParseBool(attr.Value)
	if err != nil {
		return false, false
	}
	return v, true
}

// Has reports whether key is set
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Keys returns the attribute names in sorted order
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package paramtree models a typed, hierarchical parameter tree and its XML form.
//
// Each node becomes an element named after the node, with title and type
// attributes. Leaves carry their value as text; groups carry children.
package paramtree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Node types
const (
	TypeGroup = "group"
	TypeStr   = "str"
	TypeText  = "text"
	TypeBool  = "bool"
	TypeInt   = "int"
	TypeFloat = "float"
	TypeDate  = "date_time"
	TypeList  = "list"
)

// Node is one parameter or group of parameters
type Node struct {
	Name     string
	Title    string
	Type     string
	Value    string
	Visible  bool
	Readonly bool
	Children []*Node
}

// Group creates a group node
func Group(name, title string, children ...*Node) *Node {
	return &Node{Name: name, Title: title, Type: TypeGroup, Visible: true, Children: children}
}

// String creates a str leaf
func String(name, title, value string) *Node {
	return &Node{Name: name, Title: title, Type: TypeStr, Value: value, Visible: true}
}

// Text creates a multi-line text leaf
func Text(name, title, value string) *Node {
	return &Node{Name: name, Title: title, Type: TypeText, Value: value, Visible: true}
}

// Bool creates a bool leaf
func Bool(name, title string, value bool) *Node {
	return &Node{Name: name, Title: title, Type: TypeBool, Value: strconv.FormatBool(value), Visible: true}
}

// Int creates an int leaf
func Int(name, title string, value int) *Node {
	return &Node{Name: name, Title: title, Type: TypeInt, Value: strconv.Itoa(value), Visible: true}
}

// Hide marks the node as hidden from the operator and returns it
func (n *Node) Hide() *Node {
	n.Visible = false
	return n
}

// ReadOnly marks the node read-only and returns it
func (n *Node) ReadOnly() *Node {
	n.Readonly = true
	return n
}

// Add appends children and returns the node
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Child returns the descendant at the given name path
func (n *Node) Child(path ...string) (*Node, bool) {
	cur := n
	for _, name := range path {
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// StringAt returns the value at path, or "" when missing
func (n *Node) StringAt(path ...string) string {
	if c, ok := n.Child(path...); ok {
		return c.Value
	}
	return ""
}

// BoolAt returns the boolean value at path, or fallback when missing or malformed
func (n *Node) BoolAt(fallback bool, path ...string) bool {
	c, ok := n.Child(path...)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(c.Value))
	if err != nil {
		return fallback
	}
	return b
}

type xmlNode struct {
	XMLName  xml.Name
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr"`
	Visible  string    `xml:"visible,attr,omitempty"`
	Readonly string    `xml:"readonly,attr,omitempty"`
	Value    string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

func toXML(n *Node) xmlNode {
	x := xmlNode{
		XMLName: xml.Name{Local: n.Name},
		Title:   n.Title,
		Type:    n.Type,
	}
	if !n.Visible {
		x.Visible = "0"
	}
	if n.Readonly {
		x.Readonly = "1"
	}
	if n.Type == TypeGroup || len(n.Children) > 0 {
		for _, c := range n.Children {
			x.Children = append(x.Children, toXML(c))
		}
	} else {
		x.Value = n.Value
	}
	return x
}

func fromXML(x xmlNode) *Node {
	n := &Node{
		Name:     x.XMLName.Local,
		Title:    x.Title,
		Type:     x.Type,
		Visible:  x.Visible != "0",
		Readonly: x.Readonly == "1",
	}
	if len(x.Children) > 0 || n.Type == TypeGroup {
		for _, c := range x.Children {
			n.Children = append(n.Children, fromXML(c))
		}
	} else {
		n.Value = x.Value
	}
	return n
}

// Marshal encodes the tree as indented XML
func Marshal(n *Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("paramtree: nil node")
	}
	if err := validateName(n); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(toXML(n)); err != nil {
		return nil, fmt.Errorf("paramtree: encode: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("paramtree: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal decodes a tree previously produced by Marshal
func Unmarshal(data []byte) (*Node, error) {
	var x xmlNode
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("paramtree: decode: %w", err)
	}
	return fromXML(x), nil
}

func validateName(n *Node) error {
	if n.Name == "" {
		return fmt.Errorf("paramtree: node %q has no name", n.Title)
	}
	for i, r := range n.Name {
		ok := r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok || (i == 0 && (r == '-' || r == '.')) {
			return fmt.Errorf("paramtree: %q is not a valid element name", n.Name)
		}
	}
	for _, c := range n.Children {
		if err := validateName(c); err != nil {
			return err
		}
	}
	return nil
}

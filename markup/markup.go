// Package markup parses a small declarative language describing an element
// tree and builds a tree.Tree from it.
//
// A document is one root node. Nodes are div, text or image; text and image
// take a quoted argument (the content or the file path) and any node may
// carry a block of properties and children:
//
//	div {
//	    padding: 8
//	    background: #f4f4f4
//
//	    text "Hello" { font-size: 24; color: navy }
//	    image "logo.png" { position: absolute; top: 8; right: 8; width: 32 }
//	}
//
// Sizes accept pixels ("12", "12px"), percentages ("50%") and "auto".
// Colors accept hex notation, SVG color names and "transparent".
package markup

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3,4})\b`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\.\d+|\d+)(?:px|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}:;]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(markupLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
	)
)

// Document is the root of a parsed file.
type Document struct {
	Pos  lexer.Position `parser:""`
	Root *Node          `parser:"Newline* @@ Newline*"`
}

// Node is one element with its properties and children.
type Node struct {
	Pos   lexer.Position `parser:""`
	Kind  string         `parser:"@( 'div' | 'text' | 'image' )"`
	Arg   *StringLiteral `parser:"@String?"`
	Items []*Item        `parser:"( '{' ( Newline | ';' )* ( @@ ( Newline | ';' )* )* '}' )?"`
}

// Item is a child node or a property inside a node's block.
type Item struct {
	Node     *Node     `parser:"  @@"`
	Property *Property `parser:"| @@"`
}

// Property is a "key: value..." assignment.
type Property struct {
	Pos    lexer.Position `parser:""`
	Key    string         `parser:"@Ident ':'"`
	Values []*Value       `parser:"@@+"`
}

// Value is a single property value token.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the value as written, without quotes for strings.
func (v *Value) Text() string {
	switch {
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Children returns the child nodes in document order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, it := range n.Items {
		if it.Node != nil {
			out = append(out, it.Node)
		}
	}
	return out
}

// Properties returns the node's own properties in document order.
func (n *Node) Properties() []*Property {
	var out []*Property
	for _, it := range n.Items {
		if it.Property != nil {
			out = append(out, it.Property)
		}
	}
	return out
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a document from r. filename is only used in positions.
func Parse(filename string, r io.Reader) (*Document, error) {
	doc, err := documentParser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	return doc, nil
}

// ParseString parses a document held in a string.
func ParseString(input string) (*Document, error) {
	doc, err := documentParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	return doc, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

// String formats the node header, for diagnostics.
func (n *Node) String() string {
	var b strings.Builder
	b.WriteString(n.Kind)
	if n.Arg != nil {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(string(*n.Arg)))
	}
	return b.String()
}

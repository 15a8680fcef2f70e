package markup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/ui/element"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

var (
	// ErrUnknownProperty is returned for property names no element accepts.
	ErrUnknownProperty = errors.New("markup: unknown property")

	// ErrBadValue is returned when a property value does not parse.
	ErrBadValue = errors.New("markup: bad property value")

	// ErrBadNode is returned for nodes missing an argument, carrying an
	// argument they do not take, or nesting children they cannot hold.
	ErrBadNode = errors.New("markup: malformed node")
)

// props collects a node's style and the element-specific settings.
type props struct {
	style      element.Style
	displaySet bool
	opacity    float32
}

type setter func(p *props, vals []*Value) error

var setters = map[string]setter{
	"position": func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		switch s {
		case "relative", "static":
			p.style.Position = layout.Relative
		case "absolute":
			p.style.Position = layout.Absolute
		case "fixed":
			p.style.Position = layout.Fixed
		default:
			return fmt.Errorf("%w: position %q", ErrBadValue, s)
		}
		return nil
	},
	"display": func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		switch s {
		case "block":
			p.style.Display = layout.Block
		case "inline", "inline-block":
			p.style.Display = layout.Inline
		default:
			return fmt.Errorf("%w: display %q", ErrBadValue, s)
		}
		p.displaySet = true
		return nil
	},

	"width":     sizeSetter(func(s *element.Style) *layout.Size { return &s.Width }),
	"height":    sizeSetter(func(s *element.Style) *layout.Size { return &s.Height }),
	"max-width": sizeSetter(func(s *element.Style) *layout.Size { return &s.MaxWidth }),
	"top":       sizeSetter(func(s *element.Style) *layout.Size { return &s.Top }),
	"right":     sizeSetter(func(s *element.Style) *layout.Size { return &s.Right }),
	"bottom":    sizeSetter(func(s *element.Style) *layout.Size { return &s.Bottom }),
	"left":      sizeSetter(func(s *element.Style) *layout.Size { return &s.Left }),

	"margin":  edgesSetter(func(s *element.Style) *layout.Edges { return &s.Margin }),
	"padding": edgesSetter(func(s *element.Style) *layout.Edges { return &s.Padding }),

	"background":   colorSetter(func(s *element.Style) *fragment.Color { return &s.Background }),
	"border-color": colorSetter(func(s *element.Style) *fragment.Color { return &s.BorderColor }),
	"color":        colorSetter(func(s *element.Style) *fragment.Color { return &s.Color }),

	"border-width":  numberSetter(func(s *element.Style) *float32 { return &s.BorderWidth }),
	"corner-radius": numberSetter(func(s *element.Style) *float32 { return &s.CornerRadius }),
	"border-radius": numberSetter(func(s *element.Style) *float32 { return &s.CornerRadius }),
	"font-size":     numberSetter(func(s *element.Style) *float32 { return &s.FontSize }),
	"line-height":   numberSetter(func(s *element.Style) *float32 { return &s.LineHeight }),

	"border": func(p *props, vals []*Value) error {
		// border: <width> [color]
		if len(vals) == 0 || len(vals) > 2 {
			return fmt.Errorf("%w: border takes a width and an optional color", ErrBadValue)
		}
		w, err := number(vals[0].Text())
		if err != nil {
			return err
		}
		p.style.BorderWidth = w
		if len(vals) == 2 {
			c, err := fragment.ParseColor(vals[1].Text())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBadValue, err)
			}
			p.style.BorderColor = c
		} else if p.style.BorderColor == (fragment.Color{}) {
			p.style.BorderColor = fragment.Black
		}
		return nil
	},
	"font": func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		p.style.FontFamily = s
		return nil
	},
	"z-index": func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		if s == "auto" {
			p.style.ZIndex, p.style.HasZIndex = 0, false
			return nil
		}
		z, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: z-index %q", ErrBadValue, s)
		}
		p.style = p.style.WithZIndex(z)
		return nil
	},
	"opacity": func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil || v < 0 || v > 1 {
			return fmt.Errorf("%w: opacity %q", ErrBadValue, s)
		}
		p.opacity = float32(v)
		return nil
	},
}

func init() {
	setters["font-family"] = setters["font"]
}

func single(vals []*Value) (string, error) {
	if len(vals) != 1 {
		return "", fmt.Errorf("%w: want one value, got %d", ErrBadValue, len(vals))
	}
	return vals[0].Text(), nil
}

func number(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadValue, s)
	}
	return float32(v), nil
}

func sizeSetter(field func(*element.Style) *layout.Size) setter {
	return func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		v, err := layout.ParseSize(s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadValue, err)
		}
		*field(&p.style) = v
		return nil
	}
}

func numberSetter(field func(*element.Style) *float32) setter {
	return func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		v, err := number(s)
		if err != nil {
			return err
		}
		*field(&p.style) = v
		return nil
	}
}

func colorSetter(field func(*element.Style) *fragment.Color) setter {
	return func(p *props, vals []*Value) error {
		s, err := single(vals)
		if err != nil {
			return err
		}
		c, err := fragment.ParseColor(s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadValue, err)
		}
		*field(&p.style) = c
		return nil
	}
}

// edgesSetter follows the CSS shorthand: one value for all sides, two for
// vertical and horizontal, three for top, horizontal and bottom, four
// clockwise from the top.
func edgesSetter(field func(*element.Style) *layout.Edges) setter {
	return func(p *props, vals []*Value) error {
		if len(vals) == 0 || len(vals) > 4 {
			return fmt.Errorf("%w: want one to four values, got %d", ErrBadValue, len(vals))
		}
		n := make([]float32, len(vals))
		for i, v := range vals {
			f, err := number(v.Text())
			if err != nil {
				return err
			}
			n[i] = f
		}
		var e layout.Edges
		switch len(n) {
		case 1:
			e = layout.Edges{Top: n[0], Right: n[0], Bottom: n[0], Left: n[0]}
		case 2:
			e = layout.Edges{Top: n[0], Right: n[1], Bottom: n[0], Left: n[1]}
		case 3:
			e = layout.Edges{Top: n[0], Right: n[1], Bottom: n[2], Left: n[1]}
		case 4:
			e = layout.Edges{Top: n[0], Right: n[1], Bottom: n[2], Left: n[3]}
		}
		*field(&p.style) = e
		return nil
	}
}

// Style evaluates the node's properties.
func (n *Node) Style() (element.Style, error) {
	p, err := n.props()
	return p.style, err
}

func (n *Node) props() (props, error) {
	var p props
	for _, prop := range n.Properties() {
		set, ok := setters[prop.Key]
		if !ok {
			return p, fmt.Errorf("%s: %w %q", prop.Pos, ErrUnknownProperty, prop.Key)
		}
		if err := set(&p, prop.Values); err != nil {
			return p, fmt.Errorf("%s: %s: %w", prop.Pos, prop.Key, err)
		}
	}
	if n.Kind == "text" && !p.displaySet {
		p.style.Display = layout.Inline
	}
	return p, nil
}

// Element creates the element the node describes. Relative image paths
// resolve against dir.
func (n *Node) Element(dir string) (tree.Element, error) {
	p, err := n.props()
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case "div":
		if n.Arg != nil {
			return nil, fmt.Errorf("%s: %w: div takes no argument", n.Pos, ErrBadNode)
		}
		return element.NewDiv(p.style), nil
	case "text":
		if n.Arg == nil {
			return nil, fmt.Errorf("%s: %w: text needs its content", n.Pos, ErrBadNode)
		}
		if len(n.Children()) > 0 {
			return nil, fmt.Errorf("%s: %w: text cannot have children", n.Pos, ErrBadNode)
		}
		return element.NewText(string(*n.Arg), p.style), nil
	case "image":
		if n.Arg == nil || *n.Arg == "" {
			return nil, fmt.Errorf("%s: %w: image needs a path", n.Pos, ErrBadNode)
		}
		if len(n.Children()) > 0 {
			return nil, fmt.Errorf("%s: %w: image cannot have children", n.Pos, ErrBadNode)
		}
		path := string(*n.Arg)
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		im := element.NewImageFile(path, p.style)
		im.Opacity = p.opacity
		return im, nil
	default:
		return nil, fmt.Errorf("%s: %w: unknown element %q", n.Pos, ErrBadNode, n.Kind)
	}
}

// Build creates a tree rooted at the document's root node.
func (d *Document) Build(dir string, opts ...tree.Option) (*tree.Tree, error) {
	root, err := d.Root.Element(dir)
	if err != nil {
		return nil, err
	}
	t, err := tree.New(root, opts...)
	if err != nil {
		return nil, err
	}
	if err := AppendChildren(t, t.Root(), d.Root, dir); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// Append adds n and its subtree under parent and returns the id of n.
func Append(t *tree.Tree, parent fragment.NodeID, n *Node, dir string) (fragment.NodeID, error) {
	el, err := n.Element(dir)
	if err != nil {
		return 0, err
	}
	id, err := t.Append(parent, el)
	if err != nil {
		return 0, err
	}
	return id, AppendChildren(t, id, n, dir)
}

// AppendChildren adds the children of n, and their subtrees, under parent.
func AppendChildren(t *tree.Tree, parent fragment.NodeID, n *Node, dir string) error {
	for _, c := range n.Children() {
		if _, err := Append(t, parent, c, dir); err != nil {
			return err
		}
	}
	return nil
}

// Load parses the file at path and builds its tree. Image paths resolve
// against the file's directory.
func Load(path string, opts ...tree.Option) (*tree.Tree, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Build(filepath.Dir(path), opts...)
}

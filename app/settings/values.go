package settings

import (
	"gopkg.in/yaml.v3"
)

// FilterValue is either a single string or a list of strings
type FilterValue struct {
	Text   string
	List   []string
	IsList bool
}

// TextValue builds a single-string filter value
func TextValue(s string) FilterValue {
	return FilterValue{Text: s}
}

// ListValue builds a list filter value
func ListValue(items ...string) FilterValue {
	if items == nil {
		items = []string{}
	}
	return FilterValue{List: items, IsList: true}
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
// Non-scalar list items are ignored.
func (f *FilterValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		f.IsList = true
		f.List = make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				f.List = append(f.List, scalarText(item))
			}
		}
	case yaml.ScalarNode:
		f.Text = scalarText(node)
	}
	return nil
}

// MarshalYAML writes the list or the scalar form
func (f FilterValue) MarshalYAML() (any, error) {
	if f.IsList {
		return f.List, nil
	}
	return f.Text, nil
}

// GroupSortBy is either a predefined key order (list) or a named mode such as "countDesc"
type GroupSortBy struct {
	Mode  string
	Order []string
}

// IsSet reports whether anything was configured
func (g GroupSortBy) IsSet() bool {
	return g.Mode != "" || g.Order != nil
}

// UnmarshalYAML accepts a scalar mode or a list of keys
func (g *GroupSortBy) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		g.Order = make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				g.Order = append(g.Order, scalarText(item))
			}
		}
	case yaml.ScalarNode:
		g.Mode = scalarText(node)
	}
	return nil
}

// MarshalYAML writes the list or the mode
func (g GroupSortBy) MarshalYAML() (any, error) {
	if g.Order != nil {
		return g.Order, nil
	}
	return g.Mode, nil
}

func scalarText(n *yaml.Node) string {
	if n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

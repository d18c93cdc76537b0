package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/treelint/treelint/pkg/errors"
	"github.com/treelint/treelint/pkg/matcher"
	"github.com/treelint/treelint/pkg/types"
)

// MetaChildPrefix marks a child key as a meta rule applied to every
// otherwise-unmatched child instead of a literal name.
const MetaChildPrefix = "$"

// DecodeLayout turns a parsed layout document into a LayoutNode tree.
// The top level is the children mapping of an implicit root directory
// unless it carries an explicit kind.
func DecodeLayout(raw interface{}) (types.LayoutNode, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := asStringMap(raw)
	if !ok {
		return nil, errors.New(errors.ErrConfigValid, "layout must be a mapping")
	}
	if len(m) == 0 {
		return nil, nil
	}
	if _, hasKind := nodeKindOf(m); hasKind {
		return decodeNode(m, "layout")
	}

	root := &types.DirNode{}
	if v, ok := m[MetaChildPrefix+"strict"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.New(errors.ErrConfigValid, "layout: $strict must be a boolean")
		}
		root.Strict = b
		delete(m, MetaChildPrefix+"strict")
	}
	children, err := decodeChildren(m, "layout")
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

func decodeNode(raw interface{}, at string) (types.LayoutNode, error) {
	// A bare string is shorthand for a node of that kind
	if s, ok := raw.(string); ok {
		raw = map[string]interface{}{"kind": s}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	m, ok := asStringMap(raw)
	if !ok {
		return nil, errors.Newf(errors.ErrConfigValid, "%s: node must be a mapping or kind name", at)
	}

	kind, _ := nodeKindOf(m)
	if kind == "" {
		kind = "file"
	}

	base, err := decodeBase(m, at)
	if err != nil {
		return nil, err
	}

	var node types.LayoutNode
	switch kind {
	case "file":
		if err := rejectKeys(m, at, "children", "child", "strict", "variants", "min", "max", "max_depth", "maxDepth"); err != nil {
			return nil, err
		}
		node = &types.FileNode{NodeBase: base}

	case "dir":
		if err := rejectKeys(m, at, "child", "variants", "min", "max", "max_depth", "maxDepth"); err != nil {
			return nil, err
		}
		n := &types.DirNode{NodeBase: base}
		if v, ok := m["strict"]; ok {
			b, ok := v.(bool)
			if !ok {
				return nil, errors.Newf(errors.ErrConfigValid, "%s: strict must be a boolean", at)
			}
			n.Strict = b
		}
		if v, ok := m["children"]; ok && v != nil {
			cm, ok := asStringMap(v)
			if !ok {
				return nil, errors.Newf(errors.ErrConfigValid, "%s: children must be a mapping", at)
			}
			n.Children, err = decodeChildren(cm, at)
			if err != nil {
				return nil, err
			}
		}
		node = n

	case "param":
		if err := rejectKeys(m, at, "children", "strict", "variants", "min", "max", "max_depth", "maxDepth"); err != nil {
			return nil, err
		}
		n := &types.ParamNode{NodeBase: base}
		n.Child, err = decodeChildNode(m, at)
		if err != nil {
			return nil, err
		}
		node = n

	case "many":
		if err := rejectKeys(m, at, "children", "strict", "variants", "max_depth", "maxDepth"); err != nil {
			return nil, err
		}
		n := &types.ManyNode{NodeBase: base}
		n.Child, err = decodeChildNode(m, at)
		if err != nil {
			return nil, err
		}
		if n.Min, err = intAttr(m, "min", at); err != nil {
			return nil, err
		}
		if n.Max, err = intAttr(m, "max", at); err != nil {
			return nil, err
		}
		if n.Max > 0 && n.Min > n.Max {
			return nil, errors.Newf(errors.ErrConfigValid, "%s: min %d exceeds max %d", at, n.Min, n.Max)
		}
		node = n

	case "recursive":
		if err := rejectKeys(m, at, "children", "strict", "variants", "min", "max"); err != nil {
			return nil, err
		}
		n := &types.RecursiveNode{NodeBase: base}
		n.Child, err = decodeChildNode(m, at)
		if err != nil {
			return nil, err
		}
		if n.MaxDepth, err = intAttr(m, "max_depth", at); err != nil {
			return nil, err
		}
		if n.MaxDepth == 0 {
			if n.MaxDepth, err = intAttr(m, "maxDepth", at); err != nil {
				return nil, err
			}
		}
		node = n

	case "either":
		if err := rejectKeys(m, at, "children", "child", "strict", "min", "max", "max_depth", "maxDepth"); err != nil {
			return nil, err
		}
		n := &types.EitherNode{NodeBase: base}
		vs, ok := m["variants"].([]interface{})
		if !ok || len(vs) == 0 {
			return nil, errors.Newf(errors.ErrConfigValid, "%s: either requires a non-empty variants list", at)
		}
		for i, v := range vs {
			variant, err := decodeNode(v, joinAt(at, "variants", i))
			if err != nil {
				return nil, err
			}
			n.Variants = append(n.Variants, variant)
		}
		node = n

	default:
		return nil, errors.Newf(errors.ErrConfigValid, "%s: unknown node kind %q", at, kind)
	}

	return node, nil
}

func decodeBase(m map[string]interface{}, at string) (types.NodeBase, error) {
	var base types.NodeBase

	if v, ok := m["pattern"]; ok {
		s, ok := v.(string)
		if !ok {
			return base, errors.Newf(errors.ErrConfigValid, "%s: pattern must be a string", at)
		}
		if _, err := matcher.Compile(s); err != nil {
			return base, errors.Wrapf(err, errors.ErrConfigValid, "%s: invalid pattern", at)
		}
		base.Pattern = s
	}

	if v, ok := m["case"]; ok {
		s, ok := v.(string)
		if !ok {
			return base, errors.Newf(errors.ErrConfigValid, "%s: case must be a string", at)
		}
		cs, err := ParseCaseStyle(s)
		if err != nil {
			return base, errors.Wrapf(err, errors.ErrConfigValid, "%s", at)
		}
		base.Case = cs
	}

	if v, ok := m["optional"]; ok {
		b, ok := v.(bool)
		if !ok {
			return base, errors.Newf(errors.ErrConfigValid, "%s: optional must be a boolean", at)
		}
		base.Optional = b
	}
	if v, ok := m["required"]; ok {
		b, ok := v.(bool)
		if !ok {
			return base, errors.Newf(errors.ErrConfigValid, "%s: required must be a boolean", at)
		}
		base.Optional = !b
	}

	return base, nil
}

func decodeChildren(m map[string]interface{}, at string) ([]types.DirChild, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	// Literal names first so meta rules only see what literals left
	// unmatched, then lexical within each group for determinism.
	sort.Slice(names, func(i, j int) bool {
		mi := strings.HasPrefix(names[i], MetaChildPrefix)
		mj := strings.HasPrefix(names[j], MetaChildPrefix)
		if mi != mj {
			return mj
		}
		return names[i] < names[j]
	})

	children := make([]types.DirChild, 0, len(names))
	for _, name := range names {
		node, err := decodeNode(m[name], joinAt(at, name, -1))
		if err != nil {
			return nil, err
		}
		child := types.DirChild{Name: name, Node: node}
		if strings.HasPrefix(name, MetaChildPrefix) {
			child.Name = strings.TrimPrefix(name, MetaChildPrefix)
			child.Meta = true
		}
		children = append(children, child)
	}
	return children, nil
}

func decodeChildNode(m map[string]interface{}, at string) (types.LayoutNode, error) {
	v, ok := m["child"]
	if !ok {
		return nil, nil
	}
	return decodeNode(v, joinAt(at, "child", -1))
}

// ParseCaseStyle resolves a case style from either its canonical form
// or its bare name.
func ParseCaseStyle(s string) (types.CaseStyle, error) {
	switch s {
	case "":
		return types.CaseAny, nil
	case "kebab", string(types.CaseKebab):
		return types.CaseKebab, nil
	case "snake", string(types.CaseSnake):
		return types.CaseSnake, nil
	case "camel", string(types.CaseCamel):
		return types.CaseCamel, nil
	case "pascal", string(types.CasePascal):
		return types.CasePascal, nil
	default:
		return types.CaseAny, errors.Newf(errors.ErrConfigValid, "unknown case style %q", s)
	}
}

func nodeKindOf(m map[string]interface{}) (string, bool) {
	for _, key := range []string{"kind", "type"} {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func rejectKeys(m map[string]interface{}, at string, keys ...string) error {
	for _, key := range keys {
		if _, ok := m[key]; ok {
			return errors.Newf(errors.ErrConfigValid, "%s: attribute %q is not valid here", at, key)
		}
	}
	return nil
}

func intAttr(m map[string]interface{}, key, at string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, errors.Newf(errors.ErrConfigValid, "%s: %s must be an integer", at, key)
	}
}

func joinAt(at, key string, index int) string {
	if index >= 0 {
		return at + "." + key + "[" + strconv.Itoa(index) + "]"
	}
	return at + "." + key
}

func asStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}

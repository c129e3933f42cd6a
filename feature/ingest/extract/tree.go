package extract

import (
	"strings"
	"time"

	"results-ingest/core/utils"
)

// Keys under which producers put element attributes and element text.
var (
	attributeKeys = []string{"$", "@", "_attributes", "attributes"}
	textKeys      = []string{"_", "#text", "value", "$t", "text"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// lookup finds key in a map ignoring case.
func lookup(node any, key string) (any, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// list wraps a single element into a slice.
func list(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	default:
		return []any{v}
	}
}

func first(v any) any {
	items := list(v)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

// child returns the first element named key.
func child(node any, key string) any {
	v, _ := lookup(node, key)
	return first(v)
}

// children returns every element named key.
func children(node any, key string) []any {
	v, _ := lookup(node, key)
	return list(v)
}

// text returns the text content of an element.
func text(node any) string {
	switch t := node.(type) {
	case nil:
		return ""
	case map[string]any:
		for _, k := range textKeys {
			if v, ok := lookup(t, k); ok {
				return text(v)
			}
		}
		return ""
	case []any:
		if len(t) == 0 {
			return ""
		}
		return text(t[0])
	default:
		return utils.ToString(t)
	}
}

// textOf returns the text of the first child named key.
func textOf(node any, key string) string {
	return text(child(node, key))
}

// attr returns an attribute of an element. Attributes may be nested under an
// attribute map or flattened into the element with an @ or - prefix.
func attr(node any, name string) string {
	for _, k := range attributeKeys {
		if attrs, ok := lookup(node, k); ok {
			if v, ok := lookup(attrs, name); ok {
				return text(v)
			}
		}
	}
	for _, prefix := range []string{"@", "-", "@_"} {
		if v, ok := lookup(node, prefix+name); ok {
			return text(v)
		}
	}
	return ""
}

func floatOf(node any, key string) *float64 {
	s := textOf(node, key)
	if s == "" {
		return nil
	}
	f, ok := utils.ToFloat(s)
	if !ok {
		return nil
	}
	return &f
}

func intOf(node any, key string) *int {
	s := textOf(node, key)
	if s == "" {
		return nil
	}
	i, ok := utils.ToInt(s)
	if !ok {
		return nil
	}
	return &i
}

// timeOf parses a timestamp. Values without a zone are taken as UTC.
func timeOf(node any, key string) *time.Time {
	s := textOf(node, key)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

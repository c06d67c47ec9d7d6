package envelope

import (
	"encoding/json"
	"sort"
	"strings"
)

// ExtractText harvests plain text from an arbitrarily shaped JSON value.
// It is used against the document-extraction capability, whose responses
// do not reliably follow the artifact envelope. Strings that decode as
// JSON are descended into; objects prefer a "text" key (returned as-is,
// no further recursion), then "content" (recursed), then the first
// non-empty extraction over their keys in sorted order so traversal is
// deterministic; arrays join the non-empty extractions of their elements
// with newlines. A "text" key holding a non-string value is treated as
// opaque and yields no text, it is never stringified.
func ExtractText(node any) string {
	return textOf(extract(node))
}

func extract(node any) any {
	switch v := node.(type) {
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return v
		}
		return extract(decoded)
	case map[string]any:
		if text, found := v["text"]; found {
			return text
		}
		if content, found := v["content"]; found {
			return extract(content)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := textOf(extract(v[k])); s != "" {
				return s
			}
		}
		return ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := textOf(extract(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func textOf(v any) string {
	s, _ := v.(string)
	return s
}

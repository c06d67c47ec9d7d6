// Package envelope decodes the artifact/part/text wrapper that every
// remote capability returns, and harvests text out of less uniform
// extraction payloads.
package envelope

import "encoding/json"

// Normalize unwraps a capability response envelope into its canonical
// payload. Envelopes are either {"error": ...} or
// {"artifacts": [{"parts": [{"text": ...}]}]}, where the text is often a
// JSON document and sometimes a whole envelope again (double wrapping).
// At most two levels are unwrapped; an undecodable inner string is
// returned as {"content": text}. The second return is false when the
// envelope carries an error or does not follow the artifact format.
func Normalize(raw map[string]any) (any, bool) {
	if _, found := raw["error"]; found {
		return nil, false
	}
	text, ok := firstPartText(raw)
	if !ok {
		return nil, false
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return map[string]any{"content": text}, true
	}
	outer, isObject := decoded.(map[string]any)
	if !isObject {
		return decoded, true
	}
	if _, nested := outer["artifacts"]; !nested {
		return decoded, true
	}

	inner, ok := firstPartText(outer)
	if !ok {
		return nil, false
	}
	var innerDecoded any
	if err := json.Unmarshal([]byte(inner), &innerDecoded); err != nil {
		return map[string]any{"content": inner}, true
	}
	return innerDecoded, true
}

// firstPartText pulls the first artifact's first part's text field.
func firstPartText(m map[string]any) (string, bool) {
	artifacts, ok := m["artifacts"].([]any)
	if !ok || len(artifacts) == 0 {
		return "", false
	}
	first, ok := artifacts[0].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := first["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", false
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := part["text"].(string)
	if !ok {
		return "", false
	}
	return text, true
}

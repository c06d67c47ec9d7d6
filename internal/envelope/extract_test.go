package envelope

import "testing"

func TestExtractTextPlainStringIsIdempotent(t *testing.T) {
	got := ExtractText("some contract text")
	if got != "some contract text" {
		t.Fatalf("got %q", got)
	}
	if again := ExtractText(got); again != got {
		t.Fatalf("not idempotent: %q", again)
	}
}

func TestExtractTextJSONEncodedString(t *testing.T) {
	if got := ExtractText(`{"content": "inner text"}`); got != "inner text" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextSequenceJoinsWithNewline(t *testing.T) {
	node := []any{
		map[string]any{"text": "a"},
		map[string]any{"text": "b"},
	}
	if got := ExtractText(node); got != "a\nb" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextPrefersTextOverContent(t *testing.T) {
	node := map[string]any{"content": "secondary", "text": "primary"}
	if got := ExtractText(node); got != "primary" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextNonStringTextIsOpaque(t *testing.T) {
	node := map[string]any{"text": float64(42)}
	if got := ExtractText(node); got != "" {
		t.Fatalf("non-string text must yield no text, got %q", got)
	}
}

func TestExtractTextFirstNonEmptyValueSortedKeys(t *testing.T) {
	node := map[string]any{
		"zz": map[string]any{"text": "from zz"},
		"aa": float64(1),
		"mm": map[string]any{"text": "from mm"},
	}
	// aa is empty (scalar); mm wins over zz by key order.
	if got := ExtractText(node); got != "from mm" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextScalarsAreEmpty(t *testing.T) {
	for _, node := range []any{float64(3), true, nil} {
		if got := ExtractText(node); got != "" {
			t.Fatalf("scalar %#v extracted %q", node, got)
		}
	}
}

func TestExtractTextSequenceSkipsEmptyElements(t *testing.T) {
	node := []any{float64(1), map[string]any{"text": "kept"}, nil}
	if got := ExtractText(node); got != "kept" {
		t.Fatalf("got %q", got)
	}
}

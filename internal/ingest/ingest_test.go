package ingest

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"contractlens/internal/capability"
	"contractlens/internal/risk"
)

type fakeCaller struct {
	outcome capability.Outcome
	err     error
	called  bool
}

func (f *fakeCaller) Call(ctx context.Context, endpoint string, payload map[string]any, timeout time.Duration) (capability.Outcome, error) {
	f.called = true
	return f.outcome, f.err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func extractionEnvelope(text string) map[string]any {
	return map[string]any{
		"artifacts": []any{
			map[string]any{"parts": []any{map[string]any{"text": text}}},
		},
	}
}

func TestIngestPrefersRemoteExtraction(t *testing.T) {
	caller := &fakeCaller{outcome: capability.Outcome{Value: extractionEnvelope("remote contract text")}}
	path := writeFile(t, "contract.txt", []byte("local text"))

	doc, err := NewIngestor(caller, "http://extractor", time.Second).Ingest(context.Background(), path, risk.PartyA)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Text != "remote contract text" {
		t.Fatalf("text = %q", doc.Text)
	}
	if doc.SourcePath != path || doc.PartyPerspective != risk.PartyA {
		t.Fatalf("document metadata = %+v", doc)
	}
}

func TestIngestFallsBackWhenRemoteFails(t *testing.T) {
	cases := []struct {
		name   string
		caller *fakeCaller
	}{
		{"fatal call error", &fakeCaller{err: errors.New("deadline exceeded")}},
		{"degraded outcome", &fakeCaller{outcome: capability.Outcome{Err: "capability offline"}}},
		{"error envelope", &fakeCaller{outcome: capability.Outcome{Value: map[string]any{"error": "boom"}}}},
		{"empty extraction", &fakeCaller{outcome: capability.Outcome{Value: extractionEnvelope("   ")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "contract.txt", []byte("甲方应在合同签订后付款。"))
			doc, err := NewIngestor(tc.caller, "http://extractor", time.Second).Ingest(context.Background(), path, risk.PartyB)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if !tc.caller.called {
				t.Fatal("remote extraction never attempted")
			}
			if doc.Text != "甲方应在合同签订后付款。" {
				t.Fatalf("text = %q", doc.Text)
			}
		})
	}
}

func TestIngestEmptyDocumentIsFatal(t *testing.T) {
	caller := &fakeCaller{outcome: capability.Outcome{Err: "offline"}}
	path := writeFile(t, "contract.txt", []byte("  \n\n  "))

	_, err := NewIngestor(caller, "http://extractor", time.Second).Ingest(context.Background(), path, risk.PartyA)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestReadLocalRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "contract.pdf", []byte("%PDF-1.4"))
	_, err := ReadLocal(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeBytes(t *testing.T) {
	t.Run("utf8 with BOM", func(t *testing.T) {
		text, enc, err := decodeBytes(append([]byte{0xEF, 0xBB, 0xBF}, []byte("合同正文")...))
		if err != nil {
			t.Fatal(err)
		}
		if text != "合同正文" || enc != "utf-8" {
			t.Fatalf("got %q via %s", text, enc)
		}
	})

	t.Run("gbk bytes", func(t *testing.T) {
		// "合同" in GBK.
		text, enc, err := decodeBytes([]byte{0xBA, 0xCF, 0xCD, 0xAC})
		if err != nil {
			t.Fatal(err)
		}
		if text != "合同" {
			t.Fatalf("text = %q", text)
		}
		if enc != "gb18030" {
			t.Fatalf("encoding = %s", enc)
		}
	})

	t.Run("windows-1252 bytes", func(t *testing.T) {
		// "café" in Latin-1; the trailing 0xE9 is a truncated lead byte
		// for every multi-byte candidate.
		text, enc, err := decodeBytes([]byte{'c', 'a', 'f', 0xE9})
		if err != nil {
			t.Fatal(err)
		}
		if text != "café" || enc != "windows-1252" {
			t.Fatalf("got %q via %s", text, enc)
		}
	})

	t.Run("undecodable bytes fail", func(t *testing.T) {
		_, _, err := decodeBytes([]byte{0x81})
		if !errors.Is(err, ErrDecodeFailed) {
			t.Fatalf("err = %v, want ErrDecodeFailed", err)
		}
	})
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"tabs and fullwidth spaces", "a\tb　c", "a b c"},
		{"space runs collapse", "a    b", "a b"},
		{"trailing spaces stripped", "a   \nb", "a\nb"},
		{"blank runs collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"control chars dropped", "a\x00\x08b", "ab"},
		{"surrounding trim", "  \n text \n ", "text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeText(tc.in); got != tc.want {
				t.Fatalf("NormalizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestReadDocx(t *testing.T) {
	const documentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>第一条</w:t></w:r><w:r><w:tab/><w:t>定义</w:t></w:r></w:p>
    <w:p><w:r><w:t>第二条</w:t><w:br/><w:t>续行</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "contract.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	entry, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := entry.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	text, err := readDocx(path)
	if err != nil {
		t.Fatalf("readDocx: %v", err)
	}
	want := "第一条\t定义\n第二条\n续行"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}

	t.Run("not a zip", func(t *testing.T) {
		bad := writeFile(t, "broken.docx", []byte("plain bytes"))
		if _, err := readDocx(bad); !errors.Is(err, ErrDecodeFailed) {
			t.Fatalf("err = %v, want ErrDecodeFailed", err)
		}
	})
}

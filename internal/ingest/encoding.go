package ingest

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// legacyEncodings is the fallback order after UTF-8: regional multi-byte
// encodings first, then a single-byte encoding that accepts almost any
// byte stream. x/text decoders substitute U+FFFD instead of failing, so
// a decode is treated as failed when the output carries a replacement
// rune the input did not literally contain.
var legacyEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
	{"big5", traditionalchinese.Big5},
	{"windows-1252", charmap.Windows1252},
}

// readTextFile decodes raw file bytes with the first encoding that
// accepts them and reports which one won. All encodings rejecting the
// bytes is ErrDecodeFailed, never silently garbled text.
func readTextFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return decodeBytes(data)
}

func decodeBytes(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), "utf-8", nil
	}
	for _, candidate := range legacyEncodings {
		decoded, err := candidate.enc.NewDecoder().Bytes(data)
		if err != nil || !cleanDecode(data, decoded) {
			continue
		}
		return string(decoded), candidate.name, nil
	}
	return "", "", fmt.Errorf("%w: no supported encoding accepts the input", ErrDecodeFailed)
}

func cleanDecode(src, decoded []byte) bool {
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		// The input may legitimately contain U+FFFD already.
		if !bytes.Contains(src, []byte(string(utf8.RuneError))) {
			return false
		}
	}
	// Windows-1252 maps its undefined positions to C1 controls instead
	// of rejecting them, so C1 output means the bytes were never text in
	// that encoding.
	for _, r := range string(decoded) {
		if r >= 0x80 && r <= 0x9F {
			return false
		}
	}
	return true
}

// Package ingest obtains contract text: remote extraction through the
// document-processing capability first, a local multi-encoding file read
// as the fallback.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"contractlens/internal/capability"
	"contractlens/internal/envelope"
	"contractlens/internal/risk"
)

var (
	// ErrUnsupportedFormat marks a file extension the local reader does
	// not recognize.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrDecodeFailed marks a file no supported encoding could decode.
	ErrDecodeFailed = errors.New("file decode failed")
	// ErrEmptyDocument marks a readable file that produced no text.
	ErrEmptyDocument = errors.New("document produced no text")
)

// Caller is the slice of the capability client the ingestor needs.
type Caller interface {
	Call(ctx context.Context, endpoint string, payload map[string]any, timeout time.Duration) (capability.Outcome, error)
}

type Ingestor struct {
	caller   Caller
	endpoint string
	timeout  time.Duration
}

func NewIngestor(caller Caller, endpoint string, timeout time.Duration) *Ingestor {
	return &Ingestor{caller: caller, endpoint: endpoint, timeout: timeout}
}

// Ingest produces the immutable ContractDocument for a run. Remote
// extraction failures of any class fall through to the local read; only
// a local read that also fails is fatal.
func (i *Ingestor) Ingest(ctx context.Context, path string, party risk.PartyPerspective) (risk.ContractDocument, error) {
	text := i.remoteText(ctx, path)
	if text == "" {
		local, err := ReadLocal(path)
		if err != nil {
			return risk.ContractDocument{}, fmt.Errorf("ingest %s: %w", path, err)
		}
		text = local
	}
	text = NormalizeText(text)
	if text == "" {
		return risk.ContractDocument{}, fmt.Errorf("ingest %s: %w", path, ErrEmptyDocument)
	}
	return risk.ContractDocument{SourcePath: path, PartyPerspective: party, Text: text}, nil
}

func (i *Ingestor) remoteText(ctx context.Context, path string) string {
	outcome, err := i.caller.Call(ctx, i.endpoint, map[string]any{"file_path": path}, i.timeout)
	if err != nil {
		log.Printf("remote extraction unavailable path=%s err=%v", path, err)
		return ""
	}
	if outcome.Failed() {
		log.Printf("remote extraction failed path=%s err=%s", path, outcome.Err)
		return ""
	}
	payload, ok := envelope.Normalize(outcome.Value)
	if !ok {
		log.Printf("remote extraction returned invalid envelope path=%s", path)
		return ""
	}
	return strings.TrimSpace(envelope.ExtractText(payload))
}

// ReadLocal decodes a file on disk without the remote capability. Plain
// text goes through the encoding cascade; docx through the paragraph
// reader. A decode failure is distinct from a file that decodes to
// nothing.
func ReadLocal(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", "":
		text, _, err := readTextFile(path)
		return text, err
	case ".docx":
		return readDocx(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

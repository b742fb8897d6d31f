package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// TextExtractor turns an uploaded resume file into plain text. Binary-format
// extraction (PDF parsing, OCR) is an external capability behind this
// interface; the engine only ever sees text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// PlainTextExtractor handles resumes that are already text (txt, md). It is
// the default extractor; deployments with PDF support plug in their own.
type PlainTextExtractor struct{}

// Extract returns the file content as a string, rejecting binary payloads.
func (PlainTextExtractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", filename)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %s is not plain text; PDF extraction requires an external extractor", filename)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("file %s contains no text", filename)
	}
	return text, nil
}

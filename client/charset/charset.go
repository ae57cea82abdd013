// Package charset converts response bodies from their declared character
// set to UTF-8.
//
// Labels are resolved through the WHATWG encoding registry used by browsers
// (see [golang.org/x/net/html/charset]), so common aliases such as "gbk",
// "latin1" or "windows-1252" are understood. Bodies that already declare
// UTF-8, or declare nothing, are returned unchanged.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saintfish/chardet"
	htmlcharset "golang.org/x/net/html/charset"
)

// UTF8 is the canonical label every body is normalized to.
const UTF8 = "utf-8"

// ErrUnknownCharset is returned when a declared label has no known encoding.
var ErrUnknownCharset = errors.New("unknown charset")

// FromContentType extracts the charset label of a Content-Type value:
// the text after "charset=", up to the next ";", without surrounding
// spaces or quotes. It returns "" when no charset is declared.
func FromContentType(contentType string) string {
	idx := indexFold(contentType, charsetKey)
	if idx < 0 {
		return ""
	}

	label := contentType[idx+len(charsetKey):]
	if end := strings.IndexByte(label, ';'); end >= 0 {
		label = label[:end]
	}

	return strings.Trim(strings.TrimSpace(label), `"'`)
}

const charsetKey = "charset="

// indexFold is a case-insensitive strings.Index. It compares windows of
// the original string, so the returned offset is always valid for s even
// when s holds invalid UTF-8.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// IsUTF8 reports whether label names the canonical encoding.
// An empty label counts as UTF-8.
func IsUTF8(label string) bool {
	return label == "" || strings.EqualFold(label, UTF8) || strings.EqualFold(label, "utf8")
}

// Normalize returns body as UTF-8 text, decoding it from label.
//
// Invalid byte sequences are replaced with U+FFFD rather than reported.
// When label is unknown, the raw body is returned together with an error
// wrapping ErrUnknownCharset.
func Normalize(body []byte, label string) (string, error) {
	if IsUTF8(label) {
		return string(body), nil
	}

	enc, name := htmlcharset.Lookup(label)
	if enc == nil {
		return string(body), fmt.Errorf("%w: %q", ErrUnknownCharset, label)
	}
	if name == UTF8 {
		return string(body), nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), fmt.Errorf("decoding %s: %w", name, err)
	}

	return string(decoded), nil
}

// Detect guesses the charset of body. It returns "" when no confident
// guess can be made.
func Detect(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil {
		return ""
	}

	// chardet reports "GB-18030" where the registry only knows "gb18030".
	return strings.ReplaceAll(strings.ToLower(result.Charset), "gb-18030", "gb18030")
}

// Package encoding provides text and blob decoding helpers for scene
// containers: BOM-aware UTF-8 decoding of the structured-data chunk and
// base64 data URIs for inline buffers.
package encoding

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Data URI errors.
var (
	ErrNotDataURI      = errors.New("not a data URI")
	ErrUnsupportedURI  = errors.New("data URI is not base64 encoded")
	ErrInvalidUTF8Text = errors.New("text is not valid UTF-8")
)

// DecodeText converts a JSON payload to UTF-8 bytes. A leading byte order
// mark is removed; UTF-16 input announced by a BOM is transcoded. Input
// without a UTF-16 BOM must already be valid UTF-8.
func DecodeText(data []byte) ([]byte, error) {
	if !hasUTF16BOM(data) {
		data = TrimNullBytes(data)
		if !utf8.Valid(data) {
			return nil, ErrInvalidUTF8Text
		}
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

// IsDataURI reports whether uri carries its payload inline.
func IsDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// DecodeDataURI decodes a base64 data URI such as
// "data:application/octet-stream;base64,AAAA". Missing padding is accepted.
func DecodeDataURI(uri string) ([]byte, error) {
	if !IsDataURI(uri) {
		return nil, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, ErrUnsupportedURI
	}
	payload = strings.TrimRight(payload, "=")
	return base64.RawStdEncoding.DecodeString(payload)
}

// EncodeDataURI builds a base64 data URI for raw buffer bytes.
func EncodeDataURI(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

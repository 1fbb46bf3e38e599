// Package encoding provides text helpers for scene files and the packed
// name tables of compiled models.
package encoding

import (
	"bytes"
	"path"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NameAt returns the null-terminated string starting at adr in a packed
// name table. Out-of-range addresses yield "".
func NameAt(table []byte, adr int) string {
	if adr < 0 || adr >= len(table) {
		return ""
	}
	data := table[adr:]
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return string(data)
}

// AppendName appends name plus a null terminator to table and returns the
// grown table and the address of the name.
func AppendName(table []byte, name string) ([]byte, int) {
	adr := len(table)
	table = append(table, name...)
	return append(table, 0), adr
}

// DecodeText converts text file contents to UTF-8. A UTF-8 or UTF-16 byte
// order mark selects the source encoding and is stripped; data without a
// BOM is taken as UTF-8 unchanged.
func DecodeText(data []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// NormalizePath turns a manifest or include path into a clean, slash
// separated absolute path rooted at root.
func NormalizePath(root, p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = path.Join(root, p)
	}
	return path.Clean(p)
}

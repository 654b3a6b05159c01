package bundle

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decode interprets raw file bytes as UTF-8, falling back to ISO-8859-1
// when the bytes are not valid UTF-8. The fallback maps every byte to a
// rune, so decoding itself never fails; the returned flag records that
// the fallback was used.
func decode(raw []byte) (string, bool) {
	if utf8.Valid(raw) {
		return string(raw), false
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// ISO-8859-1 decodes any byte sequence; this path is unreachable
		// but the raw bytes are still better than dropping the file
		return string(raw), true
	}
	return string(decoded), true
}

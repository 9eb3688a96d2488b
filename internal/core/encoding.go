package core

// encoding.go detects the text encoding of a CSV file and decodes it to UTF-8.
//
// Detection order:
//   - UTF-8 BOM            -> "utf-8-sig"
//   - UTF-16 LE/BE BOM     -> "utf-16"
//   - valid UTF-8          -> "utf-8"
//   - anything else        -> "windows-1252"
//
// Windows-1252 maps every byte, so decoding never fails once detection has run.

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported on Dataset.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-sig"
	EncodingUTF16       = "utf-16"
	EncodingWindows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding inspects data and returns the encoding name and decoder to use.
func DetectEncoding(data []byte) (string, encoding.Encoding) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM, unicode.UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case utf8.Valid(data):
		return EncodingUTF8, unicode.UTF8
	default:
		return EncodingWindows1252, charmap.Windows1252
	}
}

// DecodeText converts data to UTF-8, stripping any byte order mark.
func DecodeText(data []byte) (string, string, error) {
	name, enc := DetectEncoding(data)
	if name == EncodingUTF8 {
		return name, string(data), nil
	}

	decoder := unicode.BOMOverride(enc.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return name, "", err
	}
	return name, string(out), nil
}

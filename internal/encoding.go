// Package internal provides character encoding detection and conversion for
// raw documents handed to the convenience parser.
package internal

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const charsetSampleSize = 1024

var (
	charsetPattern    = regexp.MustCompile(`(?i)<meta\s+[^>]*http-equiv=["']?content-type["']?[^>]*content=["']?[^;]*;\s*charset=([^"'\s>]+)`)
	charsetPatternAlt = regexp.MustCompile(`(?i)<meta\s+charset=["']?([^"'\s>]+)`)
)

// DetectCharset looks at the BOM, then at a declared meta charset, then at
// UTF-8 validity. Undeclared non-UTF-8 input is taken as windows-1252.
func DetectCharset(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8"
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return "utf-16le"
	}

	valid := utf8.Valid(data)
	sample := data
	if len(sample) > charsetSampleSize {
		sample = sample[:charsetSampleSize]
	}
	declared := ""
	if m := charsetPattern.FindSubmatch(sample); len(m) > 1 {
		declared = normalizeCharset(string(m[1]))
	} else if m := charsetPatternAlt.FindSubmatch(sample); len(m) > 1 {
		declared = normalizeCharset(string(m[1]))
	}

	// Valid UTF-8 with real multi-byte sequences wins over a wrong declaration.
	if valid && (declared == "" || declared == "utf-8" || hasUTF8Sequences(data)) {
		return "utf-8"
	}
	if declared != "" {
		return declared
	}
	return "windows-1252"
}

func hasUTF8Sequences(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return true
		}
	}
	return false
}

// ToUTF8 converts data from charset to UTF-8. Unknown charsets pass through.
func ToUTF8(data []byte, charset string) ([]byte, error) {
	charset = normalizeCharset(charset)
	if charset == "utf-8" {
		return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
	}
	enc := getEncoding(charset)
	if enc == nil {
		return data, nil
	}
	return io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
}

// DetectAndConvertToUTF8 detects the charset of data and converts it to UTF-8.
func DetectAndConvertToUTF8(data []byte) ([]byte, string, error) {
	charset := DetectCharset(data)
	converted, err := ToUTF8(data, charset)
	return converted, charset, err
}

func normalizeCharset(charset string) string {
	charset = strings.ToLower(strings.TrimSpace(charset))
	switch charset {
	case "utf8", "utf-8", "utf_8":
		return "utf-8"
	case "1252", "cp1252", "windows1252", "windows-1252":
		return "windows-1252"
	case "1251", "cp1251", "windows1251", "windows-1251":
		return "windows-1251"
	case "1250", "cp1250", "windows1250", "windows-1250":
		return "windows-1250"
	case "latin1", "latin-1", "iso8859-1", "iso88591", "iso_8859-1", "iso-8859-1":
		return "iso-8859-1"
	case "iso885915", "iso_8859-15", "iso-8859-15":
		return "iso-8859-15"
	case "utf16", "utf-16", "utf-16le", "utf16le":
		return "utf-16le"
	case "utf16be", "utf-16be":
		return "utf-16be"
	case "shift_jis", "shift-jis", "shiftjis", "sjis", "x-sjis":
		return "shift_jis"
	case "euc-jp", "euc_jp", "eucjp":
		return "euc-jp"
	case "euc-kr", "euc_kr", "euckr":
		return "euc-kr"
	case "gb2312", "gbk":
		return "gbk"
	case "big5", "big-5", "big5-hkscs":
		return "big5"
	}
	return charset
}

func getEncoding(charset string) encoding.Encoding {
	switch charset {
	case "windows-1252":
		return charmap.Windows1252
	case "windows-1251":
		return charmap.Windows1251
	case "windows-1250":
		return charmap.Windows1250
	case "iso-8859-1":
		return charmap.ISO8859_1
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "shift_jis":
		return japanese.ShiftJIS
	case "euc-jp":
		return japanese.EUCJP
	case "euc-kr":
		return korean.EUCKR
	case "gbk":
		return simplifiedchinese.GBK
	case "big5":
		return traditionalchinese.Big5
	default:
		return nil
	}
}

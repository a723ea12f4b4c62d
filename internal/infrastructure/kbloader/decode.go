package kbloader

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
)

type candidateEncoding struct {
	name string
	enc  encoding.Encoding
}

// Tried in order. Single-byte legacy code pages accept almost any input, so
// they come after the Korean code page.
var fallbackEncodings = []candidateEncoding{
	{name: "cp949", enc: korean.EUCKR},
	{name: "latin1", enc: charmap.ISO8859_1},
	{name: "windows-1252", enc: charmap.Windows1252},
	{name: "mac_roman", enc: charmap.Macintosh},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw file bytes to UTF-8 and reports the encoding used.
func decodeText(raw []byte) (string, string, bool) {
	if utf8.Valid(raw) {
		if bytes.HasPrefix(raw, utf8BOM) {
			out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
			if err == nil {
				return string(out), "utf-8-sig", true
			}
		}
		return string(raw), "utf-8", true
	}

	for _, c := range fallbackEncodings {
		out, err := c.enc.NewDecoder().Bytes(raw)
		if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
			continue
		}
		return string(out), c.name, true
	}
	return "", "", false
}

package id3

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bogem/id3v2/v2"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// Decoder decodes raw frame bytes from one fixed charset. It never
// substitutes invalid input.
type Decoder struct {
	name string
	enc  encoding.Encoding
	utf8 bool

	// Transliterate reduces decoded text to ASCII.
	Transliterate bool
}

// NewDecoder returns a decoder for a WHATWG charset name or alias, such as
// "utf-8", "utf-16le", "windows-1251" or "gbk".
func NewDecoder(charset string) (*Decoder, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", charset, ErrUnknownCharset)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(charset)
	}
	return &Decoder{name: name, enc: enc, utf8: name == "utf-8"}, nil
}

// Charset returns the canonical name of the decoder's charset.
func (d *Decoder) Charset() string { return d.name }

// Decode converts raw to UTF-8 text.
func (d *Decoder) Decode(raw []byte) (string, error) {
	var s string
	if d.utf8 {
		if off := invalidUTF8(raw); off >= 0 {
			return "", &DecodeError{Charset: d.name, Offset: off}
		}
		s = string(raw)
	} else {
		out, err := d.enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", &DecodeError{Charset: d.name, Offset: -1}
		}
		if bytes.ContainsRune(out, utf8.RuneError) && !d.roundTrips(raw, out) {
			return "", &DecodeError{Charset: d.name, Offset: -1}
		}
		s = string(out)
	}
	if d.Transliterate {
		s = unidecode.Unidecode(s)
	}
	return s, nil
}

// roundTrips reports whether out encodes back to raw. Decoders put
// U+FFFD in place of invalid input, which never encodes back to the
// bytes it replaced, while a U+FFFD stored in raw does.
func (d *Decoder) roundTrips(raw, out []byte) bool {
	back, err := d.enc.NewEncoder().Bytes(out)
	return err == nil && bytes.Equal(back, raw)
}

func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// storedBytes recovers the bytes a text value had on disk. ISO-8859-1 is
// lossless both ways, so those values are re-encoded; everything else was
// already Unicode and is returned as UTF-8.
func storedBytes(value string, enc id3v2.Encoding) ([]byte, error) {
	if !enc.Equals(id3v2.EncodingISO) {
		return []byte(value), nil
	}
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(value))
	if err != nil {
		return nil, &DecodeError{Charset: "iso-8859-1", Offset: -1}
	}
	return raw, nil
}

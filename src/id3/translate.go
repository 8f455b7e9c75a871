package id3

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/bogem/id3v2/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type rename struct {
	from, to FrameID
	yearOnly bool
}

var (
	renamesTo23 = []rename{
		{from: "TDRC", to: "TYER", yearOnly: true},
		{from: "TDOR", to: "TORY", yearOnly: true},
		{from: "TSOA", to: "XSOA"},
		{from: "TSOP", to: "XSOP"},
		{from: "TSOT", to: "XSOT"},
	}
	renamesTo24 = []rename{
		{from: "TYER", to: "TDRC"},
		{from: "TORY", to: "TDOR"},
		{from: "XSOA", to: "TSOA"},
		{from: "XSOP", to: "TSOP"},
		{from: "XSOT", to: "TSOT"},
	}

	only24 = []FrameID{"ASPI", "EQU2", "RVA2", "SEEK", "SIGN", "TDEN", "TDRL", "TDTG", "TMOO", "TPRO", "TSST"}
	only23 = []FrameID{"EQUA", "RVAD", "TDAT", "TIME", "TRDA", "TSIZ"}
)

// translate rewrites the frames of inner so they are valid in version v.
func translate(inner *id3v2.Tag, v Version) {
	renames, drop := renamesTo24, only23
	if v == V23 {
		renames, drop = renamesTo23, only24
	}
	for _, id := range drop {
		inner.DeleteFrames(string(id))
	}
	for _, r := range renames {
		renameFrames(inner, r)
	}
	normalizeEncodings(inner, v)
}

func renameFrames(inner *id3v2.Tag, r rename) {
	frames := inner.GetFrames(string(r.from))
	if len(frames) == 0 {
		return
	}
	inner.DeleteFrames(string(r.from))
	if len(inner.GetFrames(string(r.to))) > 0 {
		return
	}
	for _, f := range frames {
		tf, ok := asTextFrame(f)
		if !ok {
			continue
		}
		if r.yearOnly && len(tf.Text) > 4 {
			tf.Text = tf.Text[:4]
		}
		inner.AddFrame(string(r.to), tf)
	}
}

// asTextFrame also recovers text frames that the library could only
// parse as unknown frames, such as XSOP.
func asTextFrame(f id3v2.Framer) (id3v2.TextFrame, bool) {
	switch f := f.(type) {
	case id3v2.TextFrame:
		return f, true
	case id3v2.UnknownFrame:
		if len(f.Body) == 0 {
			return id3v2.TextFrame{}, false
		}
		enc, dec, ok := encodingByKey(f.Body[0])
		if !ok {
			return id3v2.TextFrame{}, false
		}
		text, err := dec.NewDecoder().Bytes(bytes.TrimRight(f.Body[1:], "\x00"))
		if err != nil {
			return id3v2.TextFrame{}, false
		}
		return id3v2.TextFrame{Encoding: enc, Text: string(text)}, true
	}
	return id3v2.TextFrame{}, false
}

func encodingByKey(key byte) (id3v2.Encoding, encoding.Encoding, bool) {
	switch key {
	case id3v2.EncodingISO.Key:
		return id3v2.EncodingISO, charmap.ISO8859_1, true
	case id3v2.EncodingUTF16.Key:
		return id3v2.EncodingUTF16, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), true
	case id3v2.EncodingUTF16BE.Key:
		return id3v2.EncodingUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), true
	case id3v2.EncodingUTF8.Key:
		return id3v2.EncodingUTF8, unicode.UTF8, true
	}
	return id3v2.Encoding{}, nil, false
}

// normalizeEncodings moves every frame to an encoding v can hold.
// ID3v2.3 only knows ISO-8859-1 and UTF-16 with BOM, so text that fits
// Latin-1 is stored as ISO-8859-1 and everything else as UTF-16. In
// ID3v2.4 tags both UTF-16 forms become UTF-8.
func normalizeEncodings(inner *id3v2.Tag, v Version) {
	for id, stored := range inner.AllFrames() {
		frames := append([]id3v2.Framer(nil), stored...)
		changed := false
		for i, f := range frames {
			if g, ok := reencodeFrame(f, v); ok {
				frames[i] = g
				changed = true
			}
		}
		if !changed {
			continue
		}
		inner.DeleteFrames(id)
		for _, f := range frames {
			inner.AddFrame(id, f)
		}
	}
}

func reencodeFrame(f id3v2.Framer, v Version) (id3v2.Framer, bool) {
	switch f := f.(type) {
	case id3v2.TextFrame:
		if e, ok := v.encodingFor(f.Encoding, f.Text); ok {
			f.Encoding = e
			return f, true
		}
	case id3v2.CommentFrame:
		if e, ok := v.describedEncoding(f.Encoding, f.Description, f.Text); ok {
			f.Encoding = e
			return f, true
		}
	case id3v2.UnsynchronisedLyricsFrame:
		if e, ok := v.describedEncoding(f.Encoding, f.ContentDescriptor, f.Lyrics); ok {
			f.Encoding = e
			return f, true
		}
	case id3v2.UserDefinedTextFrame:
		if e, ok := v.describedEncoding(f.Encoding, f.Description, f.Value); ok {
			f.Encoding = e
			return f, true
		}
	case id3v2.PictureFrame:
		if e, ok := v.describedEncoding(f.Encoding, f.Description); ok {
			f.Encoding = e
			return f, true
		}
	}
	return f, false
}

// encodingFor returns the encoding a frame holding texts should use in a
// v tag, and false when current already is that encoding.
func (v Version) encodingFor(current id3v2.Encoding, texts ...string) (id3v2.Encoding, bool) {
	latin1 := fitsLatin1(texts...)
	want := id3v2.EncodingUTF8
	switch {
	case v == V23 && latin1:
		want = id3v2.EncodingISO
	case v == V23:
		want = id3v2.EncodingUTF16
	case current.Equals(id3v2.EncodingISO) && latin1:
		want = id3v2.EncodingISO
	}
	return want, !current.Equals(want)
}

// describedEncoding is encodingFor for frames leading with a terminated
// description. The library's parser reads one byte past the terminator of
// a UTF-16 description whose last character lies beyond Latin-1, so such
// frames are kept in UTF-8 rather than written in a form it misreads.
func (v Version) describedEncoding(current id3v2.Encoding, desc string, texts ...string) (id3v2.Encoding, bool) {
	want, _ := v.encodingFor(current, append(texts, desc)...)
	if want.Equals(id3v2.EncodingUTF16) && !fitsLatin1(lastRune(desc)) {
		want = id3v2.EncodingUTF8
	}
	return want, !current.Equals(want)
}

func lastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[len(s)-size:]
}

func fitsLatin1(texts ...string) bool {
	for _, s := range texts {
		for _, r := range s {
			if r > 0xFF {
				return false
			}
		}
	}
	return true
}

// rawUTF16Frames swaps every UTF-16 frame of inner for an unknown frame
// holding its ID3v2.3 body and returns a func putting the originals back.
// The library writes UTF-16 big-endian and pads odd values with a single
// zero byte, which leaves the body at an odd length most readers reject.
func rawUTF16Frames(inner *id3v2.Tag) (func(), error) {
	saved := make(map[string][]id3v2.Framer)
	for id, stored := range inner.AllFrames() {
		frames := append([]id3v2.Framer(nil), stored...)
		raw := make([]id3v2.Framer, len(frames))
		changed := false
		for i, f := range frames {
			body, ok, err := utf16Body(f)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", id, err)
			}
			raw[i] = f
			if ok {
				raw[i] = id3v2.UnknownFrame{Body: body}
				changed = true
			}
		}
		if changed {
			saved[id] = frames
			replaceFrames(inner, id, raw)
		}
	}
	restore := func() {
		for id, frames := range saved {
			replaceFrames(inner, id, frames)
		}
	}
	return restore, nil
}

func replaceFrames(inner *id3v2.Tag, id string, frames []id3v2.Framer) {
	inner.DeleteFrames(id)
	for _, f := range frames {
		inner.AddFrame(id, f)
	}
}

// utf16Body lays out f the way the library does, but with every string
// as UTF-16 little-endian behind a BOM. It reports false for frames that
// are not UTF-16.
func utf16Body(f id3v2.Framer) ([]byte, bool, error) {
	w := utf16Writer{buf: []byte{id3v2.EncodingUTF16.Key}}
	switch f := f.(type) {
	case id3v2.TextFrame:
		if !f.Encoding.Equals(id3v2.EncodingUTF16) {
			return nil, false, nil
		}
		w.text(f.Text)
		w.terminate()
	case id3v2.CommentFrame:
		if !f.Encoding.Equals(id3v2.EncodingUTF16) {
			return nil, false, nil
		}
		w.language(f.Language)
		w.text(f.Description)
		w.terminate()
		w.text(f.Text)
	case id3v2.UnsynchronisedLyricsFrame:
		if !f.Encoding.Equals(id3v2.EncodingUTF16) {
			return nil, false, nil
		}
		w.language(f.Language)
		w.text(f.ContentDescriptor)
		w.terminate()
		w.text(f.Lyrics)
	case id3v2.UserDefinedTextFrame:
		if !f.Encoding.Equals(id3v2.EncodingUTF16) {
			return nil, false, nil
		}
		w.text(f.Description)
		w.terminate()
		w.text(f.Value)
	case id3v2.PictureFrame:
		if !f.Encoding.Equals(id3v2.EncodingUTF16) {
			return nil, false, nil
		}
		w.buf = append(w.buf, f.MimeType...)
		w.buf = append(w.buf, 0, f.PictureType)
		w.text(f.Description)
		w.terminate()
		w.buf = append(w.buf, f.Picture...)
	default:
		return nil, false, nil
	}
	if w.err != nil {
		return nil, false, w.err
	}
	return w.buf, true, nil
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

type utf16Writer struct {
	buf []byte
	err error
}

func (w *utf16Writer) text(s string) {
	if w.err != nil {
		return
	}
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		w.err = err
		return
	}
	w.buf = append(w.buf, b...)
}

func (w *utf16Writer) terminate() {
	w.buf = append(w.buf, id3v2.EncodingUTF16.TerminationBytes...)
}

func (w *utf16Writer) language(lang string) {
	if len(lang) != 3 {
		w.err = id3v2.ErrInvalidLanguageLength
	}
	w.buf = append(w.buf, lang...)
}

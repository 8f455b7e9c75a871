package id3

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	dtag "github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A few bytes standing in for MPEG audio after the tag.
var fakeAudio = []byte{0xFF, 0xFB, 0x90, 0x64, 0x00, 0x0F, 0xF0, 0x00, 0x00, 0x69, 0x00, 0x00, 0x00, 0x08}

func writeMP3(t *testing.T, version Version, build func(tag *id3v2.Tag)) string {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetVersion(byte(version))
	build(tag)

	var buf bytes.Buffer
	_, err := tag.WriteTo(&buf)
	require.NoError(t, err)
	buf.Write(fakeAudio)

	path := filepath.Join(t.TempDir(), "Oolala.mp3")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func oolala(t *testing.T) string {
	return writeMP3(t, V24, func(tag *id3v2.Tag) {
		tag.AddTextFrame("TIT2", id3v2.EncodingISO, "Oolala")
	})
}

func readBack(t *testing.T, path string) dtag.Metadata {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	m, err := dtag.ReadFrom(f)
	require.NoError(t, err)
	return m
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp3"), DefaultVersion)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpen_InvalidVersion(t *testing.T) {
	_, err := Open(oolala(t), Version(5))
	assert.ErrorIs(t, err, ErrInvalidVersion)

	_, err = ParseVersion(2)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	v, err := ParseVersion(3)
	require.NoError(t, err)
	assert.Equal(t, V23, v)

	// 259 and 260 share their low byte with 3 and 4.
	_, err = ParseVersion(259)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	_, err = ParseVersion(260)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestSave_PinsVersion23(t *testing.T) {
	path := oolala(t)

	tag, err := Open(path, V23)
	require.NoError(t, err)
	require.NoError(t, tag.Save(V23))
	require.NoError(t, tag.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(raw[:3]))
	assert.Equal(t, byte(3), raw[3])
	assert.True(t, bytes.HasSuffix(raw, fakeAudio))

	m := readBack(t, path)
	assert.Equal(t, dtag.ID3v2_3, m.Format())
	assert.Equal(t, "Oolala", m.Title())

	tag, err = Open(path, V23)
	require.NoError(t, err)
	defer tag.Close()
	assert.Equal(t, "Oolala", tag.Title())
	assert.Equal(t, V23, tag.Version())
}

func TestStoredVersion(t *testing.T) {
	path := oolala(t)

	tag, err := Open(path, V23)
	require.NoError(t, err)
	defer tag.Close()
	assert.Equal(t, V23, tag.Version())
	assert.Equal(t, V24, tag.StoredVersion())

	require.NoError(t, tag.Save(V23))
	assert.Equal(t, V23, tag.StoredVersion())
}

func TestSave_PinsVersion24(t *testing.T) {
	path := writeMP3(t, V23, func(tag *id3v2.Tag) {
		tag.AddTextFrame("TIT2", id3v2.EncodingISO, "Oolala")
		tag.AddTextFrame("TALB", id3v2.EncodingUTF16, "Bärenalbum")
	})

	tag, err := Open(path, V24)
	require.NoError(t, err)
	require.NoError(t, tag.Save(V24))
	require.NoError(t, tag.Close())

	m := readBack(t, path)
	assert.Equal(t, dtag.ID3v2_4, m.Format())
	assert.Equal(t, "Oolala", m.Title())
	assert.Equal(t, "Bärenalbum", m.Album())

	tag, err = Open(path, V24, WithoutTranslation())
	require.NoError(t, err)
	defer tag.Close()
	tf, ok := tag.firstTextFrame(FrameAlbum)
	require.True(t, ok)
	assert.True(t, tf.Encoding.Equals(id3v2.EncodingUTF8))
	assert.Equal(t, "Bärenalbum", tf.Text)
}

func TestSave_23WritesUTF16OthersCanRead(t *testing.T) {
	cover := []byte("\x89PNG fake")
	path := writeMP3(t, V24, func(tag *id3v2.Tag) {
		tag.AddTextFrame("TIT2", id3v2.EncodingUTF8, "Привет")
		tag.AddTextFrame("TPE1", id3v2.EncodingUTF8, "Oolala")
		tag.AddCommentFrame(id3v2.CommentFrame{Encoding: id3v2.EncodingUTF8, Language: "eng", Text: "Комментарий"})
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{Encoding: id3v2.EncodingUTF8, Language: "eng", ContentDescriptor: "words", Lyrics: "Ля-ля"})
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{Encoding: id3v2.EncodingUTF8, Description: "ключ", Value: "значение"})
		tag.AddAttachedPicture(id3v2.PictureFrame{Encoding: id3v2.EncodingUTF8, MimeType: "image/png", PictureType: id3v2.PTFrontCover, Description: "обложка", Picture: cover})
	})

	tag, err := Open(path, V24)
	require.NoError(t, err)
	require.NoError(t, tag.Save(V23))

	// the in-memory frames stay usable after the save
	assert.Equal(t, "Привет", tag.Title())
	require.NoError(t, tag.Close())

	m := readBack(t, path)
	assert.Equal(t, dtag.ID3v2_3, m.Format())
	assert.Equal(t, "Привет", m.Title())
	assert.Equal(t, "Oolala", m.Artist())
	assert.Equal(t, "Комментарий", m.Comment())
	require.NotNil(t, m.Picture())
	assert.Equal(t, "обложка", m.Picture().Description)
	assert.Equal(t, cover, m.Picture().Data)

	tag, err = Open(path, V23, WithoutTranslation())
	require.NoError(t, err)
	defer tag.Close()

	title, ok := tag.firstTextFrame(FrameTitle)
	require.True(t, ok)
	assert.True(t, title.Encoding.Equals(id3v2.EncodingUTF16))
	assert.Equal(t, []string{"Привет"}, tag.TextValues(FrameTitle))
	artist, ok := tag.firstTextFrame(FrameArtist)
	require.True(t, ok)
	assert.True(t, artist.Encoding.Equals(id3v2.EncodingISO))
	assert.Equal(t, "Комментарий", tag.Comment())

	uslt := tag.Frames("USLT")
	require.Len(t, uslt, 1)
	lyrics := uslt[0].(id3v2.UnsynchronisedLyricsFrame)
	assert.True(t, lyrics.Encoding.Equals(id3v2.EncodingUTF16))
	assert.Equal(t, "words", lyrics.ContentDescriptor)
	assert.Equal(t, "Ля-ля", lyrics.Lyrics)

	txxx := tag.Frames("TXXX")
	require.Len(t, txxx, 1)
	udt := txxx[0].(id3v2.UserDefinedTextFrame)
	// a description ending beyond Latin-1 keeps the frame in UTF-8
	assert.True(t, udt.Encoding.Equals(id3v2.EncodingUTF8))
	assert.Equal(t, "ключ", udt.Description)
	assert.Equal(t, "значение", udt.Value)

	apic := tag.Frames("APIC")
	require.Len(t, apic, 1)
	assert.Equal(t, "обложка", apic[0].(id3v2.PictureFrame).Description)
}

func TestUTF16Body_EvenLength(t *testing.T) {
	for _, text := range []string{"", "Oolala", "Привет", "a\x00b"} {
		body, ok, err := utf16Body(id3v2.TextFrame{Encoding: id3v2.EncodingUTF16, Text: text})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id3v2.EncodingUTF16.Key, body[0])
		assert.Equal(t, []byte{0xFF, 0xFE}, body[1:3])
		assert.Zero(t, (len(body)-1)%2, "text %q", text)
	}

	_, ok, err := utf16Body(id3v2.TextFrame{Encoding: id3v2.EncodingISO, Text: "Oolala"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = utf16Body(id3v2.CommentFrame{Encoding: id3v2.EncodingUTF16, Language: "en", Text: "x"})
	assert.ErrorIs(t, err, id3v2.ErrInvalidLanguageLength)
}

func TestSave_InvalidVersion(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()
	assert.ErrorIs(t, tag.Save(Version(2)), ErrInvalidVersion)
}

func TestResolve_CallReturnsProxy(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	res, err := tag.Call("SetTitle", "Ich bin")
	require.NoError(t, err)
	require.Same(t, tag, res)

	res, err = res.(*Tag).Call("SetArtist", "Oolala Band")
	require.NoError(t, err)
	require.Same(t, tag, res)

	res, err = tag.Call("DeleteFrames", FrameAlbum)
	require.NoError(t, err)
	assert.Same(t, tag, res)

	title, err := tag.Call("Title")
	require.NoError(t, err)
	assert.Equal(t, "Ich bin", title)
	assert.Equal(t, "Oolala Band", tag.Artist())
}

func TestResolve_ValueMember(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	m, err := tag.Resolve("Count")
	require.NoError(t, err)
	assert.False(t, m.Callable())
	assert.Equal(t, tag.Count(), m.Value())

	m, err = tag.Resolve("Version")
	require.NoError(t, err)
	assert.Equal(t, byte(4), m.Value())

	_, err = m.Call()
	assert.ErrorIs(t, err, ErrNotCallable)
}

func TestResolve_UnknownMember(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	_, err = tag.Resolve("Frobnicate")
	require.ErrorIs(t, err, ErrUnknownMember)
	var merr *MemberError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "Frobnicate", merr.Name)

	_, err = tag.Call("Frobnicate")
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestResolve_BadArguments(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	_, err = tag.Call("SetTitle", 42)
	assert.ErrorIs(t, err, ErrBadArguments)
	_, err = tag.Call("SetTitle")
	assert.ErrorIs(t, err, ErrBadArguments)
	_, err = tag.Call("AddFrame", "TIT2", "not a frame")
	assert.ErrorIs(t, err, ErrBadArguments)
	_, err = tag.Call("Save", "3")
	assert.ErrorIs(t, err, ErrBadArguments)
}

func TestResolve_SaveIsOwnMember(t *testing.T) {
	path := oolala(t)
	tag, err := Open(path, DefaultVersion)
	require.NoError(t, err)

	res, err := tag.Call("AddTextFrame", "TPE1", "Someone")
	require.NoError(t, err)
	require.Same(t, tag, res)

	_, err = tag.Call("Save", 3)
	require.NoError(t, err)
	_, err = tag.Call("Close")
	require.NoError(t, err)

	m := readBack(t, path)
	assert.Equal(t, dtag.ID3v2_3, m.Format())
	assert.Equal(t, "Someone", m.Artist())
}

func TestResolve_SaveRejectsOverflowingVersion(t *testing.T) {
	path := oolala(t)
	tag, err := Open(path, DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	_, err = tag.Call("Save", 259)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(4), raw[3])
}

func TestMembers_Sorted(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	names := tag.Members()
	assert.Contains(t, names, "Save")
	assert.Contains(t, names, "GetFrames")
	assert.IsIncreasing(t, names)
}

func TestSetFrames_ReplacesAll(t *testing.T) {
	path := writeMP3(t, V24, func(tag *id3v2.Tag) {
		tag.AddCommentFrame(id3v2.CommentFrame{Encoding: id3v2.EncodingUTF8, Language: "eng", Description: "a", Text: "one"})
		tag.AddCommentFrame(id3v2.CommentFrame{Encoding: id3v2.EncodingUTF8, Language: "eng", Description: "b", Text: "two"})
	})
	tag, err := Open(path, V24)
	require.NoError(t, err)
	defer tag.Close()
	require.Len(t, tag.Frames(FrameComment), 2)

	tag.SetComment("only")
	require.Len(t, tag.Frames(FrameComment), 1)
	assert.Equal(t, "only", tag.Comment())
}

func TestTranslate_24To23(t *testing.T) {
	path := writeMP3(t, V24, func(tag *id3v2.Tag) {
		tag.AddTextFrame("TIT2", id3v2.EncodingUTF8, "Ünïcødé")
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, "2004-05-06")
		tag.AddTextFrame("TMOO", id3v2.EncodingUTF8, "calm")
	})

	tag, err := Open(path, V24)
	require.NoError(t, err)
	require.NoError(t, tag.Save(V23))
	require.NoError(t, tag.Close())

	tag, err = Open(path, V23, WithoutTranslation())
	require.NoError(t, err)
	defer tag.Close()

	assert.Empty(t, tag.Frames("TDRC"))
	assert.Empty(t, tag.Frames("TMOO"))
	assert.Equal(t, []string{"2004"}, tag.TextValues(FrameYear))
	year, err := tag.Year()
	require.NoError(t, err)
	assert.Equal(t, 2004, year)

	tf, ok := tag.firstTextFrame(FrameTitle)
	require.True(t, ok)
	assert.True(t, tf.Encoding.Equals(id3v2.EncodingISO))
	assert.Equal(t, "Ünïcødé", tag.Title())
	assert.Equal(t, "Ünïcødé", readBack(t, path).Title())
}

func TestTranslate_23To24(t *testing.T) {
	path := writeMP3(t, V23, func(tag *id3v2.Tag) {
		tag.AddTextFrame("TYER", id3v2.EncodingISO, "1999")
		tag.AddTextFrame("TSIZ", id3v2.EncodingISO, "12345")
	})

	tag, err := Open(path, V24)
	require.NoError(t, err)
	defer tag.Close()

	assert.Empty(t, tag.Frames(FrameYear))
	assert.Empty(t, tag.Frames("TSIZ"))
	year, err := tag.Year()
	require.NoError(t, err)
	assert.Equal(t, 1999, year)
}

func TestTranslate_KeepsExistingTarget(t *testing.T) {
	path := writeMP3(t, V24, func(tag *id3v2.Tag) {
		tag.AddTextFrame("TYER", id3v2.EncodingISO, "1999")
		tag.AddTextFrame("TDRC", id3v2.EncodingISO, "2001")
	})

	tag, err := Open(path, V24)
	require.NoError(t, err)
	defer tag.Close()
	assert.Equal(t, []string{"2001"}, tag.TextValues(FrameRecorded))
	assert.Empty(t, tag.Frames(FrameYear))
}

func TestEasyTags_RoundTrip(t *testing.T) {
	path := oolala(t)
	tag, err := Open(path, V23)
	require.NoError(t, err)

	cover := Image{MimeType: "image/png", Description: "front", Data: []byte("\x89PNG fake")}
	tag.SetAlbum("Album").
		SetArtist("Artist").
		SetYear(1987).
		SetLanguage("spa").
		SetComment("nice").
		SetUniqueID("http://musicbrainz.org", "abc-123").
		SetCoverImage(cover)
	require.NoError(t, tag.Save(V23))
	require.NoError(t, tag.Close())

	tag, err = Open(path, V23)
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Oolala", tag.Title())
	assert.Equal(t, "Album", tag.Album())
	assert.Equal(t, "Artist", tag.Artist())
	assert.Equal(t, "spa", tag.Language())
	assert.Equal(t, "nice", tag.Comment())
	year, err := tag.Year()
	require.NoError(t, err)
	assert.Equal(t, 1987, year)

	id, err := tag.UniqueID()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, "abc-123", tag.UniqueIDByOwner("http://musicbrainz.org"))

	img, ok := tag.CoverImage()
	require.True(t, ok)
	assert.Equal(t, cover.Data, img.Data)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, byte(id3v2.PTFrontCover), img.Type)
}

func TestEasyTags_Missing(t *testing.T) {
	tag, err := Open(oolala(t), DefaultVersion)
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "", tag.Album())
	year, err := tag.Year()
	require.NoError(t, err)
	assert.Zero(t, year)
	_, ok := tag.CoverImage()
	assert.False(t, ok)
	id, err := tag.UniqueID()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFrameID(t *testing.T) {
	assert.True(t, FrameTitle.Valid())
	assert.False(t, FrameID("tit2").Valid())
	assert.False(t, FrameID("TIT").Valid())
	assert.True(t, FrameTitle.IsText())
	assert.False(t, FrameID("TXXX").IsText())
	assert.False(t, FrameComment.IsText())
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitValues("a\x00b\x00"))
	assert.Equal(t, []string{""}, splitValues(""))
}

package id3

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

const commentLanguage = "eng"

// Image is an attached picture.
type Image struct {
	Type        byte
	MimeType    string
	Description string
	Data        []byte
}

func (t *Tag) text(id FrameID) string {
	values := t.TextValues(id)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (t *Tag) setText(id FrameID, value string) *Tag {
	return t.SetFrames(id, id3v2.TextFrame{Encoding: t.inner.DefaultEncoding(), Text: value})
}

func (t *Tag) Title() string          { return t.text(FrameTitle) }
func (t *Tag) SetTitle(v string) *Tag { return t.setText(FrameTitle, v) }

func (t *Tag) Album() string          { return t.text(FrameAlbum) }
func (t *Tag) SetAlbum(v string) *Tag { return t.setText(FrameAlbum, v) }

func (t *Tag) Artist() string          { return t.text(FrameArtist) }
func (t *Tag) SetArtist(v string) *Tag { return t.setText(FrameArtist, v) }

func (t *Tag) Language() string          { return t.text(FrameLanguage) }
func (t *Tag) SetLanguage(v string) *Tag { return t.setText(FrameLanguage, v) }

// yearFrame is TYER in v2.3 tags and TDRC in v2.4 tags.
func (t *Tag) yearFrame() FrameID {
	if t.Version() == V23 {
		return FrameYear
	}
	return FrameRecorded
}

// Year returns the recording year, 0 when the tag has none.
func (t *Tag) Year() (int, error) {
	s := strings.TrimSpace(t.text(t.yearFrame()))
	if s == "" {
		return 0, nil
	}
	if len(s) > 4 {
		s = s[:4]
	}
	return strconv.Atoi(s)
}

func (t *Tag) SetYear(year int) *Tag {
	return t.setText(t.yearFrame(), strconv.Itoa(year))
}

// Comment returns the text of the first comment frame.
func (t *Tag) Comment() string {
	for _, f := range t.Frames(FrameComment) {
		if cf, ok := f.(id3v2.CommentFrame); ok {
			return cf.Text
		}
	}
	return ""
}

// SetComment replaces all comments with a single English one.
func (t *Tag) SetComment(text string) *Tag {
	return t.SetFrames(FrameComment, id3v2.CommentFrame{
		Encoding: t.inner.DefaultEncoding(),
		Language: commentLanguage,
		Text:     text,
	})
}

// CoverImage returns the front cover, if the tag has one.
func (t *Tag) CoverImage() (*Image, bool) {
	return t.Picture(id3v2.PTFrontCover)
}

// Picture returns the first attached picture of the given type.
func (t *Tag) Picture(pictureType byte) (*Image, bool) {
	for _, f := range t.Frames(FramePicture) {
		pf, ok := f.(id3v2.PictureFrame)
		if !ok || pf.PictureType != pictureType {
			continue
		}
		return &Image{
			Type:        pf.PictureType,
			MimeType:    pf.MimeType,
			Description: pf.Description,
			Data:        pf.Picture,
		}, true
	}
	return nil, false
}

// SetCoverImage replaces all attached pictures with img as front cover.
func (t *Tag) SetCoverImage(img Image) *Tag {
	return t.SetFrames(FramePicture, id3v2.PictureFrame{
		Encoding:    t.inner.DefaultEncoding(),
		MimeType:    img.MimeType,
		PictureType: id3v2.PTFrontCover,
		Description: img.Description,
		Picture:     img.Data,
	})
}

// UniqueIDs maps owner identifiers to unique file identifiers.
func (t *Tag) UniqueIDs() map[string]string {
	ids := make(map[string]string)
	for _, f := range t.Frames(FrameUniqueFile) {
		if uf, ok := f.(id3v2.UFIDFrame); ok {
			ids[uf.OwnerIdentifier] = string(uf.Identifier)
		}
	}
	return ids
}

// UniqueID returns the only unique file identifier of the tag, "" when
// there is none.
func (t *Tag) UniqueID() (string, error) {
	ids := t.UniqueIDs()
	if len(ids) > 1 {
		return "", ErrAmbiguousUniqueID
	}
	for _, id := range ids {
		return id, nil
	}
	return "", nil
}

func (t *Tag) UniqueIDByOwner(owner string) string {
	return t.UniqueIDs()[owner]
}

// SetUniqueID replaces all unique file identifiers with one.
func (t *Tag) SetUniqueID(owner, id string) *Tag {
	return t.SetFrames(FrameUniqueFile, id3v2.UFIDFrame{
		OwnerIdentifier: owner,
		Identifier:      []byte(id),
	})
}

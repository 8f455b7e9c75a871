package id3

import (
	"strings"

	"github.com/bogem/id3v2/v2"
)

// FrameID is the four character identifier of an ID3v2 frame.
type FrameID string

const (
	FrameTitle      FrameID = "TIT2"
	FrameAlbum      FrameID = "TALB"
	FrameArtist     FrameID = "TPE1"
	FrameYear       FrameID = "TYER" // v2.3
	FrameRecorded   FrameID = "TDRC" // v2.4
	FrameLanguage   FrameID = "TLAN"
	FrameComment    FrameID = "COMM"
	FramePicture    FrameID = "APIC"
	FrameUniqueFile FrameID = "UFID"
)

// Valid reports whether id looks like a v2.3/v2.4 frame identifier.
func (id FrameID) Valid() bool {
	if len(id) != 4 {
		return false
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// IsText reports whether frames with this id carry plain text.
func (id FrameID) IsText() bool {
	return strings.HasPrefix(string(id), "T") && id != "TXXX"
}

// Frames returns every frame stored under id.
func (t *Tag) Frames(id FrameID) []id3v2.Framer {
	return t.inner.GetFrames(string(id))
}

// SetFrames replaces every frame stored under id with frames.
func (t *Tag) SetFrames(id FrameID, frames ...id3v2.Framer) *Tag {
	t.inner.DeleteFrames(string(id))
	for _, f := range frames {
		t.inner.AddFrame(string(id), f)
	}
	return t
}

// DeleteFrames removes every frame stored under id.
func (t *Tag) DeleteFrames(id FrameID) *Tag {
	t.inner.DeleteFrames(string(id))
	return t
}

// DeleteAllFrames empties the tag.
func (t *Tag) DeleteAllFrames() *Tag {
	t.inner.DeleteAllFrames()
	return t
}

// TextValues returns the NUL separated values of the first text frame
// stored under id.
func (t *Tag) TextValues(id FrameID) []string {
	tf, ok := t.firstTextFrame(id)
	if !ok {
		return nil
	}
	return splitValues(tf.Text)
}

func (t *Tag) firstTextFrame(id FrameID) (id3v2.TextFrame, bool) {
	for _, f := range t.inner.GetFrames(string(id)) {
		if tf, ok := f.(id3v2.TextFrame); ok {
			return tf, true
		}
	}
	return id3v2.TextFrame{}, false
}

func splitValues(text string) []string {
	values := strings.Split(text, "\x00")
	for len(values) > 1 && values[len(values)-1] == "" {
		values = values[:len(values)-1]
	}
	return values
}

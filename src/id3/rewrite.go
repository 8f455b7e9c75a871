package id3

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// RewriteTextFrame re-decodes the first value of the first frame stored
// under id with dec, replaces every frame of that id with a single new
// text frame holding the decoded value and saves the tag as version.
// The tag should be opened WithoutTranslation so the frame is seen as
// stored. Nothing is written if decoding fails.
func RewriteTextFrame(t *Tag, id FrameID, dec *Decoder, version Version) (string, error) {
	if !version.valid() {
		return "", fmt.Errorf("%d: %w", version, ErrInvalidVersion)
	}
	frames := t.Frames(id)
	if len(frames) == 0 {
		return "", fmt.Errorf("%s: %w", id, ErrNoFrame)
	}
	tf, ok := frames[0].(id3v2.TextFrame)
	if !ok {
		return "", fmt.Errorf("%s: %w", id, ErrNotTextFrame)
	}

	raw, err := storedBytes(splitValues(tf.Text)[0], tf.Encoding)
	if err != nil {
		return "", fmt.Errorf("%s: %w", id, err)
	}
	text, err := dec.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", id, err)
	}

	t.SetFrames(id, id3v2.TextFrame{Encoding: version.textEncoding(), Text: text})
	if err := t.Save(version); err != nil {
		return "", err
	}
	return text, nil
}
